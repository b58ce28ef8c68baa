package codec

import "github.com/roomkit/codec-go/pkg/routing"

// Inert defaults for the audio-path and basic-volume capabilities.
//
// Each method is a deliberate no-op: the capability is advertised but
// not wired to hardware, and its feedback stays static until a driver
// overrides the method. Calls are logged at debug level.

func (b *Base) unsupported(method string) {
	b.logger.Debug("capability not implemented by driver", "method", method)
}

func (b *Base) TransmitMuteOn()     { b.unsupported("TransmitMuteOn") }
func (b *Base) TransmitMuteOff()    { b.unsupported("TransmitMuteOff") }
func (b *Base) TransmitMuteToggle() { b.unsupported("TransmitMuteToggle") }

func (b *Base) SetTransmitVolume(level uint16) { b.unsupported("SetTransmitVolume") }

func (b *Base) ReceiveMuteOn()     { b.unsupported("ReceiveMuteOn") }
func (b *Base) ReceiveMuteOff()    { b.unsupported("ReceiveMuteOff") }
func (b *Base) ReceiveMuteToggle() { b.unsupported("ReceiveMuteToggle") }

func (b *Base) SetReceiveVolume(level uint16) { b.unsupported("SetReceiveVolume") }

func (b *Base) PrivacyModeOn()     { b.unsupported("PrivacyModeOn") }
func (b *Base) PrivacyModeOff()    { b.unsupported("PrivacyModeOff") }
func (b *Base) PrivacyModeToggle() { b.unsupported("PrivacyModeToggle") }

func (b *Base) MuteOn()     { b.unsupported("MuteOn") }
func (b *Base) MuteOff()    { b.unsupported("MuteOff") }
func (b *Base) MuteToggle() { b.unsupported("MuteToggle") }

func (b *Base) SetVolume(level uint16) { b.unsupported("SetVolume") }

func (b *Base) VolumeUp(pressRelease bool)   { b.unsupported("VolumeUp") }
func (b *Base) VolumeDown(pressRelease bool) { b.unsupported("VolumeDown") }

// Compile-time check that Base covers everything in Codec except the
// protocol-specific calls drivers must supply.
var _ interface {
	Device
	CallFeedback
	TransmitAudio
	ReceiveAudio
	PrivacyControl
	BasicVolumeWithFeedback
	UsageTracking
	FeedbackProvider
	routing.Inputs
} = (*Base)(nil)
