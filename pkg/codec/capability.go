package codec

import (
	"time"

	"github.com/roomkit/codec-go/pkg/feedback"
	"github.com/roomkit/codec-go/pkg/routing"
)

// Device is the identity every platform device exposes.
type Device interface {
	// Key returns the stable device key.
	Key() string

	// Name returns the display name.
	Name() string
}

// Dialer is call control.
type Dialer interface {
	// Dial places a call to destination (number, URI or directory entry).
	Dial(destination string) error

	// EndCall hangs up the active call.
	EndCall() error

	// AcceptCall answers the incoming call.
	AcceptCall() error

	// RejectCall declines the incoming call.
	RejectCall() error

	// SendDTMF sends a digit sequence in the active call.
	SendDTMF(digits string) error
}

// CallFeedback exposes call state feedbacks.
type CallFeedback interface {
	InCallFeedback() *feedback.Feedback[bool]
	IncomingCallFeedback() *feedback.Feedback[bool]
}

// Sharing is content sharing (presentation).
type Sharing interface {
	StartSharing() error
	StopSharing() error

	// SharingSourceFeedback reports the name of the shared source,
	// empty when not sharing.
	SharingSourceFeedback() *feedback.Feedback[string]
}

// TransmitAudio controls the outgoing (far-end) audio path.
type TransmitAudio interface {
	TransmitMuteOn()
	TransmitMuteOff()
	TransmitMuteToggle()
	SetTransmitVolume(level uint16)
	TransmitMuteIsOnFeedback() *feedback.Feedback[bool]
	TransmitLevelFeedback() *feedback.Feedback[int]
}

// ReceiveAudio controls the incoming (near-end) audio path.
type ReceiveAudio interface {
	ReceiveMuteOn()
	ReceiveMuteOff()
	ReceiveMuteToggle()
	SetReceiveVolume(level uint16)
	ReceiveMuteIsOnFeedback() *feedback.Feedback[bool]
	ReceiveLevelFeedback() *feedback.Feedback[int]
}

// PrivacyControl is microphone privacy mode.
type PrivacyControl interface {
	PrivacyModeOn()
	PrivacyModeOff()
	PrivacyModeToggle()
	PrivacyModeIsOnFeedback() *feedback.Feedback[bool]
}

// BasicVolume is ramp-style volume control. pressRelease is true while
// the button is held and false on release.
type BasicVolume interface {
	VolumeUp(pressRelease bool)
	VolumeDown(pressRelease bool)
	MuteToggle()
}

// BasicVolumeWithFeedback adds discrete volume, mute and feedbacks.
type BasicVolumeWithFeedback interface {
	BasicVolume
	MuteOn()
	MuteOff()
	SetVolume(level uint16)
	MuteFeedback() *feedback.Feedback[bool]
	VolumeLevelFeedback() *feedback.Feedback[int]
}

// UsageTracker records device usage. It is owned outside the device;
// the device only calls it on in-call edges.
type UsageTracker interface {
	StartDeviceUsage() error
	EndDeviceUsage() error
}

// SessionReporter is optionally implemented by trackers that identify
// their sessions. The device copies the ID and duration into its usage
// trace events.
type SessionReporter interface {
	// SessionID returns the current or most recently ended session ID.
	SessionID() string

	// LastDuration returns the length of the most recently ended session.
	LastDuration() time.Duration
}

// UsageTracking is implemented by devices that report usage.
type UsageTracking interface {
	// UsageTracker returns the attached tracker, or nil.
	UsageTracker() UsageTracker

	// SetUsageTracker attaches a tracker. Nil detaches.
	SetUsageTracker(tracker UsageTracker)
}

// FeedbackProvider exposes a device's feedbacks for UI binding.
type FeedbackProvider interface {
	Feedbacks() feedback.Collection
}

// Codec is the full video codec surface.
type Codec interface {
	Device
	Dialer
	CallFeedback
	Sharing
	TransmitAudio
	ReceiveAudio
	PrivacyControl
	BasicVolumeWithFeedback
	routing.Sink
	UsageTracking
	FeedbackProvider
}

// Capability names reported by Capabilities.
const (
	CapabilityDialer        = "dialer"
	CapabilitySharing       = "sharing"
	CapabilityRouting       = "routing"
	CapabilityTransmitAudio = "transmit-audio"
	CapabilityReceiveAudio  = "receive-audio"
	CapabilityPrivacy       = "privacy"
	CapabilityVolume        = "volume"
	CapabilityUsage         = "usage"
)

// Capabilities lists the capability interfaces dev implements, in a
// fixed order. Inert defaults count as implemented.
func Capabilities(dev any) []string {
	var caps []string
	if _, ok := dev.(Dialer); ok {
		caps = append(caps, CapabilityDialer)
	}
	if _, ok := dev.(Sharing); ok {
		caps = append(caps, CapabilitySharing)
	}
	if _, ok := dev.(routing.Sink); ok {
		caps = append(caps, CapabilityRouting)
	}
	if _, ok := dev.(TransmitAudio); ok {
		caps = append(caps, CapabilityTransmitAudio)
	}
	if _, ok := dev.(ReceiveAudio); ok {
		caps = append(caps, CapabilityReceiveAudio)
	}
	if _, ok := dev.(PrivacyControl); ok {
		caps = append(caps, CapabilityPrivacy)
	}
	if _, ok := dev.(BasicVolumeWithFeedback); ok {
		caps = append(caps, CapabilityVolume)
	}
	if _, ok := dev.(UsageTracking); ok {
		caps = append(caps, CapabilityUsage)
	}
	return caps
}
