package codec

// StateSource supplies the producer functions behind a codec's
// feedbacks. Every method reports the driver's current knowledge of the
// hardware state; returning an error leaves the feedback unchanged.
//
// Drivers usually implement StateSource on the driver type itself and
// pass it to NewBase.
type StateSource interface {
	InCall() (bool, error)
	IncomingCall() (bool, error)
	TransmitMute() (bool, error)
	ReceiveMute() (bool, error)
	PrivacyMode() (bool, error)
	VolumeLevel() (int, error)
}

// LevelReporter is implemented by sources that know the transmit and
// receive levels. Without it the level feedbacks stay at zero.
type LevelReporter interface {
	TransmitLevel() (int, error)
	ReceiveLevel() (int, error)
}

// SharingSourceReporter is implemented by sources that know the shared
// content source. Without it the sharing-source feedback stays empty.
type SharingSourceReporter interface {
	SharingSource() (string, error)
}

// MuteReporter is implemented by sources with a basic-volume mute
// state. Without it the mute feedback stays false.
type MuteReporter interface {
	Mute() (bool, error)
}
