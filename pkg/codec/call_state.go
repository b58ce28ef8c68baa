package codec

// CallState is the call lifecycle a driver tracks for its hardware.
type CallState uint8

const (
	CallIdle CallState = iota
	CallDialing
	CallRinging
	CallConnected
	CallDisconnecting
)

// String returns the state name.
func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "IDLE"
	case CallDialing:
		return "DIALING"
	case CallRinging:
		return "RINGING"
	case CallConnected:
		return "CONNECTED"
	case CallDisconnecting:
		return "DISCONNECTING"
	default:
		return "UNKNOWN"
	}
}

// InCall reports whether the state counts as in-call for usage tracking.
func (s CallState) InCall() bool {
	return s == CallConnected
}

// Incoming reports whether an incoming call is waiting to be answered.
func (s CallState) Incoming() bool {
	return s == CallRinging
}

// Active reports whether any call activity is under way.
func (s CallState) Active() bool {
	return s != CallIdle
}
