package codec

import "errors"

// Construction errors.
var (
	ErrEmptyKey           = errors.New("codec key is empty")
	ErrMissingStateSource = errors.New("codec state source is nil")
)

// Errors shared by codec drivers.
var (
	ErrInvalidSelector    = errors.New("invalid input selector")
	ErrInvalidDestination = errors.New("invalid dial destination")
	ErrNotInCall          = errors.New("no active call")
	ErrNoIncomingCall     = errors.New("no incoming call")
	ErrCallInProgress     = errors.New("call already in progress")
	ErrInvalidDTMF        = errors.New("invalid DTMF digits")
)
