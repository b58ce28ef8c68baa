package log

import (
	"time"
)

// Event is a single entry of the device trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// DeviceKey identifies the device that emitted the event.
	DeviceKey string `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// SessionID correlates events with a usage session, when one is open.
	SessionID string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Feedback *FeedbackEvent  `cbor:"10,keyasint,omitempty"`
	Usage    *UsageEvent     `cbor:"11,keyasint,omitempty"`
	Error    *ErrorEventData `cbor:"12,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFeedback is a feedback value change.
	CategoryFeedback Category = 0
	// CategoryUsage is a usage start or end edge.
	CategoryUsage Category = 1
	// CategoryError is an isolated failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFeedback:
		return "FEEDBACK"
	case CategoryUsage:
		return "USAGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FeedbackEvent records a feedback value change.
type FeedbackEvent struct {
	// Key is the feedback name (e.g. "inCall").
	Key string `cbor:"1,keyasint"`

	// Kind is the feedback value type (see feedback.Kind).
	Kind uint8 `cbor:"2,keyasint"`

	// Value is the new value. Integers decode as int64 or uint64.
	Value any `cbor:"3,keyasint"`
}

// UsageAction distinguishes usage start and end.
type UsageAction uint8

const (
	// UsageStart marks the in-call false to true edge.
	UsageStart UsageAction = 0
	// UsageEnd marks the in-call true to false edge.
	UsageEnd UsageAction = 1
)

// String returns the action name.
func (a UsageAction) String() string {
	switch a {
	case UsageStart:
		return "START"
	case UsageEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// UsageEvent records a usage edge.
type UsageEvent struct {
	// Action is start or end.
	Action UsageAction `cbor:"1,keyasint"`

	// Duration is the session length (end events only).
	Duration time.Duration `cbor:"2,keyasint,omitempty"`
}

// ErrorSource identifies where an isolated failure happened.
type ErrorSource uint8

const (
	// ErrorSourceProducer is a feedback producer failure.
	ErrorSourceProducer ErrorSource = 0
	// ErrorSourceTracker is a usage tracker failure.
	ErrorSourceTracker ErrorSource = 1
	// ErrorSourceDriver is a failure reported by the concrete driver.
	ErrorSourceDriver ErrorSource = 2
)

// String returns the source name.
func (s ErrorSource) String() string {
	switch s {
	case ErrorSourceProducer:
		return "PRODUCER"
	case ErrorSourceTracker:
		return "TRACKER"
	case ErrorSourceDriver:
		return "DRIVER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an isolated failure.
type ErrorEventData struct {
	// Source is where the failure happened.
	Source ErrorSource `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes the operation being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewFeedbackEvent builds a feedback change event stamped with the current time.
func NewFeedbackEvent(deviceKey, key string, kind uint8, value any) Event {
	return Event{
		Timestamp: time.Now(),
		DeviceKey: deviceKey,
		Category:  CategoryFeedback,
		Feedback: &FeedbackEvent{
			Key:   key,
			Kind:  kind,
			Value: value,
		},
	}
}

// NewUsageEvent builds a usage edge event stamped with the current time.
func NewUsageEvent(deviceKey string, action UsageAction, d time.Duration) Event {
	return Event{
		Timestamp: time.Now(),
		DeviceKey: deviceKey,
		Category:  CategoryUsage,
		Usage: &UsageEvent{
			Action:   action,
			Duration: d,
		},
	}
}

// NewErrorEvent builds an error event stamped with the current time.
func NewErrorEvent(deviceKey string, source ErrorSource, err error, context string) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Event{
		Timestamp: time.Now(),
		DeviceKey: deviceKey,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Source:  source,
			Message: msg,
			Context: context,
		},
	}
}
