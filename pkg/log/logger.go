package log

// Logger receives device events.
// Pass nil or NoopLogger to disable the trace.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent
	// use and must not call back into the device that emitted the event.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
