package log

// Logger is the interface applications implement to receive protocol log
// events. Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records a protocol event. Implementations must be safe for
	// concurrent use. Events fire from inside pump cycles, so
	// implementations should return quickly or queue; blocking stalls
	// notification delivery.
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
