package log

// MultiLogger fans each event out to several sinks, typically a FileLogger
// capture plus a SlogAdapter console mirror.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger wraps the given sinks. Nil entries are skipped so optional
// sinks can be passed unconditionally.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiLogger{sinks: kept}
}

// Log forwards the event to every sink in registration order.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
