package kvbag

// Fields carries structured context for one log record. Error causes are
// passed under "err", usually as *OpError.
type Fields map[string]any

// Logger is the leveled sink the adapter writes to. Lost CAS races and lock
// timeouts go to Info, store failures to Warn. Adapters for zap, logrus and
// slog live under log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger is used when Options.Logger is nil.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
