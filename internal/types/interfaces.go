package types

// Logger is the minimal structured logging interface passed to components.
// It mirrors the slog call shape (message plus alternating key/value args)
// so *slog.Logger can back it with a thin adapter, while tests can inject
// a silent or recording implementation.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that includes the given attributes on every record.
	With(args ...any) Logger
}

// NopLogger is a Logger that discards everything. Useful as a test default.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

func (n NopLogger) With(...any) Logger { return n }

// Compile-time assertion that NopLogger implements Logger.
var _ Logger = NopLogger{}
