package actor

import "context"

// Logger is the structured logging surface used throughout the actor
// package. It matches the subset of btclog/v2's SLogger this package calls,
// letting callers wire in a real btclog-backed logger via UseLogger without
// this package importing btclog directly.
type Logger interface {
	TraceS(ctx context.Context, msg string, attrs ...any)
	DebugS(ctx context.Context, msg string, attrs ...any)
	InfoS(ctx context.Context, msg string, attrs ...any)
	WarnS(ctx context.Context, msg string, err error, attrs ...any)
	ErrorS(ctx context.Context, msg string, err error, attrs ...any)
}

// log is the package-wide logger instance. By default it discards all
// output; callers should invoke UseLogger during initialization to wire in a
// real logger (see internal/build for the btclog/v2 handler plumbing).
var log Logger = disabledLog{}

// UseLogger sets the package-wide logger used for cell lifecycle and
// message-processing events.
func UseLogger(logger Logger) {
	if logger == nil {
		logger = disabledLog{}
	}
	log = logger
}

type disabledLog struct{}

func (disabledLog) TraceS(context.Context, string, ...any)        {}
func (disabledLog) DebugS(context.Context, string, ...any)        {}
func (disabledLog) InfoS(context.Context, string, ...any)         {}
func (disabledLog) WarnS(context.Context, string, error, ...any)  {}
func (disabledLog) ErrorS(context.Context, string, error, ...any) {}
