package build

import (
	"io"
	"os"

	btclog "github.com/btcsuite/btclog/v2"
)

// NewConsoleHandler builds a btclog.Handler writing to w, matching the
// teacher's daemon entrypoint's console handler. A nil w defaults to
// os.Stderr.
func NewConsoleHandler(w io.Writer) *HandlerSet {
	if w == nil {
		w = os.Stderr
	}
	return NewHandlerSet(btclog.NewDefaultHandler(w))
}

// NewLogger wraps handler in a btclog.Logger, for use with any package's
// UseLogger(logger) entry point (e.g. actor.UseLogger).
func NewLogger(handler *HandlerSet) btclog.Logger {
	return btclog.NewSLogger(handler)
}
