package commands

import "github.com/btcsuite/btclog"

// parseLevel maps a --log-level flag value to a btclog.Level, defaulting to
// Info for anything unrecognized.
func parseLevel(s string) btclog.Level {
	switch s {
	case "trace":
		return btclog.LevelTrace
	case "debug":
		return btclog.LevelDebug
	case "warn":
		return btclog.LevelWarn
	case "error":
		return btclog.LevelError
	default:
		return btclog.LevelInfo
	}
}
