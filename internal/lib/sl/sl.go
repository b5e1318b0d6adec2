// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns the error as an "error" attribute.
//
//	log.Error("rate limit store unavailable", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Discard returns a logger that drops everything; used when no logger is configured.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
