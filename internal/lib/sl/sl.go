// Package sl holds helpers for building slog attributes.
package sl

import "log/slog"

// Err wraps an error into an "error" attribute.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
