// Package logging configures the process-wide structured logger (log/slog)
// and provides sensitive-value redaction for logged attack payloads.
//
// Components derive their loggers with slog.Default().With("component", ...)
// so every line carries its origin.
package logging
