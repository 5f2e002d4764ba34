// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package, choosing a JSON handler in prod and
// a text handler elsewhere, and adapts slog to the Print-style logger the
// CQL driver expects.
package logger
