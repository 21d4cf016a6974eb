// Package logging provides structured logging for GridSense Core.
//
// It wraps log/slog with service-wide default attributes and configuration
// driven level/format/output selection. Components receive a child logger
// via With("component", name).
package logging
