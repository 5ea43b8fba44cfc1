// Package logging assembles the structured slog loggers used across rosterid.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes small helpers so engine code tags log lines with the
// same component/run/source-system keys everywhere. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
