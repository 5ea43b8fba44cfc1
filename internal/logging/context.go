package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for ingestion run identifiers.
	FieldRunID = "run_id"
	// FieldSourceSystem is the standardized structured logging key for source system names.
	FieldSourceSystem = "source_system"
	// FieldAthleteID is the standardized structured logging key for canonical athlete identifiers.
	FieldAthleteID = "athlete_id"
)

// WithComponent returns a logger tagged with the component name, falling back
// to a no-op logger when nil is supplied.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WithRun tags a logger with an ingestion run identifier and source system.
func WithRun(logger *slog.Logger, runID, sourceSystem string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := []any{slog.String(FieldRunID, runID)}
	if sourceSystem != "" {
		attrs = append(attrs, slog.String(FieldSourceSystem, sourceSystem))
	}
	return logger.With(attrs...)
}
