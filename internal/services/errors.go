package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks unusable input that should skip the record, not the run.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks misconfiguration requiring operator attention.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that found nothing where something was required.
	ErrNotFound = errors.New("not found")
	// ErrExternalService marks failures of external collaborators; callers
	// usually degrade to local behavior instead of aborting.
	ErrExternalService = errors.New("external service error")
	// ErrTransient marks failures worth retrying.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
