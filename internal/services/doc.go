// Package services holds the shared error taxonomy for engine components and
// hosts clients for external collaborators in subpackages.
//
// Errors are tagged with sentinel markers so callers can decide between
// "skip the record", "degrade and continue", and "abort this unit of work"
// without string matching.
package services
