// Package store persists canonical athlete identities in SQLite and owns
// every table the resolution engine depends on: athletes, source mappings,
// the merge audit trail, per-subsystem aggregate flags, and the fact tables
// that feed them.
//
// Dependent fact tables are driven by a registry of (subsystem, table,
// fk column, session column) entries. The registry feeds both the transactional
// duplicate merge (which rewrites every registered foreign key in one
// transaction) and the aggregate flag recomputation, so adding a tracked
// subsystem is a single registration line.
//
// Treat this package as the single source of truth for identity semantics;
// schema changes bump the version in schema.go.
package store
