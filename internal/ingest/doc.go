// Package ingest drives one processing run: it consumes the tuples emitted by
// format-specific parsers, resolves each to a canonical athlete identity,
// matches trial-only records to their owners, writes session facts, and keeps
// the per-athlete aggregate flags current.
//
// A run is sequential over one batch of records and owns its matching cache,
// so concurrent runs over different source systems never share state.
package ingest
