// Package match assigns trial files to already-known athlete identities using
// a ranked sequence of heuristics: the in-run directory cache, co-located
// identity-declaration files, exact owner-label matches, and finally
// directory-similarity scoring with a configurable acceptance threshold.
//
// Matching is deliberately conservative. When no heuristic clears its bar the
// result is unmatched and the caller skips the trial; crediting a trial to the
// wrong athlete is worse than dropping it.
//
// All per-run state lives in a RunContext the caller constructs and passes in,
// so concurrent ingestion runs never share matching state.
package match
