// Package dedup scans the canonical identity population for probable
// duplicates and executes confirmed merges.
//
// Scanning only proposes: pairs are scored by normalized-name similarity with
// a birth-date agreement bonus, and anything at or above the configured
// minimum becomes a proposal. Execution is a separate step so operators can
// review a dry-run report first. Exact-name pairs may merge automatically;
// everything else needs explicit approval. Each merge is one short
// transaction, and one failed merge never aborts the rest of the batch.
package dedup
