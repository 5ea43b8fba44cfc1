// Package athlete defines the canonical identity model shared across the
// resolution engine: athletes, source mappings, merge records, and the
// per-subsystem aggregate flags derived from fact tables.
//
// It also owns the pure matching-key functions. NormalizeName turns a raw
// display name into the canonical key every lookup and duplicate scan is built
// on, and Similarity scores two identities for the duplicate detector. Keep
// both free of IO so they stay trivially testable and safe to call anywhere.
package athlete
