// Package config loads, normalizes, and validates rosterid configuration.
//
// Configuration lives in a TOML file (default ~/.config/rosterid/config.toml,
// or ./rosterid.toml for project-local setups). Load applies defaults first,
// then the file, then normalization (path expansion, value clamping) and
// validation, so the rest of the system only ever sees a usable Config.
//
// Matching and dedup thresholds are deliberately configuration rather than
// constants; the shipped defaults are starting points, not tuned truths.
package config
