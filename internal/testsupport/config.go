// Package testsupport provides shared helpers for wiring configs and stores
// in tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"rosterid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithRegistry enables the external identity store against the provided URL.
func WithRegistry(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Registry.Enabled = true
		cfg.Registry.BaseURL = baseURL
		cfg.Registry.TimeoutSeconds = 1
	}
}

// WithMinPathSegments overrides the directory-similarity acceptance threshold.
func WithMinPathSegments(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.MinPathSegments = n
	}
}

// WithKnownCategories declares trial-type codes the matcher should recognize
// without extracting.
func WithKnownCategories(codes ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.KnownCategories = codes
	}
}
