package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rosterid/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Matching.MinPathSegments != 2 {
		t.Fatalf("unexpected default min_path_segments: %d", cfg.Matching.MinPathSegments)
	}
	if cfg.Dedup.MinSimilarity != 0.85 {
		t.Fatalf("unexpected default min_similarity: %v", cfg.Dedup.MinSimilarity)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[matching]
min_path_segments = 3
eligible_categories = ["t", "p"]

[dedup]
min_similarity = 0.9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Matching.MinPathSegments != 3 {
		t.Fatalf("min_path_segments override lost: %d", cfg.Matching.MinPathSegments)
	}
	if len(cfg.Matching.EligibleCategories) != 2 || cfg.Matching.EligibleCategories[0] != "T" {
		t.Fatalf("categories should be upper-cased: %v", cfg.Matching.EligibleCategories)
	}
	if cfg.Dedup.MinSimilarity != 0.9 {
		t.Fatalf("min_similarity override lost: %v", cfg.Dedup.MinSimilarity)
	}
	if cfg.Registry.TimeoutSeconds != 5 {
		t.Fatalf("registry timeout default lost: %d", cfg.Registry.TimeoutSeconds)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[dedup]
min_similarity = 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for min_similarity > 1")
	} else if !strings.Contains(err.Error(), "min_similarity") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryRequiresURLWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when registry enabled without base_url")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
