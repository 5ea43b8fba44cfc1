package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLIResolveAndShow(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "resolve", "pitching", "RW-001", "Weiss, Ryan")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "RYAN WEISS") {
		t.Fatalf("resolve output missing normalized name: %q", out)
	}

	out, err = runCLI(t, configPath, "athletes", "list")
	if err != nil {
		t.Fatalf("athletes list: %v", err)
	}
	if !strings.Contains(out, "Weiss, Ryan") {
		t.Fatalf("athletes list missing identity: %q", out)
	}
}

func TestCLIIngestManifest(t *testing.T) {
	configPath := writeTestConfig(t)

	manifest := filepath.Join(t.TempDir(), "batch.jsonl")
	lines := `{"source_system":"mocap","source_local_id":"SM-17","display_name":"Smith, John","trial_dir":"/data/smith","owner_label":"smith_john_T01"}
{"source_system":"mocap","trial_dir":"/data/smith/visit2","owner_label":"smith_john_T02","sessions":[{"subsystem":"mocap","session_date":"2026-08-12"}]}
`
	if err := os.WriteFile(manifest, []byte(lines), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	out, err := runCLI(t, configPath, "ingest", manifest, "--json")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, `"trials_matched": 1`) {
		t.Fatalf("unexpected ingest summary: %q", out)
	}
}

func TestCLIDedupScanDryRun(t *testing.T) {
	configPath := writeTestConfig(t)

	for _, args := range [][]string{
		{"resolve", "sysA", "001", "Smith, John"},
		{"resolve", "sysB", "jsmith", "John Smith"},
	} {
		if _, err := runCLI(t, configPath, args...); err != nil {
			t.Fatalf("resolve %v: %v", args, err)
		}
	}

	// Both resolutions share a normalized name so the second attaches to the
	// first; force a second identity through a differing name, then scan.
	if _, err := runCLI(t, configPath, "resolve", "sysC", "x9", "Smyth, John"); err != nil {
		t.Fatalf("resolve third: %v", err)
	}

	out, err := runCLI(t, configPath, "dedup", "scan")
	if err != nil {
		t.Fatalf("dedup scan: %v", err)
	}
	if !strings.Contains(out, "dry run") && !strings.Contains(out, "no duplicates") {
		t.Fatalf("unexpected scan output: %q", out)
	}
}

func TestCLIConfigShowUsesDefaults(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "min_path_segments") {
		t.Fatalf("config show missing matching settings: %q", out)
	}
}
