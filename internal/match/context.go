package match

import (
	"path/filepath"
	"strings"
)

// RunContext carries the directory, label, and identity-file associations
// built up during one ingestion run. It is constructed per run, mutated only
// by that run, and discarded afterwards; it exists to make owner matching
// deterministic within a run without repeated store lookups.
type RunContext struct {
	dirOwners     map[string]string
	labelOwners   map[string]string
	identityFiles map[string]string
	sourceDirs    map[string]string
}

// NewRunContext returns an empty per-run matching cache.
func NewRunContext() *RunContext {
	return &RunContext{
		dirOwners:     make(map[string]string),
		labelOwners:   make(map[string]string),
		identityFiles: make(map[string]string),
		sourceDirs:    make(map[string]string),
	}
}

// RegisterDirectory records that a directory was resolved to an athlete.
func (rc *RunContext) RegisterDirectory(dir, athleteID string) {
	if dir == "" || athleteID == "" {
		return
	}
	rc.dirOwners[filepath.Clean(dir)] = athleteID
}

// DirectoryOwner returns the athlete already resolved for a directory.
func (rc *RunContext) DirectoryOwner(dir string) (string, bool) {
	id, ok := rc.dirOwners[filepath.Clean(dir)]
	return id, ok
}

// RegisterLabel records an owner-label association. Labels are compared
// case-insensitively.
func (rc *RunContext) RegisterLabel(label, athleteID string) {
	label = normalizeLabelKey(label)
	if label == "" || athleteID == "" {
		return
	}
	rc.labelOwners[label] = athleteID
}

// LabelOwner returns the athlete registered for an owner label.
func (rc *RunContext) LabelOwner(label string) (string, bool) {
	id, ok := rc.labelOwners[normalizeLabelKey(label)]
	return id, ok
}

// RegisterIdentityFile records that an identity-declaration file resolved to
// an athlete.
func (rc *RunContext) RegisterIdentityFile(path, athleteID string) {
	if path == "" || athleteID == "" {
		return
	}
	rc.identityFiles[filepath.Clean(path)] = athleteID
}

// IdentityFileOwner returns the athlete declared by an identity file.
func (rc *RunContext) IdentityFileOwner(path string) (string, bool) {
	id, ok := rc.identityFiles[filepath.Clean(path)]
	return id, ok
}

// RegisterSourceDir records an athlete's source directory for similarity
// scoring.
func (rc *RunContext) RegisterSourceDir(athleteID, dir string) {
	if athleteID == "" || dir == "" {
		return
	}
	rc.sourceDirs[athleteID] = filepath.Clean(dir)
}

func normalizeLabelKey(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
