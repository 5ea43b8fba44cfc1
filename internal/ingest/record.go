package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"rosterid/internal/athlete"
)

// Session is one dated fact row destined for a subsystem's table.
type Session struct {
	Subsystem   string `json:"subsystem"`
	SessionDate string `json:"session_date"`
	Label       string `json:"label,omitempty"`
}

// Record is one parsed input tuple. Records with a source-local id are
// identity-bearing and go through the resolver; records without one are
// trial-only and must be matched to an already-known owner.
type Record struct {
	SourceSystem     string               `json:"source_system"`
	SourceLocalID    string               `json:"source_local_id,omitempty"`
	DisplayName      string               `json:"display_name,omitempty"`
	Demographics     athlete.Demographics `json:"demographics,omitempty"`
	TrialDir         string               `json:"trial_dir,omitempty"`
	OwnerLabel       string               `json:"owner_label,omitempty"`
	IdentityFilePath string               `json:"identity_file,omitempty"`
	Sessions         []Session            `json:"sessions,omitempty"`
}

// IdentityBearing reports whether the record can go through the resolver.
func (r Record) IdentityBearing() bool {
	return strings.TrimSpace(r.SourceLocalID) != ""
}

// ReadManifest parses a JSON-lines stream of records. Blank lines are
// ignored; a malformed line fails the whole read with its line number.
func ReadManifest(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return records, nil
}
