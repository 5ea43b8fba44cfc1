package match

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"rosterid/internal/config"
	"rosterid/internal/logging"
)

// Result reports one matching attempt.
type Result struct {
	// AthleteID is set when Matched is true.
	AthleteID string
	// Strategy names the heuristic that produced the match.
	Strategy string
	// Matched reports whether an owner was found.
	Matched bool
	// Ineligible reports that the label's trial-type category is not
	// configured for extraction; such records are skipped before any
	// heuristic runs.
	Ineligible bool
	// Reason explains an unmatched or ineligible result.
	Reason string
}

type request struct {
	label Label
	dir   string
	rc    *RunContext
}

type strategy struct {
	name string
	fn   func(req *request) (string, bool)
}

// Matcher assigns trial files to known athlete identities using a ranked
// list of heuristics evaluated in order, stopping at the first success.
type Matcher struct {
	minPathSegments   int
	eligible          map[string]struct{}
	recognized        map[string]struct{}
	identityFileNames []string
	logger            *slog.Logger
	strategies        []strategy
}

// NewMatcher constructs a Matcher from the matching configuration.
func NewMatcher(cfg *config.Config, logger *slog.Logger) *Matcher {
	eligible := make(map[string]struct{}, len(cfg.Matching.EligibleCategories))
	recognized := make(map[string]struct{}, len(cfg.Matching.EligibleCategories)+len(cfg.Matching.KnownCategories))
	for _, category := range cfg.Matching.EligibleCategories {
		category = strings.ToUpper(strings.TrimSpace(category))
		eligible[category] = struct{}{}
		recognized[category] = struct{}{}
	}
	for _, category := range cfg.Matching.KnownCategories {
		recognized[strings.ToUpper(strings.TrimSpace(category))] = struct{}{}
	}

	m := &Matcher{
		minPathSegments:   cfg.Matching.MinPathSegments,
		eligible:          eligible,
		recognized:        recognized,
		identityFileNames: append([]string(nil), cfg.Matching.IdentityFileNames...),
		logger:            logging.WithComponent(logger, "matcher"),
	}
	m.strategies = []strategy{
		{name: "directory_cache", fn: m.matchDirectoryCache},
		{name: "identity_file", fn: m.matchIdentityFile},
		{name: "label", fn: m.matchLabel},
		{name: "directory_similarity", fn: m.matchDirectorySimilarity},
	}
	return m
}

// MatchOwner determines which known athlete a trial belongs to. An unmatched
// result means the caller must skip the trial; the matcher never guesses.
func (m *Matcher) MatchOwner(ownerLabel, trialDir string, rc *RunContext) Result {
	label := m.ParseOwnerLabel(ownerLabel)
	if !m.categoryEligible(label.Category) {
		return Result{
			Ineligible: true,
			Reason:     "trial category " + label.Category + " not eligible for extraction",
		}
	}

	req := &request{label: label, dir: filepath.Clean(trialDir), rc: rc}
	for _, s := range m.strategies {
		id, ok := s.fn(req)
		if !ok {
			continue
		}
		// Every win seeds the cheaper heuristics for the rest of the run.
		rc.RegisterDirectory(req.dir, id)
		rc.RegisterLabel(label.Stem, id)
		m.logger.Debug("matched trial owner",
			logging.String(logging.FieldAthleteID, id),
			logging.String("strategy", s.name),
			logging.String("owner_label", label.Raw))
		return Result{AthleteID: id, Strategy: s.name, Matched: true}
	}

	return Result{Reason: "no heuristic cleared its threshold"}
}

// ParseOwnerLabel parses an owner label against the configured category codes.
// A trailing token only counts as a trial-type discriminator when it is a code
// the configuration knows about; otherwise it stays part of the athlete stem,
// so a short surname like the "bo" in "li_bo" never skips a valid trial.
func (m *Matcher) ParseOwnerLabel(raw string) Label {
	label := ParseLabel(raw)
	if label.Category == "" {
		return label
	}
	if _, ok := m.recognized[label.Category]; !ok {
		label.Stem = strings.TrimSuffix(label.Raw, filepath.Ext(label.Raw))
		label.Category = ""
	}
	return label
}

// categoryEligible reports whether a trial-type code may be extracted. Labels
// without any category code are allowed through; only an explicit mismatch
// skips the record.
func (m *Matcher) categoryEligible(category string) bool {
	if category == "" || len(m.eligible) == 0 {
		return true
	}
	_, ok := m.eligible[category]
	return ok
}

func (m *Matcher) matchDirectoryCache(req *request) (string, bool) {
	return req.rc.DirectoryOwner(req.dir)
}

// matchIdentityFile looks for a companion identity-declaration file in the
// trial's directory, then in its parent.
func (m *Matcher) matchIdentityFile(req *request) (string, bool) {
	for _, dir := range []string{req.dir, filepath.Dir(req.dir)} {
		for _, name := range m.identityFileNames {
			if id, ok := req.rc.IdentityFileOwner(filepath.Join(dir, name)); ok {
				return id, true
			}
		}
	}
	return "", false
}

func (m *Matcher) matchLabel(req *request) (string, bool) {
	if id, ok := req.rc.LabelOwner(req.label.Raw); ok {
		return id, true
	}
	return req.rc.LabelOwner(req.label.Stem)
}

// matchDirectorySimilarity scores the trial directory against every known
// athlete source directory and accepts the best candidate only when it is
// unambiguous and clears the minimum-segment threshold.
func (m *Matcher) matchDirectorySimilarity(req *request) (string, bool) {
	ids := make([]string, 0, len(req.rc.sourceDirs))
	for id := range req.rc.sourceDirs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := 0
	bestID := ""
	ambiguous := false
	for _, id := range ids {
		score := scoreDirectories(req.dir, req.rc.sourceDirs[id])
		switch {
		case score > best:
			best, bestID, ambiguous = score, id, false
		case score == best && best > 0 && id != bestID:
			ambiguous = true
		}
	}

	if bestID == "" || best < m.minPathSegments {
		return "", false
	}
	if ambiguous {
		m.logger.Debug("directory similarity tie, leaving trial unmatched",
			logging.String("trial_dir", req.dir),
			logging.Int("score", best))
		return "", false
	}
	return bestID, true
}
