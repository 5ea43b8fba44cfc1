package match_test

import (
	"testing"

	"rosterid/internal/logging"
	"rosterid/internal/match"
	"rosterid/internal/testsupport"
)

func newMatcher(t *testing.T, opts ...testsupport.ConfigOption) *match.Matcher {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	return match.NewMatcher(cfg, logging.NewNop())
}

func TestMatchSkipsIneligibleCategory(t *testing.T) {
	m := newMatcher(t, testsupport.WithKnownCategories("X"))
	rc := match.NewRunContext()
	// Even a cached directory must not rescue an ineligible trial type.
	rc.RegisterDirectory("/data/weiss", "ath-1")

	res := m.MatchOwner("weiss_ryan_X01", "/data/weiss", rc)
	if !res.Ineligible || res.Matched {
		t.Fatalf("category X should be skipped before matching: %+v", res)
	}
}

func TestMatchKeepsUnconfiguredSuffixInStem(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterLabel("li_bo", "ath-9")

	// "bo" is not a configured category code, so it is part of the name,
	// not a discriminator to skip on.
	res := m.MatchOwner("li_bo.c3d", "/data/li", rc)
	if res.Ineligible {
		t.Fatalf("unconfigured trailing token must not skip the trial: %+v", res)
	}
	if !res.Matched || res.AthleteID != "ath-9" {
		t.Fatalf("expected label match on the full stem, got %+v", res)
	}
}

func TestParseOwnerLabelDemotesUnknownCategory(t *testing.T) {
	m := newMatcher(t, testsupport.WithKnownCategories("BP"))

	cases := []struct {
		raw      string
		stem     string
		category string
	}{
		{"weiss_ryan_T01.c3d", "weiss_ryan", "T"},
		{"weiss_ryan_bp02", "weiss_ryan", "BP"},
		{"li_bo.c3d", "li_bo", ""},
		{"garcia-de_la", "garcia-de_la", ""},
	}
	for _, tc := range cases {
		got := m.ParseOwnerLabel(tc.raw)
		if got.Stem != tc.stem || got.Category != tc.category {
			t.Errorf("ParseOwnerLabel(%q) = stem %q category %q, want %q %q",
				tc.raw, got.Stem, got.Category, tc.stem, tc.category)
		}
	}
}

func TestMatchDirectoryCacheWinsFirst(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterDirectory("/data/weiss/session1", "ath-1")

	res := m.MatchOwner("someone_else_T01", "/data/weiss/session1", rc)
	if !res.Matched || res.AthleteID != "ath-1" {
		t.Fatalf("expected cached directory owner, got %+v", res)
	}
	if res.Strategy != "directory_cache" {
		t.Fatalf("expected directory_cache strategy, got %q", res.Strategy)
	}
}

func TestMatchIdentityFileInParentDirectory(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterIdentityFile("/data/weiss/athlete.info", "ath-2")

	res := m.MatchOwner("weiss_ryan_T01", "/data/weiss/visit2", rc)
	if !res.Matched || res.AthleteID != "ath-2" {
		t.Fatalf("expected identity-file match via parent dir, got %+v", res)
	}
	if res.Strategy != "identity_file" {
		t.Fatalf("expected identity_file strategy, got %q", res.Strategy)
	}
}

func TestMatchLabelStemIgnoresCaseAndTrialNumber(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterLabel("weiss_ryan", "ath-3")

	res := m.MatchOwner("Weiss_Ryan_T02.c3d", "/incoming/batch7", rc)
	if !res.Matched || res.AthleteID != "ath-3" {
		t.Fatalf("expected label stem match, got %+v", res)
	}
	if res.Strategy != "label" {
		t.Fatalf("expected label strategy, got %q", res.Strategy)
	}
}

func TestMatchDirectorySimilarityBelowThreshold(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	// Both athletes share exactly one leading segment with the trial dir.
	rc.RegisterSourceDir("ath-a", "/data/alpha/smith")
	rc.RegisterSourceDir("ath-b", "/data/beta/jones")

	res := m.MatchOwner("smith_john_T01", "/data/gamma/unknown", rc)
	if res.Matched {
		t.Fatalf("one shared segment must not clear the threshold: %+v", res)
	}
}

func TestMatchDirectorySimilarityNested(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterSourceDir("ath-a", "/data/smith")
	rc.RegisterSourceDir("ath-b", "/data/jones")

	res := m.MatchOwner("smith_john_T01", "/data/smith/visit2/trials", rc)
	if !res.Matched || res.AthleteID != "ath-a" {
		t.Fatalf("expected nested-directory match, got %+v", res)
	}
	if res.Strategy != "directory_similarity" {
		t.Fatalf("expected directory_similarity strategy, got %q", res.Strategy)
	}

	// A win seeds the directory cache: a second trial in the same directory
	// with a different owner label resolves to the same athlete.
	res = m.MatchOwner("unrelated_label_T05", "/data/smith/visit2/trials", rc)
	if !res.Matched || res.AthleteID != "ath-a" {
		t.Fatalf("expected directory cache reuse, got %+v", res)
	}
	if res.Strategy != "directory_cache" {
		t.Fatalf("expected directory_cache on second trial, got %q", res.Strategy)
	}
}

func TestMatchDirectorySimilarityTieIsUnmatched(t *testing.T) {
	m := newMatcher(t)
	rc := match.NewRunContext()
	rc.RegisterSourceDir("ath-a", "/data/team/a")
	rc.RegisterSourceDir("ath-b", "/data/team/b")

	// Two segments shared with each candidate: over threshold but ambiguous.
	res := m.MatchOwner("anyone_T01", "/data/team/c", rc)
	if res.Matched {
		t.Fatalf("ambiguous best score must stay unmatched: %+v", res)
	}
}

func TestMatchExhaustedHeuristics(t *testing.T) {
	m := newMatcher(t)
	res := m.MatchOwner("weiss_ryan_T01", "/incoming/unsorted", match.NewRunContext())
	if res.Matched || res.Ineligible {
		t.Fatalf("expected plain unmatched result, got %+v", res)
	}
	if res.Reason == "" {
		t.Fatal("unmatched result should carry a reason")
	}
}
