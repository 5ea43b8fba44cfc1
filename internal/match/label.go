package match

import (
	"path/filepath"
	"regexp"
	"strings"
)

// categoryPattern captures the trial-type discriminator at the end of an
// owner label: a short letter code with an optional trial number, separated
// from the athlete part by space, underscore, or hyphen ("weiss_ryan_T01").
var categoryPattern = regexp.MustCompile(`(?i)[\s_-]([a-z]{1,2})(\d{1,3})?$`)

// Label is a parsed owner label.
type Label struct {
	// Raw is the label as it appeared in the trial file, extension stripped.
	Raw string
	// Stem is the athlete-identifying part with the category suffix removed.
	Stem string
	// Category is the upper-cased trial-type code, empty when the label
	// carries none.
	Category string
}

// ParseLabel splits an owner label into its athlete stem and trial-type
// category. Labels without a recognizable category suffix keep their full
// stem and an empty category. The split is purely syntactic; checking the
// code against the configured categories is Matcher.ParseOwnerLabel's job.
func ParseLabel(raw string) Label {
	trimmed := strings.TrimSpace(raw)
	stem := strings.TrimSuffix(trimmed, filepath.Ext(trimmed))
	label := Label{Raw: trimmed, Stem: stem}

	if m := categoryPattern.FindStringSubmatchIndex(stem); m != nil {
		label.Category = strings.ToUpper(stem[m[2]:m[3]])
		label.Stem = stem[:m[0]]
	}
	return label
}
