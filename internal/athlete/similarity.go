package athlete

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// birthDateBonus is added when both identities carry the same birth date.
// Name similarity alone tops out below 1.0 for non-identical keys, so the
// bonus lets "same person, slightly different spelling" pairs clear review
// thresholds when the date of birth agrees exactly.
const birthDateBonus = 0.1

// NameSimilarity scores two normalized names in [0, 1] using Levenshtein
// distance. Identical keys score 1; a NoKey on either side scores 0.
func NameSimilarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == NoKey || b == NoKey {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	if distance >= longest {
		return 0
	}
	return 1 - float64(distance)/float64(longest)
}

// Similarity scores how likely two identities describe the same athlete:
// normalized-name similarity plus an exact birth-date agreement bonus,
// capped at 1.
func Similarity(a, b *Athlete) float64 {
	if a == nil || b == nil {
		return 0
	}
	score := NameSimilarity(a.NormalizedName, b.NormalizedName)
	if score == 0 {
		return 0
	}
	if a.BirthDate != "" && a.BirthDate == b.BirthDate {
		score += birthDateBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}
