package match

import (
	"path/filepath"
	"strings"
)

// Directory-similarity scores form three tiers that can never overlap: an
// identical path always beats nesting, and nesting always beats any leading
// segment count a real filesystem path could produce.
const (
	scoreExactDirectory  = 1 << 16
	scoreNestedDirectory = 1 << 8
)

// scoreDirectories rates how strongly trialDir points at an athlete whose
// source directory is athleteDir. Identical paths score highest, trialDir
// nested under athleteDir second, otherwise the score is the number of
// matching leading path segments.
func scoreDirectories(trialDir, athleteDir string) int {
	trial := filepath.Clean(trialDir)
	owner := filepath.Clean(athleteDir)

	if trial == owner {
		return scoreExactDirectory
	}
	if strings.HasPrefix(trial, owner+string(filepath.Separator)) {
		// Deeper owner directories are more specific nests.
		return scoreNestedDirectory + len(pathSegments(owner))
	}
	return sharedLeadingSegments(pathSegments(trial), pathSegments(owner))
}

func pathSegments(path string) []string {
	cleaned := filepath.Clean(path)
	parts := strings.Split(cleaned, string(filepath.Separator))
	segments := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

func sharedLeadingSegments(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
