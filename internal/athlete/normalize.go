package athlete

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoKey is the sentinel returned when a name cannot produce a matching key.
// Callers must treat it as "cannot match, must create".
const NoKey = ""

var (
	// Full dates in the separator styles source systems actually emit:
	// 11-25-2019, 2019/11/25, 11.25.19.
	fullDatePattern = regexp.MustCompile(`\b\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b`)
	// Trailing month/day pairs such as "Weiss, Ryan 11-25".
	trailingMonthDayPattern = regexp.MustCompile(`[\s_]\d{1,2}[-/]\d{1,2}\s*$`)
	// Bare four-digit years.
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeName derives the canonical matching key for a display name:
// date-like substrings stripped, "LAST, FIRST" reordered to "FIRST LAST",
// whitespace collapsed, uppercased. The function is idempotent, and returns
// NoKey for empty or unusable input instead of failing.
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return NoKey
	}

	name = fullDatePattern.ReplaceAllString(name, " ")
	name = trailingMonthDayPattern.ReplaceAllString(name, " ")
	name = yearPattern.ReplaceAllString(name, " ")

	if first, last, ok := splitLastFirst(name); ok {
		name = first + " " + last
	}

	name = whitespacePattern.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" || name == "," {
		return NoKey
	}
	return strings.ToUpper(name)
}

// splitLastFirst treats a comma as "LAST, FIRST" ordering and returns the
// reordered halves. Names with empty halves are left alone.
func splitLastFirst(name string) (first, last string, ok bool) {
	idx := strings.Index(name, ",")
	if idx < 0 {
		return "", "", false
	}
	last = strings.TrimSpace(name[:idx])
	first = strings.TrimSpace(strings.ReplaceAll(name[idx+1:], ",", " "))
	if last == "" && first == "" {
		return "", "", false
	}
	if first == "" {
		return last, "", true
	}
	if last == "" {
		return first, "", true
	}
	return first, last, true
}

var displayCaser = cases.Title(language.English)

// DisplayTitle tidies a raw label into a human-facing display name. Used when
// an identity has to be created from an owner label or an all-caps export.
func DisplayTitle(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}
	name = strings.NewReplacer("_", " ", ".", " ").Replace(name)
	name = whitespacePattern.ReplaceAllString(name, " ")
	return displayCaser.String(strings.ToLower(strings.TrimSpace(name)))
}
