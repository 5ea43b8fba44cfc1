package athlete_test

import (
	"testing"

	"rosterid/internal/athlete"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Ryan Weiss", "RYAN WEISS"},
		{"last comma first", "Weiss, Ryan", "RYAN WEISS"},
		{"trailing month day", "Weiss, Ryan 11-25", "RYAN WEISS"},
		{"full dash date", "Ryan Weiss 11-25-2019", "RYAN WEISS"},
		{"full slash date", "Ryan Weiss 2019/11/25", "RYAN WEISS"},
		{"dotted date", "Ryan Weiss 11.25.19", "RYAN WEISS"},
		{"bare year", "Ryan Weiss 2021", "RYAN WEISS"},
		{"collapse whitespace", "  Ryan   Weiss ", "RYAN WEISS"},
		{"already normalized", "RYAN WEISS", "RYAN WEISS"},
		{"comma no first", "Weiss,", "WEISS"},
		{"comma no last", ", Ryan", "RYAN"},
		{"underscored label", "weiss_ryan", "WEISS_RYAN"},
		{"empty", "", athlete.NoKey},
		{"only whitespace", "   ", athlete.NoKey},
		{"only date", "11-25-2019", athlete.NoKey},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := athlete.NormalizeName(tc.input)
			if got != tc.want {
				t.Fatalf("NormalizeName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"Weiss, Ryan 11-25",
		"Smith, John",
		"MARY-JANE WATSON",
		"de la Cruz, Oscar 2020",
		"O'Brien, Conor",
		"",
		"player_007",
	}
	for _, input := range inputs {
		once := athlete.NormalizeName(input)
		twice := athlete.NormalizeName(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := map[string]string{
		"weiss_ryan":  "Weiss Ryan",
		"JOHN SMITH":  "John Smith",
		"  mary  ann": "Mary Ann",
		"":            "",
	}
	for input, want := range cases {
		if got := athlete.DisplayTitle(input); got != want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
