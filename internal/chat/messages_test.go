package chat

import (
	"strings"
	"testing"
)

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"},
		{101, "101st"}, {111, "111th"}, {112, "112th"}, {113, "113th"},
	}
	for _, tt := range tests {
		if got := ordinal(tt.n); got != tt.want {
			t.Errorf("ordinal(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPlateNotFound_CapsSuggestionsAtFive(t *testing.T) {
	suggestions := []string{"A", "B", "C", "D", "E", "F", "G"}
	got := plateNotFound("T123456C", suggestions)

	if !strings.Contains(got, "5. E") {
		t.Errorf("fifth suggestion missing: %q", got)
	}
	if strings.Contains(got, "6. F") {
		t.Errorf("more than five suggestions listed: %q", got)
	}
}

func TestPlateNotFound_NoSuggestions(t *testing.T) {
	got := plateNotFound("T123456C", nil)
	if !strings.Contains(got, "double-check") {
		t.Errorf("reply = %q, want re-entry prompt", got)
	}
	if strings.Contains(got, "Did you mean") {
		t.Errorf("reply = %q, suggestion header with no suggestions", got)
	}
}

func TestSightingConfirmed(t *testing.T) {
	got := sightingConfirmed("T999999C", 3, 21, 2)
	for _, want := range []string{"3rd sighting of T999999C", "21st overall", "your 2nd contribution"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply = %q, want %q", got, want)
		}
	}
}

func TestWelcomeWithImage(t *testing.T) {
	if got := welcomeWithImage("Alex"); !strings.Contains(got, "Alex") {
		t.Errorf("named welcome = %q", got)
	}
	if got := welcomeWithImage(""); strings.Contains(got, ",") {
		t.Errorf("anonymous welcome = %q, want no name clause", got)
	}
}
