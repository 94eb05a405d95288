package textutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidTournamentName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain words", input: "My Tournament 2024", want: true},
		{name: "dollar sign and hash are fine", input: "$215 Bounty #12", want: true},
		{name: "empty is not this check's problem", input: "", want: true},
		{name: "slash", input: "My/Tournament", want: false},
		{name: "backslash", input: `My\Tournament`, want: false},
		{name: "colon", input: "Sunday: Main", want: false},
		{name: "double quote", input: `The "Big" One`, want: false},
		{name: "asterisk", input: "Star*", want: false},
		{name: "question mark", input: "Why?", want: false},
		{name: "angle brackets", input: "<main>", want: false},
		{name: "pipe", input: "a|b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTournamentName(tt.input); got != tt.want {
				t.Errorf("ValidTournamentName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"0123", true},
		{"", false},
		{"1st", false},
		{" 1", false},
		{"-1", false},
		{"1.0", false},
		{"١", false}, // Arabic-Indic one
	}

	for _, tt := range tests {
		if got := IsDigits(tt.input); got != tt.want {
			t.Errorf("IsDigits(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "trims outer whitespace and each line",
			input: "\n  1 \n Alice\n$100.00  \n\n",
			want:  []string{"1", "Alice", "$100.00"},
		},
		{
			name:  "keeps interior blank lines",
			input: "1\n\n$5.00",
			want:  []string{"1", "", "$5.00"},
		},
		{
			name:  "CRLF",
			input: "1\r\nBob\r\n$2.00\r\n",
			want:  []string{"1", "Bob", "$2.00"},
		},
		{
			name:  "empty",
			input: "",
			want:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitLines(tt.input)); diff != "" {
				t.Errorf("SplitLines(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestFormatPlace(t *testing.T) {
	tests := map[int]string{
		1:   "1st",
		2:   "2nd",
		3:   "3rd",
		4:   "4th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		21:  "21st",
		102: "102nd",
		111: "111th",
	}
	for place, want := range tests {
		if got := FormatPlace(place); got != want {
			t.Errorf("FormatPlace(%d) = %q, want %q", place, got, want)
		}
	}
}
