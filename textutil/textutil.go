package textutil

import (
	"fmt"
	"strings"
)

// illegalNameChars can't appear in a tournament name, because the name
// becomes a file name on every platform we write to.
const illegalNameChars = `\/:"*?<>|`

// ValidTournamentName reports whether name is safe to use as a file name.
func ValidTournamentName(name string) bool {
	return !strings.ContainsAny(name, illegalNameChars)
}

// IsDigits reports whether s is a non-empty run of ASCII decimal digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SplitLines trims the whole input, splits it on newlines, and trims each
// line.  Blank lines are kept so that callers counting lines see them.
func SplitLines(input string) []string {
	lines := strings.Split(strings.TrimSpace(input), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// FormatPlace converts a numeric place (1, 2, 3, ...) to a string ("1st", "2nd", "3rd", ...).
func FormatPlace(place int) string {
	suffix := "th"
	if place%100 < 11 || place%100 > 13 {
		switch place % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", place, suffix)
}
