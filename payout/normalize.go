package payout

import (
	"math"
	"strconv"
	"strings"
)

// currencyMarkers are removed from amount fields.  " +" is a space followed
// by a plus sign, which some sites put between a prize and a ticket.
var currencyMarkers = []string{"$", ",", "¥", " +", "€", "₩", "£", "₱", "฿"}

// Normalize strips currency symbols, thousands separators and surrounding
// whitespace from an amount field.  It doesn't check that what's left is a
// number.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range currencyMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

// parseAmount parses a normalized amount.  Amounts must be finite and not
// negative.
func parseAmount(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrRange}
	}
	if f < 0 {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	return f, nil
}
