package payout

import (
	"github.com/ts4z/ggsc/textutil"
)

// ParseStandard reads fixed rank/name/amount windows.  The cursor always
// moves three lines, so a stray line throws off every window after it;
// that's the layout contract, not something to repair here.
func ParseStandard(raw string) *Result {
	lines := textutil.SplitLines(raw)
	r := newResult(ModeStandard)
	for i := 0; i+2 < len(lines); i += 3 {
		e, ok := acceptEntry(lines[i], lines[i+1], lines[i+2])
		if !ok {
			r.Skipped++
			continue
		}
		r.Players.Set(e)
	}
	return r
}

// acceptEntry applies the checks shared by the standard and tabular
// parsers.
func acceptEntry(rank, name, amount string) (Entry, bool) {
	if !textutil.IsDigits(rank) || name == "" {
		return Entry{}, false
	}
	f, err := parseAmount(Normalize(amount))
	if err != nil {
		return Entry{}, false
	}
	return Entry{Rank: rank, Name: name, Amount: f}, true
}
