package payout

import (
	"regexp"
	"strings"

	"github.com/ts4z/ggsc/textutil"
)

// amountTokenRE finds money figures in a PKO amount field.
var amountTokenRE = regexp.MustCompile(`\d+\.\d{2}`)

// ParsePKO scans for rank lines, skipping anything that isn't one, and
// reads the name and amount field after each.  The prize is picked out of
// the amount field by ResolvePKOAmount.
//
// If a figure can't be represented, the scan stops and the Result carries
// a *ScanError along with everything read so far.
func ParsePKO(raw string) *Result {
	lines := textutil.SplitLines(raw)
	r := newResult(ModePKO)
	for i := 0; i < len(lines); {
		if i+2 >= len(lines) || !textutil.IsDigits(lines[i]) {
			r.Skipped++
			i++
			continue
		}
		amount, err := ResolvePKOAmount(Normalize(lines[i+2]))
		if err != nil {
			r.Err = &ScanError{Line: i + 3, Err: err}
			return r
		}
		r.Players.Set(Entry{Rank: lines[i], Name: lines[i+1], Amount: amount})
		i += 3
	}
	return r
}

// ResolvePKOAmount picks the prize out of a normalized PKO amount field.
//
//   - A "finished" row lists bounty then prize; the last figure is the prize.
//   - A figure shown more than once with nothing else is the prize.
//   - Otherwise the figure that appears exactly once is the prize; repeated
//     figures are bounties.
//
// When nothing fits, the prize is zero, which callers reject.
func ResolvePKOAmount(field string) (float64, error) {
	tokens := amountTokenRE.FindAllString(field, -1)

	if strings.Contains(field, "finished") {
		if len(tokens) == 0 {
			return 0, nil
		}
		return parseAmount(tokens[len(tokens)-1])
	}

	values := make([]float64, len(tokens))
	counts := map[float64]int{}
	for i, tok := range tokens {
		v, err := parseAmount(tok)
		if err != nil {
			return 0, err
		}
		values[i] = v
		counts[v]++
	}

	if len(counts) == 1 {
		return values[0], nil
	}

	for _, v := range values {
		if counts[v] == 1 {
			return v, nil
		}
	}
	return 0, nil
}
