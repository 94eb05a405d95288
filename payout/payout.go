// Package payout turns pasted payout listings into a rank to prize mapping.
//
// Free text follows the three-lines-per-finisher layout that poker sites
// show in their lobbies:
//
//	1
//	Alice
//	$1,000.00
//
// Progressive knockout (PKO) lobbies print bounty and prize figures on the
// same line, so ParsePKO has to guess which figure is the prize.  The CSV
// and XLSX parsers take explicit columns instead and don't guess.
package payout

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects a parser.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModePKO      Mode = "pko"
	ModeCSV      Mode = "csv"
	ModeXLSX     Mode = "xlsx"
)

var Modes = []Mode{ModeStandard, ModePKO, ModeCSV, ModeXLSX}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payout mode %q", s)
}

// ModeForFilename picks the tabular mode for a spreadsheet file name, or ""
// when the extension doesn't say.
func ModeForFilename(filename string) Mode {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv":
		return ModeCSV
	case ".xlsx", ".xls":
		return ModeXLSX
	default:
		return ""
	}
}

// Result is the outcome of one parse.
type Result struct {
	Mode    Mode
	Players *Players

	// Skipped counts input that was dropped: rejected windows for the
	// standard parser, noise lines for the PKO parser, rejected rows for
	// the tabular parsers.
	Skipped int

	// Err is set when the scan gave up before the end of the input.
	// Players still holds what was accepted before that point.
	Err error
}

// Partial reports whether the scan stopped early.
func (r *Result) Partial() bool {
	return r.Err != nil
}

// ScanError says where a scan gave up.
type ScanError struct {
	Line int // 1-based
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan stopped at line %d: %v", e.Line, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Parse runs the parser for mode over data.  Errors are only returned when
// the input can't be read at all (unknown mode, broken spreadsheet);
// malformed entries are skipped and counted in the Result.
func Parse(mode Mode, data []byte) (*Result, error) {
	switch mode {
	case ModeStandard:
		return ParseStandard(string(data)), nil
	case ModePKO:
		return ParsePKO(string(data)), nil
	case ModeCSV:
		return ParseCSV(data)
	case ModeXLSX:
		return ParseXLSX(data)
	default:
		return nil, fmt.Errorf("unknown payout mode %q", mode)
	}
}

func newResult(mode Mode) *Result {
	return &Result{Mode: mode, Players: NewPlayers()}
}
