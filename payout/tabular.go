package payout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type column int

const (
	colRank column = iota
	colName
	colAmount
	colBounty
)

// columnNames are header spellings, compared after normalizeHeader.
var columnNames = map[string]column{
	"rank":       colRank,
	"place":      colRank,
	"pos":        colRank,
	"position":   colRank,
	"#":          colRank,
	"name":       colName,
	"player":     colName,
	"playername": colName,
	"nickname":   colName,
	"payout":     colAmount,
	"prize":      colAmount,
	"amount":     colAmount,
	"winnings":   colAmount,
	"bounty":     colBounty,
	"bounties":   colBounty,
}

const headerScanRows = 5

type layout struct {
	rank, name, amount int
}

var defaultLayout = layout{rank: 0, name: 1, amount: 2}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// detectLayout looks for a header row among the first few rows.  It returns
// the layout and the index of the first data row.  Without a header, the
// columns are rank, name, payout from the first row on.
func detectLayout(rows [][]string) (layout, int) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		found := map[column]int{}
		for j, cell := range rows[i] {
			if c, ok := columnNames[normalizeHeader(cell)]; ok {
				if _, dup := found[c]; !dup {
					found[c] = j
				}
			}
		}
		rank, okRank := found[colRank]
		name, okName := found[colName]
		amount, okAmount := found[colAmount]
		if okRank && okName && okAmount {
			return layout{rank: rank, name: name, amount: amount}, i + 1
		}
	}
	return defaultLayout, 0
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRows(mode Mode, rows [][]string) *Result {
	r := newResult(mode)
	lay, start := detectLayout(rows)
	for _, row := range rows[start:] {
		if blankRow(row) {
			continue
		}
		e, ok := acceptEntry(cell(row, lay.rank), cell(row, lay.name), cell(row, lay.amount))
		if !ok {
			r.Skipped++
			continue
		}
		r.Players.Set(e)
	}
	return r
}

// sniffDelimiter picks tab when any of the first lines has one.  Rows pasted
// from a spreadsheet come tab-separated, and their amounts may carry
// thousands separators, so commas can't be counted against tabs.
func sniffDelimiter(data []byte) rune {
	lines := bytes.SplitN(data, []byte("\n"), headerScanRows+1)
	for _, line := range lines {
		if bytes.IndexByte(line, '\t') >= 0 {
			return '\t'
		}
	}
	return ','
}

// ParseCSV reads comma- or tab-separated payout rows.
func ParseCSV(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return parseRows(ModeCSV, rows), nil
}

// ErrLegacyWorkbook is returned for old binary .xls workbooks.
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks aren't supported; save as .xlsx")

// oleMagic starts every OLE2 compound file, which is what .xls workbooks are.
var oleMagic = []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1")

// ParseXLSX reads payout rows from the first sheet of a workbook.
func ParseXLSX(data []byte) (*Result, error) {
	if bytes.HasPrefix(data, oleMagic) {
		return nil, ErrLegacyWorkbook
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return parseRows(ModeXLSX, rows), nil
}
