package reader

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// DefaultHeaderSearchRows is the number of leading rows scanned for the header.
const DefaultHeaderSearchRows = 20

// minHeaderCells is the row width at which the text-majority rule applies.
const minHeaderCells = 4

// DetectHeaderRow returns the zero-based index of the header row among the
// leading rows of a file.
//
// The first row with at least four cells where more than half of the cells
// are non-empty text (not plain decimals) wins. Failing that, the first row
// with any non-empty cell is used, and failing that, row 0.
func DetectHeaderRow(rows [][]string) int {
	return detectHeaderRow(rows, DefaultHeaderSearchRows)
}

func detectHeaderRow(rows [][]string, limit int) int {
	if len(rows) > limit {
		rows = rows[:limit]
	}

	for i, row := range rows {
		if len(row) < minHeaderCells {
			continue
		}
		textCells := 0
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" && !isPlainDecimal(cell) {
				textCells++
			}
		}
		if textCells*2 > len(row) {
			return i
		}
	}

	for i, row := range rows {
		if !core.IsEmptyRow(row) {
			return i
		}
	}

	return 0
}

// isPlainDecimal reports whether s is digits with at most one '.'.
// Signs, exponents and separators make a cell text for header purposes.
func isPlainDecimal(s string) bool {
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SampleRows tokenizes up to limit records from text with the given
// delimiter. Malformed records are skipped.
func SampleRows(text string, delim rune, limit int) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows := make([][]string, 0, limit)
	for len(rows) < limit {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			break
		}
		rows = append(rows, rec)
	}
	return rows
}
