package core

// convert.go provides cell cleanup and numeric parsing shared by the reader,
// the inferencer and the filter engine.
//
// The strict parser accepts plain integers, decimals and scientific
// notation. The lenient parser additionally handles the messy reality of
// exported spreadsheets:
//   - Currency symbols and thousand separators
//   - Accounting negatives "(123.45)"
//   - Excel formula prefixes (="value")

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses a trimmed cell as a float.
// Returns false for empty or non-numeric input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseNumberLenient parses a cell after stripping currency symbols,
// thousands separators and accounting-style parentheses.
func ParseNumberLenient(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	return ParseNumber(s)
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// IsEmptyRow reports whether every cell is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
