package reader

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// DefaultDelimiter is used when sniffing finds nothing better.
const DefaultDelimiter = ','

// delimiterCandidates in order of preference for ties.
var delimiterCandidates = []rune{',', ';', '\t', '|', ':'}

// SniffDelimiter guesses the field delimiter from a text sample.
//
// Every candidate is counted per line outside of quoted sections. The
// candidate that appears with the same non-zero count on the most lines
// wins; ties go to candidate order. A sample with no candidate at all
// returns ErrDelimiterDetection together with DefaultDelimiter.
func SniffDelimiter(sample string) (rune, error) {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return DefaultDelimiter, fmt.Errorf("%w: empty sample", core.ErrDelimiterDetection)
	}

	best := rune(0)
	bestConsistent := 0

	for _, cand := range delimiterCandidates {
		mode, consistent := delimiterStats(lines, cand)
		if mode == 0 {
			continue
		}
		if consistent > bestConsistent {
			best, bestConsistent = cand, consistent
		}
	}

	if best == 0 {
		return DefaultDelimiter, fmt.Errorf("%w: no candidate delimiter in sample", core.ErrDelimiterDetection)
	}
	return best, nil
}

// sampleLines splits the sample into non-blank lines. The final line is
// dropped when the sample was cut mid-line and other lines exist.
func sampleLines(sample string) []string {
	sample = strings.ReplaceAll(sample, "\r\n", "\n")
	raw := strings.Split(sample, "\n")

	truncated := !strings.HasSuffix(sample, "\n")
	if truncated && len(raw) > 1 {
		raw = raw[:len(raw)-1]
	}

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// delimiterStats returns the most common non-zero per-line count of d and
// the number of lines having exactly that count.
func delimiterStats(lines []string, d rune) (mode, consistent int) {
	freq := make(map[int]int)
	for _, line := range lines {
		if n := countOutsideQuotes(line, d); n > 0 {
			freq[n]++
		}
	}
	for count, lineCount := range freq {
		if lineCount > consistent || (lineCount == consistent && count > mode) {
			mode, consistent = count, lineCount
		}
	}
	return mode, consistent
}

func countOutsideQuotes(line string, d rune) int {
	n := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == d && !inQuotes:
			n++
		}
	}
	return n
}
