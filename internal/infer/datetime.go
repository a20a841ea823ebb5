package infer

import (
	"regexp"
	"strings"
	"time"
)

// datetimePattern is a recognizable date or timestamp shape and the layouts
// used to parse values that have it.
type datetimePattern struct {
	name    string
	match   *regexp.Regexp
	layouts []string
}

// Patterns are tested in order; the first one matched by enough of the
// sample decides how the column is parsed. Matching is anchored at the start
// of the value only, so trailing fractions or zones do not prevent detection.
var datetimePatterns = []datetimePattern{
	{
		name:  "M/D/YYYY h:mm:ss [AM|PM]",
		match: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}\s+\d{1,2}:\d{1,2}:\d{1,2}\s*(?:AM|PM)?`),
		layouts: []string{
			"1/2/2006 3:04:05 PM",
			"1/2/2006 3:04:05PM",
			"1/2/2006 15:04:05",
			"1/2/06 3:04:05 PM",
			"1/2/06 3:04:05PM",
			"1/2/06 15:04:05",
		},
	},
	{
		name:    "D-M-YYYY HH:mm:ss",
		match:   regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}\s+\d{1,2}:\d{1,2}:\d{1,2}`),
		layouts: []string{"2-1-2006 15:04:05", "2-1-06 15:04:05"},
	},
	{
		name:    "YYYY-M-D HH:mm:ss",
		match:   regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}\s+\d{1,2}:\d{1,2}:\d{1,2}`),
		layouts: []string{"2006-1-2 15:04:05", "2006-1-2T15:04:05"},
	},
	{
		name:  "M/D/YYYY",
		match: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}`),
		layouts: []string{
			"1/2/2006",
			"1/2/06",
			"1/2/2006 3:04:05 PM",
			"1/2/2006 15:04:05",
			"1/2/2006 3:04 PM",
			"1/2/2006 15:04",
		},
	},
}

// detectPattern returns the first pattern matched by at least threshold of
// the sample, or nil.
func detectPattern(sample []string, threshold float64) *datetimePattern {
	if len(sample) == 0 {
		return nil
	}
	need := threshold * float64(len(sample))
	for i := range datetimePatterns {
		p := &datetimePatterns[i]
		matches := 0
		for _, v := range sample {
			if p.match.MatchString(v) {
				matches++
			}
		}
		if matches > 0 && float64(matches) >= need {
			return p
		}
	}
	return nil
}

// parse converts a cell using the pattern's layouts. Values that fit none of
// them yield the zero time, the absent marker.
func (p *datetimePattern) parse(value string) time.Time {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return time.Time{}
	}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
