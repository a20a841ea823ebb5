package core

import "time"

// LoadResult is the outcome of ingesting one file.
type LoadResult struct {
	Path  string
	Table *Table // Empty table (never nil) when Err is nil but the file had no data
	Err   error  // Non-nil if the file failed

	Fingerprint  string // Content hash, empty unless fingerprinting is enabled
	Encoding     string // Encoding that produced the table
	Delimiter    rune
	HeaderRow    int
	SkippedLines int // Malformed lines dropped by the parser
	Duration     time.Duration
	Cached       bool    // Served from the coordinator cache
	Warnings     []error // Conditions recovered from while reading
}

// OK reports whether the file produced a table.
func (r *LoadResult) OK() bool {
	return r != nil && r.Err == nil && r.Table != nil
}

// EventKind tags a batch event.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
	EventDone     EventKind = "done"
)

// Event is a single message on a batch's progress channel.
//
// Progress events carry Current, Total and File. Error events carry File and
// Message. The terminal Done event carries Results and, when the batch was
// cancelled, the paths that were never read in Skipped.
type Event struct {
	Kind    EventKind
	BatchID string

	Current int
	Total   int
	File    string

	Message string
	Err     error

	Results   []*LoadResult
	Skipped   []string
	Cancelled bool
}

// Percent returns the progress as a percentage (0-100).
func (e Event) Percent() int {
	if e.Kind == EventDone {
		return 100
	}
	if e.Total <= 0 {
		return 0
	}
	return (e.Current * 100) / e.Total
}
