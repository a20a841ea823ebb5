package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// DefaultMaxFileSize is the maximum decompressed size read into memory (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// DefaultSniffBytes is the sample size used for delimiter detection.
const DefaultSniffBytes = 4096

// Options configures a Reader.
type Options struct {
	MaxFileSize      int64    // Decompressed size limit, 0 disables it
	SniffBytes       int      // Bytes sampled for delimiter detection
	HeaderSearchRows int      // Leading rows scanned for the header
	Encodings        []string // Tried in order after strict UTF-8
	Decompress       bool     // Transparently decompress gzip, bzip2, xz, zstd, lz4
	Logger           *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:      DefaultMaxFileSize,
		SniffBytes:       DefaultSniffBytes,
		HeaderSearchRows: DefaultHeaderSearchRows,
		Encodings:        DefaultFallbackEncodings,
		Decompress:       true,
	}
}

// Result is a successfully read file.
type Result struct {
	Table        *core.Table // Untyped text columns
	Encoding     string
	Delimiter    rune
	HeaderRow    int
	SkippedLines int
	Compression  Compression
	Strategy     string

	// Warnings holds the conditions that were recovered from while reading,
	// such as ErrDelimiterDetection, ErrDecode or ErrEmptyFile.
	Warnings []error
}

// Empty reports whether the read produced no columns.
func (r *Result) Empty() bool {
	return r.Table == nil || r.Table.NumCols() == 0
}

// Reader turns CSV files into untyped tables by trying an ordered list of
// parse strategies until one yields data.
type Reader struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Reader. Zero-valued options fall back to defaults.
func New(opts Options) *Reader {
	def := DefaultOptions()
	if opts.SniffBytes <= 0 {
		opts.SniffBytes = def.SniffBytes
	}
	if opts.HeaderSearchRows <= 0 {
		opts.HeaderSearchRows = def.HeaderSearchRows
	}
	if opts.Encodings == nil {
		opts.Encodings = def.Encodings
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{opts: opts, logger: logger.With("component", "reader")}
}

// Load detects the header row and reads the file.
func (r *Reader) Load(ctx context.Context, path string) (*Result, error) {
	return r.read(ctx, path, -1)
}

// Read reads the file using a known header row index.
func (r *Reader) Read(ctx context.Context, path string, headerRow int) (*Result, error) {
	if headerRow < 0 {
		headerRow = 0
	}
	return r.read(ctx, path, headerRow)
}

// DetectHeader samples the file and returns its header row index.
// Any failure is logged and yields 0.
func (r *Reader) DetectHeader(ctx context.Context, path string) int {
	if err := ctx.Err(); err != nil {
		r.logger.Warn("header detection skipped", "file", path, "error", err)
		return 0
	}
	data, _, err := readAll(path, r.opts.Decompress, r.opts.MaxFileSize)
	if err != nil {
		r.logger.Error("header detection failed", "file", path, "error", err)
		return 0
	}
	text, _ := decode(data, EncodingReplacement)
	delim, _ := SniffDelimiter(head(text, r.opts.SniffBytes))
	return r.detectHeader(text, delim)
}

func (r *Reader) detectHeader(text string, delim rune) int {
	n := r.opts.HeaderSearchRows
	return detectHeaderRow(SampleRows(text, delim, n), n)
}

// strategy is one attempt at turning decoded text into a header and rows.
type strategy struct {
	name       string
	encoding   string
	parse      func(text string, delim rune, headerRow int) (*parsed, error)
	headerOnly bool // A header with no data rows counts as success
}

type parsed struct {
	header    []string
	rows      [][]string
	headerRow int
	skipped   int
	warnings  []error
}

// strategies returns the ordered attempts: CSV then manual split for UTF-8
// and each fallback encoding, then CSV with replacement decoding.
func (r *Reader) strategies() []strategy {
	encs := append([]string{EncodingUTF8}, r.opts.Encodings...)
	list := make([]strategy, 0, 2*len(encs)+1)
	for _, enc := range encs {
		list = append(list,
			strategy{name: "csv", encoding: enc, parse: parseCSV},
			strategy{name: "manual", encoding: enc, parse: parseManual, headerOnly: true},
		)
	}
	return append(list, strategy{name: "csv", encoding: EncodingReplacement, parse: parseCSV, headerOnly: true})
}

func (r *Reader) read(ctx context.Context, path string, headerRow int) (*Result, error) {
	logger := r.logger.With("file", path)

	data, kind, err := readAll(path, r.opts.Decompress, r.opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res := &Result{Compression: kind, Delimiter: DefaultDelimiter}

	if strings.TrimSpace(string(data)) == "" {
		logger.Warn("file is empty")
		res.Table = core.Empty()
		res.Warnings = append(res.Warnings, core.ErrEmptyFile)
		return res, nil
	}

	// Sniffing and header detection tolerate bad bytes.
	lenient, _ := decode(data, EncodingReplacement)

	delim, err := SniffDelimiter(head(lenient, r.opts.SniffBytes))
	if err != nil {
		logger.Warn("delimiter detection failed, using default", "delimiter", string(DefaultDelimiter), "error", err)
		res.Warnings = append(res.Warnings, err)
	}
	res.Delimiter = delim

	if headerRow < 0 {
		headerRow = r.detectHeader(lenient, delim)
		logger.Debug("detected header row", "row", headerRow)
	}

	decoded := make(map[string]string)
	var errs []error
	allFailed := true

	for _, st := range r.strategies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, ok := decoded[st.encoding]
		if !ok {
			text, err = decode(data, st.encoding)
			if err != nil {
				logger.Debug("decode failed", "encoding", st.encoding, "error", err)
				res.Warnings = append(res.Warnings, err)
				errs = append(errs, err)
				decoded[st.encoding] = ""
				continue
			}
			decoded[st.encoding] = text
		} else if text == "" {
			continue
		}

		p, err := st.parse(text, delim, headerRow)
		if err != nil {
			logger.Debug("strategy failed", "strategy", st.name, "encoding", st.encoding, "error", err)
			errs = append(errs, fmt.Errorf("%s/%s: %w", st.name, st.encoding, err))
			continue
		}
		allFailed = false
		if p.header == nil || (len(p.rows) == 0 && !st.headerOnly) {
			logger.Debug("strategy produced no data", "strategy", st.name, "encoding", st.encoding)
			continue
		}

		for _, w := range p.warnings {
			logger.Warn("recovered while reading", "strategy", st.name, "error", w)
		}
		if p.skipped > 0 {
			logger.Warn("skipped malformed lines", "count", p.skipped)
		}

		tbl, err := buildTable(p.header, p.rows)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		res.Table = tbl
		res.Encoding = st.encoding
		res.HeaderRow = p.headerRow
		res.SkippedLines = p.skipped
		res.Strategy = st.name
		res.Warnings = append(res.Warnings, p.warnings...)
		logger.Debug("file read",
			"strategy", st.name,
			"encoding", st.encoding,
			"delimiter", string(delim),
			"rows", tbl.NumRows(),
			"columns", tbl.NumCols(),
		)
		return res, nil
	}

	if allFailed {
		return nil, fmt.Errorf("read %s: %w: %w", path, core.ErrAllStrategiesFailed, errors.Join(errs...))
	}

	logger.Warn("no usable data in file")
	res.Table = core.Empty()
	res.Warnings = append(res.Warnings, core.ErrEmptyFile)
	return res, nil
}

// parseCSV parses quoted CSV. Records wider than the header are skipped as
// malformed; a header index past the end of the file fails the strategy.
func parseCSV(text string, delim rune, headerRow int) (*parsed, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	p := &parsed{headerRow: headerRow}
	index := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			p.skipped++
			continue
		}
		if err != nil {
			return nil, err
		}

		switch {
		case index < headerRow:
		case index == headerRow:
			p.header = rec
		case len(rec) > len(p.header):
			p.skipped++
		case !core.IsEmptyRow(rec):
			p.rows = append(p.rows, rec)
		}
		index++
	}

	if p.header == nil {
		return nil, fmt.Errorf("%w: row %d of %d", core.ErrHeaderOutOfRange, headerRow, index)
	}
	return p, nil
}

// parseManual splits lines on the delimiter without quote handling. An out
// of range header index is clamped to 0.
func parseManual(text string, delim rune, headerRow int) (*parsed, error) {
	sep := string(delim)
	var lines [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.Split(line, sep))
	}
	if len(lines) == 0 {
		return &parsed{}, nil
	}

	p := &parsed{headerRow: headerRow}
	if headerRow >= len(lines) {
		p.warnings = append(p.warnings, fmt.Errorf("%w: row %d of %d, using row 0", core.ErrHeaderOutOfRange, headerRow, len(lines)))
		p.headerRow = 0
	}

	p.header = lines[p.headerRow]
	for _, row := range lines[p.headerRow+1:] {
		if !core.IsEmptyRow(row) {
			p.rows = append(p.rows, row)
		}
	}
	return p, nil
}

// buildTable normalizes header names and pads or truncates rows to the
// header width. Cells are trimmed so blank cells become absent.
func buildTable(header []string, rows [][]string) (*core.Table, error) {
	names := NormalizeHeaders(header)
	cols := make([]*core.Column, len(names))
	for j, name := range names {
		values := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = strings.TrimSpace(row[j])
			}
		}
		cols[j] = core.NewTextColumn(name, values)
	}
	return core.NewTable(cols...)
}

// head returns at most n bytes of s without splitting a rune.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
