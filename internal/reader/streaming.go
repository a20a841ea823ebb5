package reader

// streaming.go holds the io.Reader wrappers applied while a file is pulled
// into memory:
//
//   - bomSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - countingReader: tracks bytes read and enforces the size limit
//
// openStream applies them in order after decompression.

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/csvcore/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type bomSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	pending    []byte // bytes read during BOM detection that were not a BOM
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

// Read implements io.Reader. The first call checks for and skips the BOM.
func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < 3 || buf[0] != utf8BOM[0] || buf[1] != utf8BOM[1] || buf[2] != utf8BOM[2] {
			r.pending = append(r.pending, buf[:n]...)
		}
		if n < 3 && len(r.pending) == 0 {
			return 0, io.EOF
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// countingReader tracks bytes read and fails once more than limit bytes
// have been produced. A limit of 0 disables the check.
type countingReader struct {
	reader    io.Reader
	limit     int64
	BytesRead int64
}

func newCountingReader(r io.Reader, limit int64) *countingReader {
	return &countingReader{reader: r, limit: limit}
}

// Read implements io.Reader.
func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.limit > 0 && r.BytesRead > r.limit {
		return n, fmt.Errorf("%w: exceeds %dMB limit", core.ErrFileTooLarge, r.limit/(1024*1024))
	}
	return n, err
}
