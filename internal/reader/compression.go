package reader

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Compression is the container format of an input file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Magic byte signatures, longest is xz (6 bytes).
var magics = []struct {
	kind  Compression
	magic []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b}},
	{CompressionBzip2, []byte{0x42, 0x5a, 0x68}},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{CompressionLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// DetectCompression identifies the container format from the leading bytes.
// The bzip2 signature is printable text, so it also needs the block size
// digit that follows it.
func DetectCompression(header []byte) Compression {
	for _, m := range magics {
		if !bytes.HasPrefix(header, m.magic) {
			continue
		}
		if m.kind == CompressionBzip2 && (len(header) < 4 || header[3] < '1' || header[3] > '9') {
			continue
		}
		return m.kind
	}
	return CompressionNone
}

// decompressor wraps the decoder and the file so both are closed together.
type decompressor struct {
	io.Reader
	closers []func() error
}

func (d *decompressor) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openStream opens path and returns a reader over its decompressed, BOM-free
// content, limited to maxSize bytes. When decompress is false, compressed
// input is read as-is.
func openStream(path string, decompress bool, maxSize int64) (io.ReadCloser, Compression, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CompressionNone, err
	}

	br := bufio.NewReader(f)
	d := &decompressor{closers: []func() error{f.Close}}

	kind := CompressionNone
	if decompress {
		header, _ := br.Peek(6)
		kind = DetectCompression(header)
	}

	var r io.Reader = br
	switch kind {
	case CompressionNone:
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			d.Close()
			return nil, kind, fmt.Errorf("decompress gzip: %w", err)
		}
		d.closers = append(d.closers, gz.Close)
		r = gz
	case CompressionBzip2:
		r = bzip2.NewReader(br)
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			d.Close()
			return nil, kind, fmt.Errorf("decompress xz: %w", err)
		}
		r = xr
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			d.Close()
			return nil, kind, fmt.Errorf("decompress zstd: %w", err)
		}
		d.closers = append(d.closers, func() error { zr.Close(); return nil })
		r = zr
	case CompressionLZ4:
		r = lz4.NewReader(br)
	default:
		d.Close()
		return nil, kind, fmt.Errorf("%w: %s", core.ErrUnsupportedCompression, kind)
	}

	d.Reader = newCountingReader(newBOMSkippingReader(r), maxSize)
	return d, kind, nil
}

// readAll pulls the whole decompressed file into memory. The bzip2 magic is
// printable, so a bzip2 candidate whose decoder fails before producing any
// output is read again as plain text.
func readAll(path string, decompress bool, maxSize int64) ([]byte, Compression, error) {
	data, kind, err := readStream(path, decompress, maxSize)
	if err == nil || kind != CompressionBzip2 || len(data) > 0 || errors.Is(err, core.ErrFileTooLarge) {
		return data, kind, err
	}

	raw, _, rawErr := readStream(path, false, maxSize)
	if rawErr != nil {
		return nil, kind, err
	}
	return raw, CompressionNone, nil
}

func readStream(path string, decompress bool, maxSize int64) ([]byte, Compression, error) {
	rc, kind, err := openStream(path, decompress, maxSize)
	if err != nil {
		return nil, kind, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		if kind != CompressionNone && len(data) == 0 {
			return nil, kind, fmt.Errorf("decompress %s: %w", kind, err)
		}
		return nil, kind, err
	}
	return data, kind, nil
}
