package reader

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// Encoding names understood by the reader.
const (
	EncodingUTF8        = "utf-8"
	EncodingReplacement = "utf-8-replace"
)

// DefaultFallbackEncodings are tried in order after strict UTF-8 fails.
var DefaultFallbackEncodings = []string{"latin1", "cp1252", "iso-8859-1"}

var knownEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp850":        charmap.CodePage850,
	"mac":          charmap.Macintosh,
}

// lookupEncoding resolves an encoding name, falling back to the IANA index.
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := knownEncodings[key]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// decode converts data to UTF-8 text using the named encoding.
//
// EncodingUTF8 is strict and fails with ErrDecode on invalid input.
// EncodingReplacement substitutes U+FFFD for invalid sequences.
func decode(data []byte, name string) (string, error) {
	switch name {
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid utf-8", core.ErrDecode)
		}
		return string(data), nil
	case EncodingReplacement:
		out, err := unicode.UTF8.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrDecode, err)
		}
		return string(out), nil
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", core.ErrDecode, name, err)
	}
	return string(out), nil
}
