package reader

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvcore/internal/core"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'x'}, string([]byte{0xEF, 0xBB, 'x'})},
		{"short input", []byte("a"), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkippingReader(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestBOMSkippingReader_SmallReads(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, "id,name\n1,x\n"...)
	got, err := io.ReadAll(iotest.OneByteReader(newBOMSkippingReader(bytes.NewReader(in))))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,x\n", string(got))
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)

	r := newCountingReader(strings.NewReader(input), 0)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, got, 1000)
	assert.Equal(t, int64(1000), r.BytesRead)

	limited := newCountingReader(strings.NewReader(input), 999)
	_, err = io.ReadAll(limited)
	assert.ErrorIs(t, err, core.ErrFileTooLarge)

	exact := newCountingReader(strings.NewReader(input), 1000)
	_, err = io.ReadAll(exact)
	assert.NoError(t, err)
}
