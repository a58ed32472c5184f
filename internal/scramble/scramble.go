package scramble

import (
	"io"

	"github.com/pkg/errors"
)

// bufSize is the chunk size used to stream bytes through the permutation.
// The transform is byte-local so no alignment is required; this merely
// bounds memory use for arbitrarily large bundle bodies.
const bufSize = 64 * 1024

// Scramble reads up to n bytes from src (0 means read to EOF), applies the
// P permutation byte-wise unless skip is true, and writes the result to
// sink. skip lets already-scrambled or user-data bodies pass through
// untouched so an outer envelope's MD5 still sees the canonical bytes.
func Scramble(src io.Reader, sink io.Writer, n int64, skip bool) error {
	return transform(src, sink, n, skip, &P)
}

// Unscramble is Scramble's inverse, applying G instead of P.
func Unscramble(src io.Reader, sink io.Writer, n int64, skip bool) error {
	return transform(src, sink, n, skip, &G)
}

func transform(src io.Reader, sink io.Writer, n int64, skip bool, table *[256]byte) error {
	if !skip {
		src = &tableReader{r: src, table: table}
	}
	buf := make([]byte, bufSize)
	var err error
	if n <= 0 {
		_, err = io.CopyBuffer(sink, src, buf)
	} else {
		_, err = io.CopyBuffer(sink, io.LimitReader(src, n), buf)
	}
	if err != nil {
		return errors.Wrap(err, "scramble: transform failed")
	}
	return nil
}

// tableReader wraps an io.Reader, substituting each byte read through table.
// It is deliberately simple: the transform is byte-local so no windowing or
// carry state is needed between reads.
type tableReader struct {
	r     io.Reader
	table *[256]byte
}

func (t *tableReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] = t.table[p[i]]
	}
	return n, err
}
