package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// openInput opens path for reading. An empty path or "-" means stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "kindletool: cannot open %q for reading", path)
	}
	return f, nil
}

// openOutput opens path for writing. An empty path or "-" means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "kindletool: cannot open %q for writing", path)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// argOrDefault returns args[i] if present, else def ("-" for stdio).
func argOrDefault(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func splitMeta(s string) (key, value string, ok bool) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
