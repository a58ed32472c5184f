package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// IsPrebundled reports whether path names an already-bundled payload
// archive (.tgz or .tar.gz), in which case Stage A is skipped entirely and
// the file is used as the Stage-A output verbatim.
func IsPrebundled(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz")
}

// Extract reads a gzipped tar stream (as produced by Build) and writes
// every entry into destDir, preserving the recorded file mode. Signature
// entries and the bundle index are extracted like any other file; callers
// that want them filtered out should do so by name.
func Extract(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "archive: not a gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "archive: corrupt tar stream")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "archive: cannot create directory for %q", target)
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return errors.Wrapf(err, "archive: cannot create %q", target)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return errors.Wrapf(err, "archive: cannot write %q", target)
		}
		if err := out.Close(); err != nil {
			return errors.Wrapf(err, "archive: cannot close %q", target)
		}
	}
}
