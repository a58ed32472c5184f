// Package archive builds the Stage-A payload archive: a gzipped ustar tar
// stream carrying each input file, a companion ".sig" signature entry per
// file, and a trailing "update-filelist.dat" bundle index (plus its own
// signature).
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/rclone/kindletool/internal/keystore"
	"github.com/rclone/kindletool/internal/klog"
)

var log = klog.For("archive")

const (
	indexName = "update-filelist.dat"

	typeScript = 129
	typeData   = 128
)

// entry records one payload file discovered by a Builder walk, in the
// order the walk produced it (depth-first, as the platform yields entries).
type entry struct {
	sourcePath  string // path on the local filesystem
	archivePath string // path recorded inside the tar
	size        int64
	mode        fs.FileMode
}

// Builder accumulates payload files and emits the Stage-A archive.
type Builder struct {
	keys        *keystore.KeyStore
	legacyPaths bool // record paths relative to root instead of as given

	entries []entry
}

// NewBuilder returns a Builder that signs each payload entry with keys.
// legacyPaths mirrors the `-C` flag: when set, archive paths are recorded
// relative to the root passed to AddPath rather than verbatim.
func NewBuilder(keys *keystore.KeyStore, legacyPaths bool) *Builder {
	return &Builder{keys: keys, legacyPaths: legacyPaths}
}

// AddPath walks root (a file or a directory) and records every regular
// file it contains, in the walker's traversal order.
func (b *Builder) AddPath(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrapf(err, "archive: cannot stat %q", root)
	}
	if !info.IsDir() {
		return b.addFile(root, root, info)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, "archive: cannot stat %q", path)
		}
		return b.addFile(root, path, info)
	})
}

func (b *Builder) addFile(root, path string, info fs.FileInfo) error {
	archivePath := path
	if b.legacyPaths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "archive: cannot relativize %q against %q", path, root)
		}
		archivePath = rel
	}
	log.Debugf("adding payload file %q as %q", path, archivePath)
	b.entries = append(b.entries, entry{
		sourcePath:  path,
		archivePath: filepath.ToSlash(archivePath),
		size:        info.Size(),
		mode:        info.Mode(),
	})
	return nil
}

// indexLine is one parsed/rendered line of update-filelist.dat.
type indexLine struct {
	entryType int
	path      string
	size      int64
	md5Hex    string
	perm      uint32
}

func (l indexLine) String() string {
	return fmt.Sprintf("%d %s %d %s %o", l.entryType, l.path, l.size, l.md5Hex, l.perm)
}

func classify(path string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ffs", ".sh":
		return typeScript
	default:
		return typeData
	}
}

// Build writes the gzipped tar stream to w: every payload file and its
// ".sig" companion, in traversal order, followed by update-filelist.dat and
// update-filelist.dat.sig.
func (b *Builder) Build(w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	var lines []indexLine
	for _, e := range b.entries {
		data, err := os.ReadFile(e.sourcePath)
		if err != nil {
			return errors.Wrapf(err, "archive: cannot read %q", e.sourcePath)
		}
		if err := writeTarEntry(tw, e.archivePath, e.mode, data); err != nil {
			return err
		}

		sig, err := b.keys.Sign(data)
		if err != nil {
			return errors.Wrapf(err, "archive: cannot sign %q", e.sourcePath)
		}
		if err := writeTarEntry(tw, e.archivePath+".sig", e.mode, sig); err != nil {
			return err
		}

		sum := md5.Sum(data)
		lines = append(lines, indexLine{
			entryType: classify(e.archivePath),
			path:      e.archivePath,
			size:      e.size,
			md5Hex:    hex.EncodeToString(sum[:]),
			perm:      uint32(e.mode.Perm()),
		})
	}

	index := renderIndex(lines)
	if err := writeTarEntry(tw, indexName, 0o644, index); err != nil {
		return err
	}
	indexSig, err := b.keys.Sign(index)
	if err != nil {
		return errors.Wrap(err, "archive: cannot sign update-filelist.dat")
	}
	if err := writeTarEntry(tw, indexName+".sig", 0o644, indexSig); err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "archive: failed to finalize tar stream")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "archive: failed to finalize gzip stream")
	}
	return nil
}

func renderIndex(lines []indexLine) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(lines))
	for _, l := range lines {
		buf.WriteString(l.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeTarEntry(tw *tar.Writer, name string, mode fs.FileMode, data []byte) error {
	hdr := &tar.Header{
		Format: tar.FormatUSTAR,
		Name:   name,
		Size:   int64(len(data)),
		Mode:   int64(mode.Perm()),
		Uid:    0,
		Gid:    0,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "archive: cannot write tar header for %q", name)
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrapf(err, "archive: cannot write tar body for %q", name)
	}
	return nil
}
