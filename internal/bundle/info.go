package bundle

import "github.com/rclone/kindletool/internal/devcode"

// UpdateInformation describes the package to build: the chosen variant,
// its magic, the signing key path (empty means the built-in default), the
// revision range, the three recovery magic numbers, the device/platform/
// board selection, the header revision, the certificate number, the
// critical/optional flags, and any metastrings.
type UpdateInformation struct {
	Version Version
	Magic   string // exact 4-byte (or shorter, zero-padded) magic to write

	KeyPath string // empty selects the built-in default key

	SourceRevision uint64
	TargetRevision uint64

	Magic1       uint32
	Magic2       uint32
	MinorVersion uint32

	Devices  []uint16
	Platform devcode.Platform
	Board    devcode.Board

	HeaderRevision uint32

	CertificateNumber byte
	Critical          bool
	Optional          bool

	Metastrings []Metastring

	// Unsigned marks a test/debug package: Stage D writes the envelope
	// bytes raw instead of scrambling them, per spec.md Stage D.
	Unsigned bool
}

// Metastring is a KEY=VALUE annotation carried in OTA V2 headers. The
// u16 length prefix written to disk is len(Key)+1+len(Value) (the byte
// length of "KEY=VALUE", no embedded NUL).
type Metastring struct {
	Key   string
	Value string
}

// String renders the metastring in its on-disk textual form.
func (m Metastring) String() string {
	return m.Key + "=" + m.Value
}
