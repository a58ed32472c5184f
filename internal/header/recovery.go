package header

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/devcode"
)

// recoveryBlockSize is the total RecoveryUpdate header width, magic
// included: a fixed 131072-byte block regardless of which of the two
// sub-layouts is in use.
const recoveryBlockSize = 131072

// recoveryPrefixSize is the common prefix shared by both sub-layouts:
// 12 unused bytes + 32-byte MD5 hex + magic_1 + magic_2 + minor.
const recoveryPrefixSize = 12 + 32 + 4 + 4 + 4

type recoveryHeader struct{}

func (recoveryHeader) encode(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error) {
	if len(info.Devices) != 1 {
		return nil, errors.Errorf("header: RecoveryUpdate requires exactly one device, got %d", len(info.Devices))
	}
	buf := make([]byte, recoveryBlockSize)
	copy(buf[:MagicSize], bundle.MagicFor(bundle.RecoveryUpdate, info.Magic)[:])
	off := MagicSize + 12 // unused
	copy(buf[off:off+32], bodyMD5Hex[:])
	off += 32
	putUint32(buf[off:], info.Magic1)
	off += 4
	putUint32(buf[off:], info.Magic2)
	off += 4
	putUint32(buf[off:], info.MinorVersion)
	off += 4

	if info.HeaderRevision >= 2 {
		putUint32(buf[off:], uint32(info.Platform))
		off += 4
		putUint32(buf[off:], info.HeaderRevision)
		off += 4
		putUint32(buf[off:], uint32(info.Board))
	} else {
		putUint32(buf[off:], uint32(info.Devices[0]))
	}
	// remainder of the 131072-byte block is zero padding.
	return buf, nil
}

func (recoveryHeader) decode(r io.Reader, _ [MagicSize]byte) (Fields, int, error) {
	body := make([]byte, recoveryBlockSize-MagicSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdate header")
	}

	var f Fields
	off := 12 // unused
	copy(f.BodyMD5Hex[:], body[off:off+32])
	off += 32
	f.Magic1 = readLE32(body[off:])
	off += 4
	f.Magic2 = readLE32(body[off:])
	off += 4
	f.Minor = readLE32(body[off:])
	off += 4

	word1 := readLE32(body[off:])
	word2 := readLE32(body[off+4:])

	// header_rev sits at the same fixed offset the rev>=2 layout commits
	// it to; the legacy layout leaves that slot as zero padding, so a
	// value >= 2 there unambiguously selects the rev>=2 interpretation.
	if word2 >= 2 {
		f.Platform = devcode.Platform(word1)
		f.HeaderRevision = word2
		f.Board = devcode.Board(readLE32(body[off+8:]))
	} else {
		f.Device = uint16(word1)
		f.HeaderRevision = 1
	}

	return f, len(body), nil
}
