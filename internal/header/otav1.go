package header

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
)

// otaV1BlockSize is the total OTAUpdateV1 header width, magic included.
// The fixed portion (source_rev + target_rev + device + optional + unused
// + 32-byte MD5 hex) is 44 bytes; the remaining 16 bytes are zero padding.
// (The source's OTA_UPDATE_BLOCK_SIZE constant pins the post-magic portion
// at 60 bytes, i.e. 64 total — the 18-byte padding figure elsewhere is a
// rounding slip; 64 bytes total is the binding invariant.)
const otaV1BlockSize = 64
const otaV1FixedSize = 4 + 4 + 2 + 1 + 1 + 32 // source+target+device+optional+unused+md5hex

type otaV1Header struct{}

func (otaV1Header) encode(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error) {
	if len(info.Devices) != 1 {
		return nil, errors.Errorf("header: OTAUpdateV1 requires exactly one device, got %d", len(info.Devices))
	}
	buf := make([]byte, otaV1BlockSize)
	copy(buf[:MagicSize], bundle.MagicFor(bundle.OTAUpdateV1, info.Magic)[:])
	off := MagicSize
	putUint32(buf[off:], uint32(info.SourceRevision))
	off += 4
	putUint32(buf[off:], uint32(info.TargetRevision))
	off += 4
	putUint16(buf[off:], info.Devices[0])
	off += 2
	if info.Optional {
		buf[off] = 1
	}
	off++
	off++ // unused
	copy(buf[off:off+32], bodyMD5Hex[:])
	// remaining bytes to otaV1BlockSize are zero padding.
	return buf, nil
}

func (otaV1Header) decode(r io.Reader, _ [MagicSize]byte) (Fields, int, error) {
	rest := make([]byte, otaV1BlockSize-MagicSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV1 header")
	}
	var f Fields
	off := 0
	f.SourceRevision = uint64(readLE32(rest[off:]))
	off += 4
	f.TargetRevision = uint64(readLE32(rest[off:]))
	off += 4
	f.Device = readLE16(rest[off:])
	off += 2
	f.Optional = rest[off] != 0
	off++
	off++ // unused
	copy(f.BodyMD5Hex[:], rest[off:off+32])
	return f, len(rest), nil
}

func readLE16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func readLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
