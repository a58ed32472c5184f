package header

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/devcode"
)

// recoveryV2Header: magic + u32 header_rev + u8 unused + u32 magic_1 +
// u32 magic_2 + u32 minor + u64 target_revision + u32 num_devices + u32
// platform + u32 board + u16[num_devices] + 32-byte MD5 hex. No trailing
// padding: unlike RecoveryUpdate, the V2 block is sized to its contents.
type recoveryV2Header struct{}

func (recoveryV2Header) encode(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error) {
	if len(info.Devices) < 1 {
		return nil, errors.New("header: RecoveryUpdateV2 requires at least one device")
	}

	var buf []byte
	buf = append(buf, bundle.MagicFor(bundle.RecoveryUpdateV2, info.Magic)[:]...)

	var tmp [8]byte
	putUint32(tmp[:4], info.HeaderRevision)
	buf = append(buf, tmp[:4]...)
	buf = append(buf, 0) // unused
	putUint32(tmp[:4], info.Magic1)
	buf = append(buf, tmp[:4]...)
	putUint32(tmp[:4], info.Magic2)
	buf = append(buf, tmp[:4]...)
	putUint32(tmp[:4], info.MinorVersion)
	buf = append(buf, tmp[:4]...)
	putUint64(tmp[:8], info.TargetRevision)
	buf = append(buf, tmp[:8]...)
	putUint32(tmp[:4], uint32(len(info.Devices)))
	buf = append(buf, tmp[:4]...)
	putUint32(tmp[:4], uint32(info.Platform))
	buf = append(buf, tmp[:4]...)
	putUint32(tmp[:4], uint32(info.Board))
	buf = append(buf, tmp[:4]...)

	for _, d := range info.Devices {
		putUint16(tmp[:2], d)
		buf = append(buf, tmp[:2]...)
	}

	buf = append(buf, bodyMD5Hex[:]...)
	return buf, nil
}

func (recoveryV2Header) decode(r io.Reader, _ [MagicSize]byte) (Fields, int, error) {
	var f Fields
	consumed := 0

	headerRev, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 header_rev")
	}
	f.HeaderRevision = headerRev
	consumed += 4

	var unused [1]byte
	if _, err := io.ReadFull(r, unused[:]); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 unused byte")
	}
	consumed++

	magic1, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 magic_1")
	}
	f.Magic1 = magic1
	consumed += 4

	magic2, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 magic_2")
	}
	f.Magic2 = magic2
	consumed += 4

	minor, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 minor")
	}
	f.Minor = minor
	consumed += 4

	targetRev, err := readUint64(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 target_revision")
	}
	f.TargetRevision = targetRev
	consumed += 8

	numDevices, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 num_devices")
	}
	consumed += 4
	if numDevices < 1 {
		return Fields{}, 0, errors.New("header: RecoveryUpdateV2 requires at least one device")
	}

	platform, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 platform")
	}
	f.Platform = devcode.Platform(platform)
	consumed += 4

	board, err := readUint32(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 board")
	}
	f.Board = devcode.Board(board)
	consumed += 4

	f.Devices = make([]uint16, numDevices)
	for i := range f.Devices {
		d, err := readUint16(r)
		if err != nil {
			return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 device list")
		}
		f.Devices[i] = d
		consumed += 2
	}

	if _, err := io.ReadFull(r, f.BodyMD5Hex[:]); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated RecoveryUpdateV2 MD5")
	}
	consumed += 32

	return f, consumed, nil
}
