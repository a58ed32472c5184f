package header

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
)

// otaV2Header: magic + 32-byte MD5 hex + u64 source_rev + u64 target_rev +
// u16 num_devices + u16[num_devices] + u16 certificate_number + u8
// critical + u8 unused + u16 metastring_count + metastring_count x (u16
// length + bytes). No trailing padding.
type otaV2Header struct{}

func (otaV2Header) encode(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error) {
	if len(info.Devices) < 1 {
		return nil, errors.New("header: OTAUpdateV2 requires at least one device")
	}

	var buf []byte
	buf = append(buf, bundle.MagicFor(bundle.OTAUpdateV2, info.Magic)[:]...)
	buf = append(buf, bodyMD5Hex[:]...)

	var tmp [8]byte
	putUint64(tmp[:], info.SourceRevision)
	buf = append(buf, tmp[:8]...)
	putUint64(tmp[:], info.TargetRevision)
	buf = append(buf, tmp[:8]...)

	putUint16(tmp[:2], uint16(len(info.Devices)))
	buf = append(buf, tmp[:2]...)
	for _, d := range info.Devices {
		putUint16(tmp[:2], d)
		buf = append(buf, tmp[:2]...)
	}

	putUint16(tmp[:2], uint16(info.CertificateNumber))
	buf = append(buf, tmp[:2]...)

	critical := byte(0)
	if info.Critical {
		critical = 1
	}
	buf = append(buf, critical, 0) // critical, unused

	putUint16(tmp[:2], uint16(len(info.Metastrings)))
	buf = append(buf, tmp[:2]...)
	for _, m := range info.Metastrings {
		s := m.String()
		putUint16(tmp[:2], uint16(len(s)))
		buf = append(buf, tmp[:2]...)
		buf = append(buf, s...)
	}

	return buf, nil
}

func (otaV2Header) decode(r io.Reader, _ [MagicSize]byte) (Fields, int, error) {
	var f Fields
	consumed := 0

	if _, err := io.ReadFull(r, f.BodyMD5Hex[:]); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 MD5")
	}
	consumed += 32

	srcRev, err := readUint64(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 source_revision")
	}
	f.SourceRevision = srcRev
	consumed += 8

	tgtRev, err := readUint64(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 target_revision")
	}
	f.TargetRevision = tgtRev
	consumed += 8

	numDevices, err := readUint16(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 num_devices")
	}
	consumed += 2
	if numDevices < 1 {
		return Fields{}, 0, errors.New("header: OTAUpdateV2 requires at least one device")
	}
	f.Devices = make([]uint16, numDevices)
	for i := range f.Devices {
		d, err := readUint16(r)
		if err != nil {
			return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 device list")
		}
		f.Devices[i] = d
		consumed += 2
	}

	certNum, err := readUint16(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 certificate_number")
	}
	f.CertificateNumber = byte(certNum)
	consumed += 2

	var flags [2]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 critical/unused")
	}
	f.Critical = flags[0] != 0
	consumed += 2

	metaCount, err := readUint16(r)
	if err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 metastring_count")
	}
	consumed += 2

	f.Metastrings = make([]bundle.Metastring, 0, metaCount)
	for i := uint16(0); i < metaCount; i++ {
		length, err := readUint16(r)
		if err != nil {
			return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 metastring length")
		}
		consumed += 2
		raw := make([]byte, length)
		if _, err := io.ReadFull(r, raw); err != nil {
			return Fields{}, 0, errors.Wrap(err, "header: truncated OTAUpdateV2 metastring body")
		}
		consumed += int(length)
		key, value := splitMetastring(raw)
		f.Metastrings = append(f.Metastrings, bundle.Metastring{Key: key, Value: value})
	}

	return f, consumed, nil
}

// splitMetastring parses the on-disk "KEY=VALUE" form. The first '=' is the
// separator; a value may itself contain '=' characters.
func splitMetastring(raw []byte) (key, value string) {
	s := string(raw)
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
