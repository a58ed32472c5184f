// Package header encodes and decodes the fixed-layout headers that precede
// every bundle body: UpdateSignature, OTAUpdateV1/V2, and
// RecoveryUpdate/V2. Each variant is a distinct Go type implementing the
// common codec interface below; HeaderCodec dispatches on the bundle
// version tag rather than punning one oversized struct across variants.
package header

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/devcode"
)

// MagicSize is the width of the leading tag every bundle starts with.
const MagicSize = 4

// Fields holds every value a decoded header can carry, regardless of
// variant; ReadHeader only populates the fields relevant to the variant it
// decoded.
type Fields struct {
	Magic             [MagicSize]byte
	CertificateNumber byte

	SourceRevision uint64
	TargetRevision uint64

	Device  uint16   // single-device variants (V1, RecoveryUpdate)
	Devices []uint16 // multi-device variants (V2 forms)

	Optional bool
	Critical bool

	BodyMD5Hex [32]byte // lowercase ASCII hex, as stored on disk

	Magic1, Magic2, Minor uint32
	Platform              devcode.Platform
	Board                 devcode.Board
	HeaderRevision        uint32

	Metastrings []bundle.Metastring
}

// header is implemented by each concrete on-disk variant.
type header interface {
	encode(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error)
	decode(r io.Reader, magic [MagicSize]byte) (Fields, int, error)
}

func codecFor(v bundle.Version) header {
	switch v {
	case bundle.UpdateSignature:
		return signatureHeader{}
	case bundle.OTAUpdateV1:
		return otaV1Header{}
	case bundle.OTAUpdateV2:
		return otaV2Header{}
	case bundle.RecoveryUpdate:
		return recoveryHeader{}
	case bundle.RecoveryUpdateV2:
		return recoveryV2Header{}
	default:
		return nil
	}
}

// ReadHeader reads the 4-byte magic from r, dispatches on its variant, and
// decodes the remainder of that variant's header. An unrecognized magic
// yields bundle.Unknown with no further bytes consumed.
func ReadHeader(r io.Reader) (bundle.Version, Fields, int, error) {
	var magic [MagicSize]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return bundle.Unknown, Fields{}, 0, errors.Wrap(err, "header: cannot read magic")
	}
	v := bundle.FromMagic(magic)
	if v == bundle.Unknown || v == bundle.UserDataPackage {
		return v, Fields{Magic: magic}, MagicSize, nil
	}
	codec := codecFor(v)
	fields, consumed, err := codec.decode(r, magic)
	if err != nil {
		return v, Fields{}, 0, err
	}
	fields.Magic = magic
	return v, fields, MagicSize + consumed, nil
}

// WriteHeader serializes info's variant according to its on-disk layout,
// embedding bodyMD5Hex (32 lowercase hex bytes) where the variant requires.
func WriteHeader(info bundle.UpdateInformation, bodyMD5Hex [32]byte) ([]byte, error) {
	codec := codecFor(info.Version)
	if codec == nil {
		return nil, errors.Errorf("header: unsupported variant %s", info.Version)
	}
	return codec.encode(info, bodyMD5Hex)
}

func putUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
