package header

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rclone/kindletool/internal/bundle"
)

// signatureBlockSize is the total UpdateSignature header width, magic
// included (4-byte magic + 1-byte certificate number + 59 bytes reserved).
const signatureBlockSize = 64

type signatureHeader struct{}

func (signatureHeader) encode(info bundle.UpdateInformation, _ [32]byte) ([]byte, error) {
	buf := make([]byte, signatureBlockSize)
	copy(buf[:MagicSize], bundle.MagicFor(bundle.UpdateSignature, info.Magic)[:])
	buf[MagicSize] = info.CertificateNumber
	// remaining 59 bytes are reserved and left zero.
	return buf, nil
}

func (signatureHeader) decode(r io.Reader, _ [MagicSize]byte) (Fields, int, error) {
	rest := make([]byte, signatureBlockSize-MagicSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Fields{}, 0, errors.Wrap(err, "header: truncated UpdateSignature header")
	}
	return Fields{CertificateNumber: rest[0]}, len(rest), nil
}
