// Package packager drives Stages B-D of bundle creation: envelope header
// write plus MD5 patch, optional SP01 signature-envelope wrap, and the
// final scramble pass. Stage A (the payload archive) lives in
// internal/archive and is built before Build is called.
package packager

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"

	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/header"
	"github.com/rclone/kindletool/internal/keystore"
	"github.com/rclone/kindletool/internal/klog"
	"github.com/rclone/kindletool/internal/scramble"
)

var log = klog.For("packager")

// signatureFieldSize is the width the SP01 envelope always reserves for
// the signature, regardless of the signing key's actual modulus size.
const signatureFieldSize = 128

// Build assembles the final bundle bytes for info, writing them to w. body
// is the Stage-A archive: a gzipped tar for OTA/Recovery variants, or the
// raw gzip stream for a UserDataPackage.
func Build(w io.Writer, body []byte, info bundle.UpdateInformation, keys *keystore.KeyStore) error {
	envelope := body
	var err error

	if info.Version != bundle.UserDataPackage {
		envelope, err = stageB(body, info)
		if err != nil {
			return err
		}
		log.Debugf("stage B wrote %d-byte %s envelope over %d-byte body", len(envelope), info.Version, len(body))
	}

	if info.Version == bundle.OTAUpdateV2 || info.Version == bundle.UserDataPackage {
		envelope, err = stageC(envelope, keys, info)
		if err != nil {
			return err
		}
		log.Debugf("stage C wrapped in %d-byte signature envelope", len(envelope))
	}

	if info.Version == bundle.UserDataPackage || info.Unsigned {
		log.Debugf("stage D: writing %d bytes unscrambled (user-data or unsigned)", len(envelope))
		if _, err := w.Write(envelope); err != nil {
			return errors.Wrap(err, "packager: failed to write unscrambled output")
		}
		return nil
	}

	log.Debugf("stage D: scrambling %d bytes", len(envelope))
	if err := scramble.Scramble(bytes.NewReader(envelope), w, int64(len(envelope)), false); err != nil {
		return errors.Wrap(err, "packager: scramble failed")
	}
	return nil
}

// stageB writes the variant's fixed header over body, with the header's
// MD5 field patched to the lowercase-hex digest of body.
func stageB(body []byte, info bundle.UpdateInformation) ([]byte, error) {
	sum := md5.Sum(body)
	var md5Hex [32]byte
	copy(md5Hex[:], hex.EncodeToString(sum[:]))

	hdr, err := header.WriteHeader(info, md5Hex)
	if err != nil {
		return nil, errors.Wrap(err, "packager: stage B header write failed")
	}
	out := make([]byte, 0, len(hdr)+len(body))
	out = append(out, hdr...)
	out = append(out, body...)
	return out, nil
}

// stageC wraps body in an UpdateSignature (SP01) envelope: the 64-byte
// signature header, then the signature of body left-padded to the
// reserved 128-byte field, then body itself.
func stageC(body []byte, keys *keystore.KeyStore, info bundle.UpdateInformation) ([]byte, error) {
	sig, err := keys.Sign(body)
	if err != nil {
		return nil, errors.Wrap(err, "packager: stage C signing failed")
	}
	if len(sig) > signatureFieldSize {
		return nil, errors.Errorf("packager: signature of %d bytes exceeds reserved %d-byte field", len(sig), signatureFieldSize)
	}
	padded := make([]byte, signatureFieldSize)
	copy(padded[signatureFieldSize-len(sig):], sig)

	sigInfo := bundle.UpdateInformation{
		Version:           bundle.UpdateSignature,
		Magic:             "SP01",
		CertificateNumber: info.CertificateNumber,
	}
	hdr, err := header.WriteHeader(sigInfo, [32]byte{})
	if err != nil {
		return nil, errors.Wrap(err, "packager: stage C envelope header write failed")
	}

	out := make([]byte, 0, len(hdr)+len(padded)+len(body))
	out = append(out, hdr...)
	out = append(out, padded...)
	out = append(out, body...)
	return out, nil
}
