// Package unpackager drives the symmetric inverse of internal/packager:
// magic sniff, unscramble, header dispatch, signature-envelope unwrap, MD5
// verification, and the info/convert/extract output modes.
package unpackager

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"

	"github.com/rclone/kindletool/internal/archive"
	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/header"
	"github.com/rclone/kindletool/internal/klog"
	"github.com/rclone/kindletool/internal/scramble"
)

var log = klog.For("unpackager")

// signatureFieldSize mirrors packager.signatureFieldSize; the SP01
// envelope always reserves 128 bytes for the signature.
const signatureFieldSize = 128

// Result is what a single decode pass recovers: the bundle's tag, its
// decoded header fields, and the plain body ready for convert/extract.
type Result struct {
	Version Version
	Fields  header.Fields
	Body    []byte

	// Signature holds the SP01 envelope's raw (still zero-padded) signature
	// bytes, populated only when the input carried one and the caller asked
	// for it via Options.ExtractSignature.
	Signature []byte
}

// Version is an alias kept local so callers of this package don't need to
// additionally import internal/bundle for the common case.
type Version = bundle.Version

// Options configures a Decode call.
type Options struct {
	// Unsigned skips the unscramble pass, mirroring Stage D's `unsigned`
	// bypass on the write side.
	Unsigned bool
	// ExtractSignature requests that an SP01 envelope's signature bytes be
	// captured into Result.Signature instead of merely being skipped.
	ExtractSignature bool
}

// Decode reads a complete bundle from r and recovers its body. A
// UserDataPackage is recognized by its gzip magic and passed through with
// no header, no MD5 check, and no unscramble.
func Decode(r io.Reader, opts Options) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "unpackager: failed to read input")
	}

	if bundle.FromMagic(peekMagic(raw)) == bundle.UserDataPackage {
		log.Debugf("input is a raw gzip UserDataPackage, passing through")
		return Result{Version: bundle.UserDataPackage, Body: raw}, nil
	}

	if !opts.Unsigned {
		var unscrambled bytes.Buffer
		if err := scramble.Unscramble(bytes.NewReader(raw), &unscrambled, 0, false); err != nil {
			return Result{}, errors.Wrap(err, "unpackager: unscramble failed")
		}
		raw = unscrambled.Bytes()
	}

	return decodeEnvelope(raw, opts)
}

func decodeEnvelope(raw []byte, opts Options) (Result, error) {
	v, fields, n, err := header.ReadHeader(bytes.NewReader(raw))
	if err != nil {
		return Result{}, errors.Wrap(err, "unpackager: failed to read header")
	}
	if v == bundle.Unknown {
		return Result{}, errors.Errorf("unpackager: unrecognized magic %q", fields.Magic[:])
	}

	rest := raw[n:]

	if v == bundle.UpdateSignature {
		if len(rest) < signatureFieldSize {
			return Result{}, errors.New("unpackager: truncated signature envelope")
		}
		result, err := decodeEnvelope(rest[signatureFieldSize:], opts)
		if err != nil {
			return Result{}, err
		}
		// The SP01 envelope's own header only ever carries a certificate
		// number; the inner header's devices/revisions/MD5 are what `info`
		// and friends actually want, so only fold that one field in.
		result.Fields.CertificateNumber = fields.CertificateNumber
		if opts.ExtractSignature {
			sig := make([]byte, signatureFieldSize)
			copy(sig, rest[:signatureFieldSize])
			result.Signature = sig
		}
		return result, nil
	}

	sum := md5.Sum(rest)
	gotHex := hex.EncodeToString(sum[:])
	wantHex := string(fields.BodyMD5Hex[:])
	if gotHex != wantHex {
		return Result{}, errors.Errorf("unpackager: body MD5 mismatch: header says %s, body is %s", wantHex, gotHex)
	}

	return Result{Version: v, Fields: fields, Body: rest}, nil
}

func peekMagic(raw []byte) [header.MagicSize]byte {
	var magic [header.MagicSize]byte
	copy(magic[:], raw)
	return magic
}

// Extract decodes r and feeds the recovered body into the archive library,
// writing a directory tree at destDir.
func Extract(r io.Reader, destDir string, opts Options) (Result, error) {
	result, err := Decode(r, opts)
	if err != nil {
		return Result{}, err
	}
	if err := archive.Extract(bytes.NewReader(result.Body), destDir); err != nil {
		return Result{}, errors.Wrap(err, "unpackager: extract failed")
	}
	return result, nil
}
