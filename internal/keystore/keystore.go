// Package keystore provides the RSA private key used to sign firmware
// bundles, either the built-in default or one loaded from a PEM file, and
// the raw RSA-SHA256 signing primitive built on top of it.
package keystore

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
)

// KeyStore yields a private key and signs messages with it.
type KeyStore struct {
	key *rsa.PrivateKey
}

// Sign computes the RSA-PKCS1-v1.5 signature of message over its SHA-256
// digest, left-padded with zero bytes to the modulus size. The envelope
// always reserves a fixed signature width (128 bytes for the default key);
// emitting at the full modulus size with no truncation preserves binary
// compatibility for differently-sized user keys.
func (k *KeyStore) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, k.key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, "keystore: sign failed")
	}
	return sig, nil
}

// SignatureSize is the byte width of signatures produced by this key, i.e.
// the RSA modulus size. Callers reserving envelope space (UpdateSignature's
// 128-byte signature field) should warn when this differs from the
// reserved width, per the spec's open question on non-default key sizes.
func (k *KeyStore) SignatureSize() int {
	return (k.key.N.BitLen() + 7) / 8
}

// PublicKey returns the key's public half, for verification paths.
func (k *KeyStore) PublicKey() *rsa.PublicKey {
	return &k.key.PublicKey
}

// Verify checks an RSA-PKCS1-v1.5 signature produced by Sign.
func Verify(pub *rsa.PublicKey, message, sig []byte) error {
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return errors.Wrap(err, "keystore: signature verification failed")
	}
	return nil
}

// Default returns the built-in 1024-bit signing key. Its bits are the
// well-known publicly available development/"jailbreak" signing key,
// included verbatim as an opaque PEM blob.
func Default() (*KeyStore, error) {
	return fromPEM([]byte(defaultKeyPEM))
}

// LoadPEM parses an RFC-7468 PKCS#1 RSA private key file ("-----BEGIN RSA
// PRIVATE KEY-----" ... "-----END RSA PRIVATE KEY-----") from path.
func LoadPEM(path string) (*KeyStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "keystore: cannot read key file %q", path)
	}
	return fromPEM(data)
}

func fromPEM(data []byte) (*KeyStore, error) {
	block, rest := pem.Decode(data)
	if block == nil {
		return nil, errors.New("keystore: no PEM block found in key data")
	}
	if len(rest) > 0 {
		// Trailing data after the first PEM block is tolerated; only the
		// first block is used, matching common single-key PEM files.
		_ = rest
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: failed to parse PKCS#1 private key")
	}
	return &KeyStore{key: key}, nil
}
