package packager

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/header"
	"github.com/rclone/kindletool/internal/keystore"
	"github.com/rclone/kindletool/internal/scramble"
)

func TestBuildOTAUpdateV1IsScrambled(t *testing.T) {
	keys, err := keystore.Default()
	require.NoError(t, err)

	body := []byte("a gzipped tar archive, in spirit")
	info := bundle.UpdateInformation{
		Version: bundle.OTAUpdateV1,
		Magic:   "FD03",
		Devices: []uint16{0x05},
	}

	var out bytes.Buffer
	require.NoError(t, Build(&out, body, info, keys))

	var unscrambled bytes.Buffer
	require.NoError(t, scramble.Unscramble(bytes.NewReader(out.Bytes()), &unscrambled, 0, false))

	v, fields, n, err := header.ReadHeader(bytes.NewReader(unscrambled.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle.OTAUpdateV1, v)
	assert.Equal(t, body, unscrambled.Bytes()[n:])

	wantMD5 := md5HexOf(body)
	assert.Equal(t, wantMD5, fields.BodyMD5Hex)
}

func TestBuildOTAUpdateV2WrapsSignatureEnvelope(t *testing.T) {
	keys, err := keystore.Default()
	require.NoError(t, err)

	body := []byte("ota v2 body bytes")
	info := bundle.UpdateInformation{
		Version: bundle.OTAUpdateV2,
		Magic:   "FL01",
		Devices: []uint16{0x01},
	}

	var out bytes.Buffer
	require.NoError(t, Build(&out, body, info, keys))

	var unscrambled bytes.Buffer
	require.NoError(t, scramble.Unscramble(bytes.NewReader(out.Bytes()), &unscrambled, 0, false))

	v, fields, n, err := header.ReadHeader(bytes.NewReader(unscrambled.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle.UpdateSignature, v)
	assert.Equal(t, byte(0), fields.CertificateNumber)

	rest := unscrambled.Bytes()[n:]
	require.True(t, len(rest) >= signatureFieldSize)
	sig := rest[:signatureFieldSize]
	inner := rest[signatureFieldSize:]

	require.NoError(t, keystore.Verify(keys.PublicKey(), inner, bytes.TrimLeft(sig, "\x00")))

	innerVersion, innerFields, innerN, err := header.ReadHeader(bytes.NewReader(inner))
	require.NoError(t, err)
	assert.Equal(t, bundle.OTAUpdateV2, innerVersion)
	assert.Equal(t, body, inner[innerN:])
	assert.Equal(t, md5HexOf(body), innerFields.BodyMD5Hex)
}

func TestBuildUserDataPackagePassesThroughUnscrambled(t *testing.T) {
	keys, err := keystore.Default()
	require.NoError(t, err)

	raw := []byte{0x1F, 0x8B, 0x08, 0x00, 'h', 'i'}
	info := bundle.UpdateInformation{Version: bundle.UserDataPackage}

	var out bytes.Buffer
	require.NoError(t, Build(&out, raw, info, keys))

	v, _, n, err := header.ReadHeader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle.UpdateSignature, v)

	rest := out.Bytes()[n:]
	sig := rest[:signatureFieldSize]
	inner := rest[signatureFieldSize:]
	assert.Equal(t, raw, inner)
	require.NoError(t, keystore.Verify(keys.PublicKey(), inner, bytes.TrimLeft(sig, "\x00")))
}

func TestBuildUnsignedSkipsScramble(t *testing.T) {
	keys, err := keystore.Default()
	require.NoError(t, err)

	body := []byte("debug body")
	info := bundle.UpdateInformation{
		Version:  bundle.OTAUpdateV1,
		Magic:    "FD03",
		Devices:  []uint16{0x01},
		Unsigned: true,
	}

	var out bytes.Buffer
	require.NoError(t, Build(&out, body, info, keys))

	v, _, n, err := header.ReadHeader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle.OTAUpdateV1, v)
	assert.Equal(t, body, out.Bytes()[n:])
}

func md5HexOf(body []byte) [32]byte {
	sum := md5.Sum(body)
	var out [32]byte
	copy(out[:], hex.EncodeToString(sum[:]))
	return out
}
