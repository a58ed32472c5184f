package header

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/devcode"
)

func md5Hex(b byte) [32]byte {
	var h [32]byte
	for i := range h {
		h[i] = b
	}
	return h
}

func TestWriteReadUpdateSignature(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:           bundle.UpdateSignature,
		Magic:             "SP01",
		CertificateNumber: 3,
	}
	raw, err := WriteHeader(info, md5Hex('0'))
	require.NoError(t, err)
	assert.Len(t, raw, signatureBlockSize)

	v, fields, n, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.UpdateSignature, v)
	assert.Equal(t, byte(3), fields.CertificateNumber)
	assert.Equal(t, signatureBlockSize, n)
}

func TestWriteReadOTAUpdateV1RoundTrip(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:        bundle.OTAUpdateV1,
		Magic:          "FD03",
		SourceRevision: 100,
		TargetRevision: 200,
		Devices:        []uint16{0x05},
		Optional:       true,
	}
	raw, err := WriteHeader(info, md5Hex('a'))
	require.NoError(t, err)
	assert.Len(t, raw, otaV1BlockSize)

	v, fields, n, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.OTAUpdateV1, v)
	assert.Equal(t, uint64(100), fields.SourceRevision)
	assert.Equal(t, uint64(200), fields.TargetRevision)
	assert.Equal(t, uint16(0x05), fields.Device)
	assert.True(t, fields.Optional)
	assert.Equal(t, md5Hex('a'), fields.BodyMD5Hex)
	assert.Equal(t, otaV1BlockSize, n)
}

func TestOTAUpdateV1RequiresExactlyOneDevice(t *testing.T) {
	info := bundle.UpdateInformation{Version: bundle.OTAUpdateV1, Magic: "FD03", Devices: []uint16{1, 2}}
	_, err := WriteHeader(info, md5Hex('0'))
	assert.Error(t, err)
}

func TestWriteReadOTAUpdateV2RoundTrip(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:           bundle.OTAUpdateV2,
		Magic:             "FL01",
		SourceRevision:    1,
		TargetRevision:    2,
		Devices:           []uint16{0x01, 0x02, 0x03},
		CertificateNumber: 1,
		Critical:          true,
		Metastrings: []bundle.Metastring{
			{Key: "cert", Value: "1"},
			{Key: "note", Value: "a=b"},
		},
	}
	raw, err := WriteHeader(info, md5Hex('f'))
	require.NoError(t, err)

	v, fields, n, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.OTAUpdateV2, v)
	assert.Equal(t, n, len(raw))
	assert.Equal(t, []uint16{0x01, 0x02, 0x03}, fields.Devices)
	assert.True(t, fields.Critical)
	require.Len(t, fields.Metastrings, 2)
	assert.Equal(t, "cert", fields.Metastrings[0].Key)
	assert.Equal(t, "1", fields.Metastrings[0].Value)
	assert.Equal(t, "note", fields.Metastrings[1].Key)
	assert.Equal(t, "a=b", fields.Metastrings[1].Value)

	// re-encoding the decoded fields must reproduce the exact bytes.
	again, err := WriteHeader(bundle.UpdateInformation{
		Version:           bundle.OTAUpdateV2,
		Magic:             "FL01",
		SourceRevision:    fields.SourceRevision,
		TargetRevision:    fields.TargetRevision,
		Devices:           fields.Devices,
		CertificateNumber: fields.CertificateNumber,
		Critical:          fields.Critical,
		Metastrings:       fields.Metastrings,
	}, fields.BodyMD5Hex)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestOTAUpdateV2RequiresAtLeastOneDevice(t *testing.T) {
	info := bundle.UpdateInformation{Version: bundle.OTAUpdateV2, Magic: "FL01"}
	_, err := WriteHeader(info, md5Hex('0'))
	assert.Error(t, err)
}

func TestOTAUpdateV2ZeroLengthMetastring(t *testing.T) {
	info := bundle.UpdateInformation{
		Version: bundle.OTAUpdateV2,
		Magic:   "FL01",
		Devices: []uint16{1},
		Metastrings: []bundle.Metastring{
			{Key: "", Value: ""},
		},
	}
	raw, err := WriteHeader(info, md5Hex('0'))
	require.NoError(t, err)
	_, fields, _, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, fields.Metastrings, 1)
	assert.Equal(t, "", fields.Metastrings[0].Key)
	assert.Equal(t, "", fields.Metastrings[0].Value)
}

func TestWriteReadRecoveryUpdateLegacyLayout(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:        bundle.RecoveryUpdate,
		Magic:          "FB01",
		Magic1:         111,
		Magic2:         222,
		MinorVersion:   1,
		Devices:        []uint16{0x09},
		HeaderRevision: 1,
	}
	raw, err := WriteHeader(info, md5Hex('c'))
	require.NoError(t, err)
	assert.Len(t, raw, recoveryBlockSize)

	v, fields, n, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.RecoveryUpdate, v)
	assert.Equal(t, uint32(111), fields.Magic1)
	assert.Equal(t, uint32(222), fields.Magic2)
	assert.Equal(t, uint16(0x09), fields.Device)
	assert.Equal(t, uint32(1), fields.HeaderRevision)
	assert.Equal(t, recoveryBlockSize, n)
}

func TestWriteReadRecoveryUpdateH2Layout(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:        bundle.RecoveryUpdate,
		Magic:          "FB02",
		Magic1:         1,
		Magic2:         2,
		MinorVersion:   3,
		Devices:        []uint16{0x01},
		Platform:       devcode.Platform(7),
		Board:          devcode.Board(9),
		HeaderRevision: 2,
	}
	raw, err := WriteHeader(info, md5Hex('d'))
	require.NoError(t, err)

	v, fields, _, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.RecoveryUpdate, v)
	assert.Equal(t, devcode.Platform(7), fields.Platform)
	assert.Equal(t, devcode.Board(9), fields.Board)
	assert.Equal(t, uint32(2), fields.HeaderRevision)
}

func TestWriteReadRecoveryUpdateV2RoundTrip(t *testing.T) {
	info := bundle.UpdateInformation{
		Version:        bundle.RecoveryUpdateV2,
		Magic:          "FB03",
		HeaderRevision: 3,
		Magic1:         10,
		Magic2:         20,
		MinorVersion:   30,
		TargetRevision: 40,
		Devices:        []uint16{0x01, 0x02},
		Platform:       devcode.Platform(5),
		Board:          devcode.Board(6),
	}
	raw, err := WriteHeader(info, md5Hex('e'))
	require.NoError(t, err)

	v, fields, n, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, bundle.RecoveryUpdateV2, v)
	assert.Equal(t, n, len(raw))
	assert.Equal(t, uint32(3), fields.HeaderRevision)
	assert.Equal(t, []uint16{0x01, 0x02}, fields.Devices)
	assert.Equal(t, devcode.Platform(5), fields.Platform)
	assert.Equal(t, devcode.Board(6), fields.Board)
	assert.Equal(t, md5Hex('e'), fields.BodyMD5Hex)
}

func TestReadHeaderUnknownMagicConsumesOnlyMagic(t *testing.T) {
	v, fields, n, err := ReadHeader(bytes.NewReader([]byte("XXXXrest")))
	require.NoError(t, err)
	assert.Equal(t, bundle.Unknown, v)
	assert.Equal(t, MagicSize, n)
	assert.Equal(t, [4]byte{'X', 'X', 'X', 'X'}, fields.Magic)
}

func TestReadHeaderGzipMagicIsUserDataPackage(t *testing.T) {
	v, _, n, err := ReadHeader(bytes.NewReader([]byte{0x1F, 0x8B, 0x08, 0x00, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, bundle.UserDataPackage, v)
	assert.Equal(t, MagicSize, n)
}
