package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSignAndVerify(t *testing.T) {
	ks, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 128, ks.SignatureSize())

	msg := []byte("hello firmware")
	sig, err := ks.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, 128)

	require.NoError(t, Verify(ks.PublicKey(), msg, sig))
	assert.Error(t, Verify(ks.PublicKey(), []byte("tampered"), sig))
}

func TestLoadPEM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(path, []byte(defaultKeyPEM), 0o600))

	ks, err := LoadPEM(path)
	require.NoError(t, err)
	assert.Equal(t, 128, ks.SignatureSize())
}

func TestLoadPEMMissingFile(t *testing.T) {
	_, err := LoadPEM("/nonexistent/path/key.pem")
	assert.Error(t, err)
}
