package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rclone/kindletool/internal/bundle"
)

func TestBundleVersionForType(t *testing.T) {
	cases := map[string]bundle.Version{
		"ota":       bundle.OTAUpdateV1,
		"ota2":      bundle.OTAUpdateV2,
		"recovery":  bundle.RecoveryUpdate,
		"recovery2": bundle.RecoveryUpdateV2,
		"sig":       bundle.UpdateSignature,
	}
	for name, want := range cases {
		got, err := bundleVersionForType(name)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := bundleVersionForType("bogus")
	assert.Error(t, err)
}

func TestSplitMeta(t *testing.T) {
	key, value, ok := splitMeta("cert=1")
	assert.True(t, ok)
	assert.Equal(t, "cert", key)
	assert.Equal(t, "1", value)

	_, _, ok = splitMeta("no-equals-sign")
	assert.False(t, ok)
}
