package scramble

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesAreInverse(t *testing.T) {
	seen := make(map[byte]bool, 256)
	for i := 0; i < 256; i++ {
		seen[P[i]] = true
		assert.Equal(t, byte(i), G[P[byte(i)]], "G[P[%d]] should be %d", i, i)
	}
	assert.Len(t, seen, 256, "P must be a permutation of 0..255")
}

func TestScrambleSingleByte(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Scramble(bytes.NewReader([]byte{0x00}), &out, 0, false))
	assert.Equal(t, []byte{P[0x00]}, out.Bytes())

	var roundTrip bytes.Buffer
	require.NoError(t, Unscramble(bytes.NewReader(out.Bytes()), &roundTrip, 0, false))
	assert.Equal(t, []byte{0x00}, roundTrip.Bytes())
}

func TestScrambleRoundTrip(t *testing.T) {
	src := make([]byte, 5000)
	for i := range src {
		src[i] = byte(i * 7)
	}

	var scrambled bytes.Buffer
	require.NoError(t, Scramble(bytes.NewReader(src), &scrambled, 0, false))
	assert.NotEqual(t, src, scrambled.Bytes())

	var recovered bytes.Buffer
	require.NoError(t, Unscramble(bytes.NewReader(scrambled.Bytes()), &recovered, 0, false))
	assert.Equal(t, src, recovered.Bytes())
}

func TestScrambleEmptyIsNoOp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Scramble(bytes.NewReader(nil), &out, 0, false))
	assert.Empty(t, out.Bytes())
}

func TestScrambleSkipPassesThrough(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03}
	var out bytes.Buffer
	require.NoError(t, Scramble(bytes.NewReader(src), &out, 0, true))
	assert.Equal(t, src, out.Bytes())
}

func TestScrambleRespectsLength(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03, 0x04}
	var out bytes.Buffer
	require.NoError(t, Scramble(bytes.NewReader(src), &out, 2, false))
	assert.Equal(t, []byte{P[0x01], P[0x02]}, out.Bytes())
}
