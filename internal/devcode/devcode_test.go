package devcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSingleDevice(t *testing.T) {
	codes, err := Resolve("pw3", false)
	require.NoError(t, err)
	assert.Equal(t, []Code{CodePaperWhite3Wifi}, codes)
}

func TestResolvePaperwhite2Alias(t *testing.T) {
	codes, err := Resolve("paperwhite2", false)
	require.NoError(t, err)
	assert.Len(t, codes, 11)
	assert.Contains(t, codes, CodePaperWhite2Wifi)
}

func TestResolveKindle5TransitivelyExpands(t *testing.T) {
	codes, err := Resolve("kindle5", false)
	require.NoError(t, err)
	assert.Contains(t, codes, CodePaperWhite3Wifi)
	assert.Contains(t, codes, CodeBasic)
}

func TestResolveUnknownRejectedByDefault(t *testing.T) {
	_, err := Resolve("zz", false)
	assert.Error(t, err)
}

func TestResolveUnknownAllowedWhenFlagged(t *testing.T) {
	codes, err := Resolve("zz", true)
	require.NoError(t, err)
	require.Len(t, codes, 1)
}

func TestParseLiteralLegacyByte(t *testing.T) {
	code, err := ParseLiteral("24")
	require.NoError(t, err)
	assert.Equal(t, CodePaperWhiteWifi, code)
}

func TestDefaultPasswordsShape(t *testing.T) {
	root, recovery, err := DefaultPasswords("B013000000000000")
	require.NoError(t, err)
	assert.Regexp(t, `^fiona[0-9a-f]{3}$`, root)
	assert.Regexp(t, `^fiona[0-9a-f]{4}$`, recovery)
	assert.True(t, len(recovery) == len(root)+1)
}

func TestDefaultPasswordsRejectsWrongLength(t *testing.T) {
	_, _, err := DefaultPasswords("tooshort")
	assert.Error(t, err)
}

func TestParsePlatformSymbolicNames(t *testing.T) {
	code, err := ParsePlatform("yoshime-p")
	require.NoError(t, err)
	assert.Equal(t, PlatformYoshimeProto, code)

	code, err = ParsePlatform("wario")
	require.NoError(t, err)
	assert.Equal(t, PlatformWario, code)

	_, err = ParsePlatform("bogus")
	assert.Error(t, err)
}

func TestParseBoardSymbolicNames(t *testing.T) {
	code, err := ParseBoard("tequila")
	require.NoError(t, err)
	assert.Equal(t, BoardTequila, code)

	code, err = ParseBoard("unspecified")
	require.NoError(t, err)
	assert.Equal(t, BoardUnspecified, code)

	_, err = ParseBoard("bogus")
	assert.Error(t, err)
}
