package devcode

import (
	"strconv"

	"github.com/pkg/errors"
)

// Platform identifies the hardware generation a RecoveryUpdateV2 (or
// RecoveryUpdate with header rev >= 2) package targets.
type Platform uint32

// Concrete platform codes. Values and names are pinned to the original
// tool's enumeration and must not be renumbered or respelled.
const (
	PlatformUnspecified  Platform = 0x00
	PlatformMario        Platform = 0x01 // deprecated
	PlatformLuigi        Platform = 0x02
	PlatformBanjo        Platform = 0x03
	PlatformYoshi        Platform = 0x04
	PlatformYoshimeProto Platform = 0x05
	PlatformYoshime      Platform = 0x06 // AKA Yoshime3
	PlatformWario        Platform = 0x07
)

var platformNames = map[Platform]string{
	PlatformUnspecified:  "unspecified",
	PlatformMario:        "mario",
	PlatformLuigi:        "luigi",
	PlatformBanjo:        "banjo",
	PlatformYoshi:        "yoshi",
	PlatformYoshimeProto: "yoshime-p",
	PlatformYoshime:      "yoshime",
	PlatformWario:        "wario",
}

var platformsByName map[string]Platform

func init() {
	platformsByName = make(map[string]Platform, len(platformNames))
	for code, name := range platformNames {
		platformsByName[name] = code
	}
}

// String renders the canonical name for a platform code, or "unknown" if
// not recognized.
func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePlatform resolves a `-p` argument — a symbolic platform name, or a
// raw numeric code for forward compatibility with platforms this build
// doesn't know the name of — into a Platform.
func ParsePlatform(s string) (Platform, error) {
	if code, ok := platformsByName[s]; ok {
		return code, nil
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Platform(n), nil
	}
	return PlatformUnspecified, errors.Errorf("devcode: unrecognized platform %q", s)
}

// Board identifies the specific device board a RecoveryUpdateV2 (or
// RecoveryUpdate with header rev >= 2) package targets.
type Board uint32

// Concrete board codes. Values and names are pinned to the original tool's
// enumeration; unspecified skips the device check entirely.
const (
	BoardUnspecified Board = 0x00
	BoardTequila     Board = 0x03
	BoardWhitney     Board = 0x05
)

var boardNames = map[Board]string{
	BoardUnspecified: "unspecified",
	BoardTequila:     "tequila",
	BoardWhitney:     "whitney",
}

var boardsByName map[string]Board

func init() {
	boardsByName = make(map[string]Board, len(boardNames))
	for code, name := range boardNames {
		boardsByName[name] = code
	}
}

// String renders the canonical name for a board code, or "unknown" if not
// recognized.
func (b Board) String() string {
	if name, ok := boardNames[b]; ok {
		return name
	}
	return "unknown"
}

// ParseBoard resolves a `-B` argument — a symbolic board name, or a raw
// numeric code for forward compatibility — into a Board.
func ParseBoard(s string) (Board, error) {
	if code, ok := boardsByName[s]; ok {
		return code, nil
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Board(n), nil
	}
	return BoardUnspecified, errors.Errorf("devcode: unrecognized board %q", s)
}
