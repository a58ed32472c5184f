// Package devcode implements the device, platform, and board enumerations
// used to target firmware bundles, their aliases, and the `info`
// command's serial-number-to-default-password derivation.
package devcode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Code identifies a single concrete device. Devices shipped before the PW3
// generation are addressed by a single legacy byte; PW3 and later encode
// the device as three base-32 characters taken from the serial number.
type Code uint16

// Concrete device codes, one per shipped unit variant. Values are pinned to
// match what devices on each firmware actually expect; they are not
// renumbered across releases.
const (
	CodeUnknown                 Code = 0x00
	CodeReader1                 Code = 0x01
	CodeReader2US               Code = 0x02
	CodeReader2Intl             Code = 0x03
	CodeReaderDXUS              Code = 0x04
	CodeReaderDXIntl            Code = 0x05
	CodeReader3Wifi3G           Code = 0x06
	CodeReader3Wifi             Code = 0x08
	CodeReaderDXGraphite        Code = 0x09
	CodeReader3Wifi3GEurope     Code = 0x0A
	CodeReader4NonTouch         Code = 0x0E
	CodeTouchWifi3G             Code = 0x0F
	CodeTouchWifi3GEurope       Code = 0x10
	CodeTouchWifi               Code = 0x11
	CodeTouchUnknown            Code = 0x12
	CodeVoyageWifi              Code = 0x13
	CodeReader4NonTouchBlack    Code = 0x23
	CodePaperWhiteWifi          Code = 0x24
	CodePaperWhiteWifi3GBrazil  Code = 0x20
	CodePaperWhiteWifi3GJapan   Code = 0x1F
	CodePaperWhiteWifi3GEurope  Code = 0x1D
	CodePaperWhiteWifi3GCanada  Code = 0x1C
	CodePaperWhiteWifi3G        Code = 0x1B
	CodePaperWhite2Wifi4GBIntl  Code = 0x17
	CodeVoyageWifi3GEurope      Code = 0x53
	CodeVoyageWifi3G            Code = 0x54
	CodePaperWhite2Wifi3G4GBEU  Code = 0x60
	CodePaperWhite2Wifi3G4GB    Code = 0x62
	CodePaperWhite2Wifi3G4GBCA  Code = 0x5F
	CodePaperWhite2WifiJapan    Code = 0x5A
	CodeBasic                   Code = 0xC6
	CodePaperWhite2Wifi         Code = 0xD4
	CodePaperWhite2Wifi3G       Code = 0xD5
	CodePaperWhite2Wifi3GCanada Code = 0xD6
	CodePaperWhite2Wifi3GEurope Code = 0xD7
	CodePaperWhite2Wifi3GRussia Code = 0xD8
	CodePaperWhite2Wifi3GJapan  Code = 0xF2
	CodePaperWhite3Wifi         Code = 0x201
)

// Wario-or-newer threshold: the serial-number password scheme changes for
// devices at or after the Voyage/PW2-4GB generation. Derived from the
// source's inline device-id comparison — preserved verbatim since the
// exact membership is load-bearing for device-password compatibility.
func isWarioOrNewer(c Code) bool {
	return c == CodeVoyageWifi || c == CodePaperWhite2Wifi4GBIntl || c >= CodeVoyageWifi3GEurope
}

// names maps each known code to its canonical spelling, used both for
// display and for alias resolution of single-device short names.
var names = map[Code]string{
	CodeUnknown:                 "unknown",
	CodeReader1:                 "k1",
	CodeReader2US:               "k2",
	CodeReader2Intl:             "k2i",
	CodeReaderDXUS:              "dx",
	CodeReaderDXIntl:            "dxi",
	CodeReaderDXGraphite:        "dxg",
	CodeReader3Wifi:             "k3w",
	CodeReader3Wifi3G:           "k3g",
	CodeReader3Wifi3GEurope:     "k3gb",
	CodeReader4NonTouch:         "k4",
	CodeReader4NonTouchBlack:    "k4b",
	CodeTouchWifi3G:             "k5g",
	CodeTouchWifi:               "k5w",
	CodeTouchWifi3GEurope:       "k5gb",
	CodeTouchUnknown:            "k5u",
	CodePaperWhiteWifi:          "pw",
	CodePaperWhiteWifi3G:        "pwg",
	CodePaperWhiteWifi3GCanada:  "pwgc",
	CodePaperWhiteWifi3GEurope:  "pwgb",
	CodePaperWhiteWifi3GJapan:   "pwgj",
	CodePaperWhiteWifi3GBrazil:  "pwgbr",
	CodePaperWhite2Wifi:         "pw2",
	CodePaperWhite2WifiJapan:    "pw2j",
	CodePaperWhite2Wifi3G:       "pw2g",
	CodePaperWhite2Wifi3GCanada: "pw2gc",
	CodePaperWhite2Wifi3GEurope: "pw2gb",
	CodePaperWhite2Wifi3GRussia: "pw2gr",
	CodePaperWhite2Wifi3GJapan:  "pw2gj",
	CodePaperWhite2Wifi4GBIntl:  "pw2il",
	CodePaperWhite2Wifi3G4GBEU:  "pw2gbl",
	CodePaperWhite2Wifi3G4GB:    "pw2gl",
	CodePaperWhite2Wifi3G4GBCA:  "pw2gcl",
	CodeBasic:                   "kt2",
	CodeVoyageWifi:              "kv",
	CodeVoyageWifi3G:            "kvg",
	CodeVoyageWifi3GEurope:      "kvgb",
	CodePaperWhite3Wifi:         "pw3",
}

var codesByName map[string]Code

func init() {
	codesByName = make(map[string]Code, len(names))
	for code, name := range names {
		codesByName[name] = code
	}
}

// String renders the canonical short name for a device code, or "unknown"
// if not recognized.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "unknown"
}

// aliasGroups expands a group alias into the concrete short names it
// stands for. Membership is pinned to match the original tool's help text
// verbatim and must not be guessed or reordered.
var aliasGroups = map[string][]string{
	"kindle2":     {"k2", "k2i"},
	"kindledx":    {"dx", "dxi", "dxg"},
	"kindle3":     {"k3w", "k3g", "k3gb"},
	"legacy":      {"kindle2", "kindledx", "kindle3"},
	"kindle4":     {"k4", "k4b"},
	"touch":       {"k5w", "k5g", "k5gb"},
	"paperwhite":  {"pw", "pwg", "pwgc", "pwgb", "pwgj", "pwgbr"},
	"paperwhite2": {"pw2", "pw2j", "pw2g", "pw2gc", "pw2gb", "pw2gr", "pw2gj", "pw2il", "pw2gbl", "pw2gl", "pw2gcl"},
	"basic":       {"kt2"},
	"voyage":      {"kv", "kvg", "kvgb"},
	"paperwhite3": {"pw3"},
	"kindle5":     {"touch", "paperwhite", "paperwhite2", "basic", "voyage", "paperwhite3"},
}

// Resolve expands a `-d` device argument — a concrete short name or a group
// alias, recursively — into the list of concrete device codes it names.
// allowUnknown relaxes validation so an unrecognized literal code (hex
// byte or 3-char base32 token) is accepted rather than rejected, mirroring
// KT_WITH_UNKNOWN_DEVCODES.
func Resolve(name string, allowUnknown bool) ([]Code, error) {
	if group, ok := aliasGroups[name]; ok {
		var out []Code
		for _, member := range group {
			codes, err := Resolve(member, allowUnknown)
			if err != nil {
				return nil, err
			}
			out = append(out, codes...)
		}
		return out, nil
	}
	if code, ok := codesByName[name]; ok {
		return []Code{code}, nil
	}
	code, err := ParseLiteral(name)
	if err != nil {
		if allowUnknown {
			return []Code{code}, nil
		}
		return nil, err
	}
	return []Code{code}, nil
}

// ParseLiteral interprets a raw device-code token: a two-hex-digit legacy
// byte, or (for devices from PW3 onward) a three-character base-32 token.
func ParseLiteral(s string) (Code, error) {
	if n, err := strconv.ParseUint(s, 16, 8); err == nil {
		return Code(n), nil
	}
	if len(s) == 3 {
		n, err := strconv.ParseUint(strings.ToUpper(s), 32, 16)
		if err == nil {
			return Code(n), nil
		}
	}
	return CodeUnknown, errors.Errorf("devcode: unrecognized device code %q", s)
}
