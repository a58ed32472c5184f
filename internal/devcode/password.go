package devcode

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const serialNumberLength = 16

// DefaultPasswords derives the two default on-device passwords from a
// 16-character serial number: the root shell password and the recovery
// MMC export password. Both have the form "fiona" + hex digits, sliced
// out of md5(serial + "\n"); the slice offset depends on whether the
// device identified by the serial is Wario-or-newer.
func DefaultPasswords(serial string) (root, recovery string, err error) {
	if len(serial) != serialNumberLength {
		return "", "", errors.Errorf("devcode: serial number must be %d characters long, got %d", serialNumberLength, len(serial))
	}
	serial = strings.ToUpper(serial)

	sum := md5.Sum([]byte(serial + "\n"))
	digest := hex.EncodeToString(sum[:])

	code, err := serialDeviceCode(serial)
	if err != nil {
		return "", "", err
	}

	offset := 7
	if isWarioOrNewer(code) {
		offset = 13
	}
	if offset+7 > len(digest) {
		return "", "", errors.New("devcode: md5 digest too short for password offsets")
	}
	root = "fiona" + digest[offset:offset+3]
	recovery = "fiona" + digest[offset:offset+4]
	return root, recovery, nil
}

// serialDeviceCode extracts the device code from a serial number. It first
// tries the legacy position (bytes 2-3, as two hex digits); if that
// doesn't name a known device, it falls back to the PW3-onward position
// (bytes 3-5, interpreted as three base-32 characters).
func serialDeviceCode(serial string) (Code, error) {
	legacy, err := strconv.ParseUint(serial[2:4], 16, 8)
	if err == nil {
		if code := Code(legacy); code != CodeUnknown && names[code] != "" {
			return code, nil
		}
	}
	n, err := strconv.ParseUint(serial[3:6], 32, 16)
	if err != nil {
		return CodeUnknown, errors.Wrap(err, "devcode: unrecognized device code in serial number")
	}
	code := Code(n)
	if code == CodeUnknown || names[code] == "" {
		return CodeUnknown, errors.Errorf("devcode: unknown device code in serial number %q", serial)
	}
	return code, nil
}
