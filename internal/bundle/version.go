// Package bundle defines the tagged bundle-version enumeration shared by
// the header codec, packager, and unpackager: the magic-number table that
// identifies each on-disk package variant.
package bundle

// Version tags the on-disk package variant, derived from the 4-byte magic
// number at offset 0 of a bundle.
type Version int

const (
	Unknown Version = iota
	UpdateSignature
	OTAUpdateV1
	OTAUpdateV2
	RecoveryUpdate
	RecoveryUpdateV2
	UserDataPackage
)

// String implements fmt.Stringer for diagnostic output (info, logging).
func (v Version) String() string {
	switch v {
	case UpdateSignature:
		return "UpdateSignature"
	case OTAUpdateV1:
		return "OTAUpdateV1"
	case OTAUpdateV2:
		return "OTAUpdateV2"
	case RecoveryUpdate:
		return "RecoveryUpdate"
	case RecoveryUpdateV2:
		return "RecoveryUpdateV2"
	case UserDataPackage:
		return "UserDataPackage"
	default:
		return "Unknown"
	}
}

// gzipMagic is the raw gzip stream magic used to recognize UserDataPackage
// bodies; it occupies all 4 magic bytes, unlike the other variants whose
// magics are ASCII tags.
var gzipMagic = [4]byte{0x1F, 0x8B, 0x08, 0x00}

// magicTable maps each known 4-byte magic to its variant. Multiple magics
// can map to the same variant (e.g. FB01/FB02 both mean RecoveryUpdate);
// the table preserves the source's exact membership.
var magicTable = map[[4]byte]Version{
	{'F', 'B', '0', '1'}: RecoveryUpdate,
	{'F', 'B', '0', '2'}: RecoveryUpdate,
	{'F', 'B', '0', '3'}: RecoveryUpdateV2,
	{'F', 'C', '0', '2'}: OTAUpdateV1,
	{'F', 'D', '0', '3'}: OTAUpdateV1,
	{'F', 'C', '0', '4'}: OTAUpdateV2,
	{'F', 'D', '0', '4'}: OTAUpdateV2,
	{'F', 'L', '0', '1'}: OTAUpdateV2,
	{'S', 'P', '0', '1'}: UpdateSignature,
	gzipMagic:            UserDataPackage,
}

// FromMagic dispatches on the first 4 bytes of a bundle. An unrecognized
// magic yields Unknown without consuming further input.
func FromMagic(magic [4]byte) Version {
	if v, ok := magicTable[magic]; ok {
		return v
	}
	return Unknown
}

// MagicFor returns the canonical on-disk magic bytes kindletool writes for
// a given variant and explicit magic string (OTA/Recovery variants allow
// several magics per variant, selected by UpdateInformation.Magic).
func MagicFor(v Version, magic string) [4]byte {
	if v == UserDataPackage {
		return gzipMagic
	}
	var out [4]byte
	copy(out[:], magic)
	return out
}
