package cfb

import (
	"encoding/binary"
	"unicode/utf16"
)

// strongEncryptionTransformGUID is the well-known MS-OFFCRYPTO identifier
// for the strong-encryption data-space transform.
const strongEncryptionTransformGUID = "{FF9A3F03-56EF-4613-BDD5-5A41C1D07246}"

// lpwstr encodes s as a length-prefixed UTF-16LE string: a uint32 byte
// count followed by the UTF-16LE units, with no terminating null — the
// shape every MS-OFFCRYPTO data-space structure below uses for its
// variable-length name fields.
func lpwstr(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 4+2*len(units))
	binary.LittleEndian.PutUint32(out[0:4], uint32(2*len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[4+2*i:6+2*i], u)
	}
	return out
}

func putUint32(out *[]byte, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	*out = append(*out, b[:]...)
}

// versionStream builds the fixed \x06DataSpaces/Version stream content
// (MS-OFFCRYPTO DataSpaceVersionInfo): a feature identifier plus three
// version numbers, all fixed at 1.
func versionStream() []byte {
	var out []byte
	out = append(out, lpwstr("Microsoft.Container.DataSpaces")...)
	putUint32(&out, 1) // reader version
	putUint32(&out, 1) // updater version
	putUint32(&out, 1) // writer version
	return out
}

// dataSpaceMapStream builds \x06DataSpaces/DataSpaceMap: one entry mapping
// the EncryptedPackage stream to the StrongEncryptionDataSpace data space.
func dataSpaceMapStream() []byte {
	var entry []byte
	putUint32(&entry, 1) // reference component count
	putUint32(&entry, 0) // component type: stream
	entry = append(entry, lpwstr("EncryptedPackage")...)
	entry = append(entry, lpwstr("StrongEncryptionDataSpace")...)
	// EntryLength includes itself.
	entryLen := 4 + len(entry)
	full := make([]byte, 0, 4+entryLen)
	putUint32(&full, uint32(entryLen))
	full = append(full, entry...)

	var out []byte
	putUint32(&out, 8) // header length
	putUint32(&out, 1) // entry count
	out = append(out, full...)
	return out
}

// dataSpaceDefinitionStream builds the
// \x06DataSpaces/DataSpaceInfo/StrongEncryptionDataSpace stream: a list of
// transform references applied to streams that belong to this data space.
func dataSpaceDefinitionStream() []byte {
	var out []byte
	putUint32(&out, 8) // header length
	putUint32(&out, 1) // transform reference count
	out = append(out, lpwstr(strongEncryptionTransformGUID)...)
	return out
}

// primaryStream builds
// \x06DataSpaces/TransformInfo/StrongEncryptionTransform/\x06Primary: the
// TransformInfoHeader identifying the strong-encryption transform.
func primaryStream() []byte {
	var out []byte
	putUint32(&out, 1) // transform type: crypto transform
	out = append(out, lpwstr(strongEncryptionTransformGUID)...)
	out = append(out, lpwstr("Microsoft.Container.EncryptionTransform")...)
	putUint32(&out, 1) // reader version
	putUint32(&out, 1) // updater version
	putUint32(&out, 1) // writer version
	putUint32(&out, 0) // extensibility data length
	return out
}
