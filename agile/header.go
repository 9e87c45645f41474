// Package agile implements the ECMA-376 Agile encryption envelope: verifier
// generation/validation, key wrapping, and segment-wise AES-CBC of the
// whole OOXML package, per spec.md §4.10.
//
// Grounded on spec.md's byte-exact algorithm description (no example repo
// in the retrieval pack implements MS-OFFCRYPTO Agile encryption); built
// on cryptoprim's AesCbc/KeyDerivation and, for the XML descriptor, the
// same internal/xmlcodec writer/reader the rest of the module uses for
// OOXML parts, since EncryptionInfo's <encryption> document is itself a
// small well-formed XML document with no reason to special-case.
package agile

import (
	"encoding/binary"
	"fmt"

	"github.com/beingidly/litexl/xlerr"
)

// Header is the 8-byte version/flags prefix of the EncryptionInfo stream.
type Header struct {
	Major uint16
	Minor uint16
	Flags uint32
}

// SupportedHeader is the only version this package produces or accepts
// (spec.md §4.10: "rejects any version other than 4.4").
var SupportedHeader = Header{Major: 4, Minor: 4, Flags: 0}

// EncodeHeader writes the 8-byte little-endian header.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], h.Major)
	binary.LittleEndian.PutUint16(buf[2:4], h.Minor)
	binary.LittleEndian.PutUint32(buf[4:8], h.Flags)
	return buf
}

// DecodeHeader parses the 8-byte header and rejects anything but 4.4.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < 8 {
		return Header{}, fmt.Errorf("%w: encryption header truncated", xlerr.ErrCorrupt)
	}
	h := Header{
		Major: binary.LittleEndian.Uint16(b[0:2]),
		Minor: binary.LittleEndian.Uint16(b[2:4]),
		Flags: binary.LittleEndian.Uint32(b[4:8]),
	}
	if h.Major != 4 || h.Minor != 4 {
		return Header{}, fmt.Errorf("%w: encryption version %d.%d", xlerr.ErrUnsupported, h.Major, h.Minor)
	}
	return h, nil
}
