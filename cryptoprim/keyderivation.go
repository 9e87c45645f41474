package cryptoprim

import (
	"crypto/sha512"
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// Fixed block-key suffixes spec.md §4.10 assigns to each derived key's
// role in the Agile envelope.
var (
	BlockKeyVerifierInput      = [8]byte{0xFE, 0xA7, 0xD2, 0x76, 0x3B, 0x4B, 0x9E, 0x79}
	BlockKeyVerifierValue      = [8]byte{0xD7, 0xAA, 0x0F, 0x6D, 0x30, 0x61, 0x34, 0x4E}
	BlockKeyEncryptedKey       = [8]byte{0x14, 0x6E, 0x0B, 0xE7, 0xAB, 0xAC, 0xD0, 0xD6}
	BlockKeyIntegrityHMACKey   = [8]byte{0x5F, 0xB2, 0xAD, 0x01, 0x0C, 0xB9, 0xE1, 0xF6}
	BlockKeyIntegrityHMACValue = [8]byte{0xA0, 0x67, 0x7F, 0x02, 0xB2, 0x2C, 0x84, 0x33}
)

// EncodePasswordUTF16LE encodes password as UTF-16LE with no byte-order
// mark, the wire form spec.md §9 requires for key derivation.
func EncodePasswordUTF16LE(password string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	return enc.Bytes([]byte(password))
}

// KeyDerivation implements the iterated-SHA-512 derivation of spec.md
// §4.10: H0 = SHA512(salt || UTF16LE(password)), then N rounds of
// H(i+1) = SHA512(LE32(i) || H(i)), producing H_N once for reuse across
// every block key this session needs.
type KeyDerivation struct {
	hN [64]byte
}

// NewKeyDerivation computes H_N from password, salt, and spinCount,
// ready for repeated DeriveKey calls.
func NewKeyDerivation(password string, salt []byte, spinCount int) (*KeyDerivation, error) {
	pwBytes, err := EncodePasswordUTF16LE(password)
	if err != nil {
		return nil, err
	}
	h := sha512.New()
	h.Write(salt)
	h.Write(pwBytes)
	hN := h.Sum(nil)

	var idx [4]byte
	for i := 0; i < spinCount; i++ {
		binary.LittleEndian.PutUint32(idx[:], uint32(i))
		h.Reset()
		h.Write(idx[:])
		h.Write(hN)
		hN = h.Sum(hN[:0])
	}

	kd := &KeyDerivation{}
	copy(kd.hN[:], hN)
	return kd, nil
}

// DeriveKey computes K_B = SHA512(H_N || blockKey), truncated to keyBytes.
func (kd *KeyDerivation) DeriveKey(blockKey [8]byte, keyBytes int) []byte {
	h := sha512.New()
	h.Write(kd.hN[:])
	h.Write(blockKey[:])
	sum := h.Sum(nil)
	if keyBytes > len(sum) {
		keyBytes = len(sum)
	}
	return sum[:keyBytes]
}
