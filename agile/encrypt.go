package agile

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/beingidly/litexl/cryptoprim"
)

// Algorithm selects the content-encryption key size, per spec.md §6's
// EncryptionOptions.
type Algorithm int

const (
	AES128 Algorithm = iota
	AES256
)

func (a Algorithm) keyBits() int {
	if a == AES256 {
		return 256
	}
	return 128
}

// Options configures AgileEncryptor, mirroring spec.md §6's
// EncryptionOptions contract.
type Options struct {
	Algorithm Algorithm
	Password  string
	SpinCount int
}

const segmentSize = 4096

// Encrypt produces the EncryptionInfo stream bytes and the EncryptedPackage
// stream bytes for plaintext, per the eight-step Agile algorithm in
// spec.md §4.10.
func Encrypt(plaintext []byte, opts Options) (encryptionInfo, encryptedPackage []byte, err error) {
	keyBits := opts.Algorithm.keyBits()
	keyBytes := keyBits / 8

	dataSalt := make([]byte, 16)
	keySalt := make([]byte, 16)
	if _, err := rand.Read(dataSalt); err != nil {
		return nil, nil, fmt.Errorf("agile: generate data salt: %w", err)
	}
	if _, err := rand.Read(keySalt); err != nil {
		return nil, nil, fmt.Errorf("agile: generate key salt: %w", err)
	}
	contentKey := make([]byte, keyBytes)
	if _, err := rand.Read(contentKey); err != nil {
		return nil, nil, fmt.Errorf("agile: generate content key: %w", err)
	}

	kd, err := cryptoprim.NewKeyDerivation(opts.Password, keySalt, opts.SpinCount)
	if err != nil {
		return nil, nil, err
	}
	verifierInputKey := kd.DeriveKey(cryptoprim.BlockKeyVerifierInput, keyBytes)
	verifierValueKey := kd.DeriveKey(cryptoprim.BlockKeyVerifierValue, keyBytes)
	keyWrapKey := kd.DeriveKey(cryptoprim.BlockKeyEncryptedKey, keyBytes)

	verifierPlain := make([]byte, 16)
	if _, err := rand.Read(verifierPlain); err != nil {
		return nil, nil, fmt.Errorf("agile: generate verifier: %w", err)
	}

	verifierInputCipher, err := cryptoprim.NewAesCbc(verifierInputKey)
	if err != nil {
		return nil, nil, err
	}
	encVerifierHashInput, err := verifierInputCipher.Encrypt(verifierPlain, keySalt)
	if err != nil {
		return nil, nil, err
	}

	verifierHash := sha512.Sum512(verifierPlain)
	verifierValueCipher, err := cryptoprim.NewAesCbc(verifierValueKey)
	if err != nil {
		return nil, nil, err
	}
	encVerifierHashValue, err := verifierValueCipher.Encrypt(verifierHash[:], keySalt)
	if err != nil {
		return nil, nil, err
	}

	keyWrapCipher, err := cryptoprim.NewAesCbc(keyWrapKey)
	if err != nil {
		return nil, nil, err
	}
	encKeyValue, err := keyWrapCipher.Encrypt(contentKey, keySalt)
	if err != nil {
		return nil, nil, err
	}

	desc := Descriptor{
		KeyBits:                    keyBits,
		DataSalt:                   dataSalt,
		SpinCount:                  opts.SpinCount,
		KeySalt:                    keySalt,
		EncryptedVerifierHashInput: encVerifierHashInput,
		EncryptedVerifierHashValue: encVerifierHashValue,
		EncryptedKeyValue:          encKeyValue,
	}
	encryptionInfo = append(EncodeHeader(SupportedHeader), EncodeDescriptor(desc)...)

	encryptedPackage, err = encryptSegments(plaintext, contentKey, dataSalt)
	if err != nil {
		return nil, nil, err
	}
	return encryptionInfo, encryptedPackage, nil
}

func encryptSegments(plaintext, contentKey, dataSalt []byte) ([]byte, error) {
	contentCipher, err := cryptoprim.NewAesCbc(contentKey)
	if err != nil {
		return nil, err
	}
	numSegments := (len(plaintext) + segmentSize - 1) / segmentSize
	if numSegments == 0 {
		numSegments = 1
	}

	out := make([]byte, 8, 8+paddedLen(len(plaintext))+numSegments*16)
	binary.LittleEndian.PutUint64(out[0:8], uint64(len(plaintext)))

	for i := 0; i < numSegments; i++ {
		start := i * segmentSize
		end := start + segmentSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		seg := plaintext[start:end]
		if len(seg) == 0 {
			seg = make([]byte, 16) // see paddedLen: an empty segment is one block
		}
		iv := segmentIV(dataSalt, i)
		enc, err := contentCipher.Encrypt(seg, iv)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// segmentIV derives IV_i = SHA512(dataSalt || LE32(i))[0:16].
func segmentIV(dataSalt []byte, index int) []byte {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], uint32(index))
	h := sha512.New()
	h.Write(dataSalt)
	h.Write(idx[:])
	sum := h.Sum(nil)
	return sum[:16]
}

// paddedLen is the zero-padded block-aligned size of an n-byte segment; a
// zero-length segment still occupies one 16-byte block.
func paddedLen(n int) int {
	if n == 0 {
		return 16
	}
	return ((n + 15) / 16) * 16
}
