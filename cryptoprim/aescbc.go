// Package cryptoprim implements the two low-level primitives the Agile
// encryption envelope is built from: AES-CBC with no padding, and the
// iterated-SHA-512 key derivation ECMA-376 prescribes (spec.md §4.10).
//
// Named cryptoprim rather than crypto to avoid shadowing the standard
// library package of that name throughout the rest of the module.
//
// Grounded on spec.md §4.10's byte-exact algorithm rather than any example
// repo: none of the retrieved repos implement ECMA-376 Agile key derivation
// or its fixed block-key suffixes, and no third-party library in the
// retrieval pack exposes "iterated SHA-512 with a caller-supplied 8-byte
// block key" or "AES-CBC with explicit zero-padding, no authentication" as
// a primitive — both are bespoke enough that golang.org/x/crypto's PBKDF2
// (a different, incompatible derivation) would not serve, so this package
// is justified stdlib crypto/aes, crypto/cipher, crypto/sha512.
package cryptoprim

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/beingidly/litexl/xlerr"
)

const blockSize = aes.BlockSize // 16

// AesCbc holds a prepared AES key for repeated CBC encrypt/decrypt calls
// with caller-supplied IVs, per spec.md §4.10.
type AesCbc struct {
	block cipher.Block
}

// NewAesCbc prepares an AES-128/192/256 cipher from key (16/24/32 bytes).
func NewAesCbc(key []byte) (*AesCbc, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xlerr.ErrUnsupported, err)
	}
	return &AesCbc{block: block}, nil
}

// Encrypt zero-pads plaintext to a 16-byte multiple and CBC-encrypts it
// with iv (which must be exactly 16 bytes). The caller is responsible for
// tracking the true plaintext length externally, since the padding is not
// self-describing.
func (a *AesCbc) Encrypt(plaintext, iv []byte) ([]byte, error) {
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", xlerr.ErrUnsupported, blockSize, len(iv))
	}
	padded := zeroPad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(a.block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt CBC-decrypts ciphertext (which must already be block-aligned)
// with iv. The result is the zero-padded plaintext; the caller trims it
// back to the true length it tracked separately.
func (a *AesCbc) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", xlerr.ErrUnsupported, blockSize, len(iv))
	}
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not block-aligned", xlerr.ErrCorrupt, len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(a.block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func zeroPad(b []byte) []byte {
	rem := len(b) % blockSize
	if rem == 0 {
		return b
	}
	return append(bytes.Clone(b), make([]byte, blockSize-rem)...)
}
