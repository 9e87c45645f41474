package agile

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/beingidly/litexl/cryptoprim"
	"github.com/beingidly/litexl/xlerr"
)

// Decrypt validates the password against the Agile verifier and, on
// success, decrypts encryptedPackage back to the original plaintext, per
// spec.md §4.10's AgileDecryptor algorithm.
func Decrypt(encryptionInfo, encryptedPackage []byte, password string) ([]byte, error) {
	if len(encryptionInfo) < 8 {
		return nil, fmt.Errorf("%w: EncryptionInfo truncated", xlerr.ErrCorrupt)
	}
	if _, err := DecodeHeader(encryptionInfo[:8]); err != nil {
		return nil, err
	}
	desc, err := DecodeDescriptor(encryptionInfo[8:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xlerr.ErrCorrupt, err)
	}
	keyBytes := desc.KeyBits / 8

	kd, err := cryptoprim.NewKeyDerivation(password, desc.KeySalt, desc.SpinCount)
	if err != nil {
		return nil, err
	}
	verifierInputKey := kd.DeriveKey(cryptoprim.BlockKeyVerifierInput, keyBytes)
	verifierValueKey := kd.DeriveKey(cryptoprim.BlockKeyVerifierValue, keyBytes)
	keyWrapKey := kd.DeriveKey(cryptoprim.BlockKeyEncryptedKey, keyBytes)

	verifierInputCipher, err := cryptoprim.NewAesCbc(verifierInputKey)
	if err != nil {
		return nil, err
	}
	verifierPlain, err := verifierInputCipher.Decrypt(desc.EncryptedVerifierHashInput, desc.KeySalt)
	if err != nil {
		return nil, err
	}
	verifierPlain = verifierPlain[:16]

	verifierValueCipher, err := cryptoprim.NewAesCbc(verifierValueKey)
	if err != nil {
		return nil, err
	}
	decryptedHash, err := verifierValueCipher.Decrypt(desc.EncryptedVerifierHashValue, desc.KeySalt)
	if err != nil {
		return nil, err
	}

	computedHash := sha512.Sum512(verifierPlain)
	if subtle.ConstantTimeCompare(computedHash[:32], decryptedHash[:32]) != 1 {
		return nil, xlerr.ErrInvalidPassword
	}

	keyWrapCipher, err := cryptoprim.NewAesCbc(keyWrapKey)
	if err != nil {
		return nil, err
	}
	contentKeyPadded, err := keyWrapCipher.Decrypt(desc.EncryptedKeyValue, desc.KeySalt)
	if err != nil {
		return nil, err
	}
	contentKey := contentKeyPadded[:keyBytes]

	return decryptSegments(encryptedPackage, contentKey, desc.DataSalt)
}

func decryptSegments(encryptedPackage, contentKey, dataSalt []byte) ([]byte, error) {
	if len(encryptedPackage) < 8 {
		return nil, fmt.Errorf("%w: EncryptedPackage truncated", xlerr.ErrCorrupt)
	}
	plainLen := binary.LittleEndian.Uint64(encryptedPackage[0:8])
	contentCipher, err := cryptoprim.NewAesCbc(contentKey)
	if err != nil {
		return nil, err
	}

	numSegments := int((int64(plainLen) + segmentSize - 1) / segmentSize)
	if numSegments == 0 {
		numSegments = 1
	}

	out := make([]byte, 0, plainLen)
	offset := 8
	remaining := int64(plainLen)
	for i := 0; i < numSegments; i++ {
		segPlainLen := remaining
		if segPlainLen > segmentSize {
			segPlainLen = segmentSize
		}
		cipherLen := paddedLen(int(segPlainLen))
		if offset+cipherLen > len(encryptedPackage) {
			return nil, fmt.Errorf("%w: EncryptedPackage segment %d truncated", xlerr.ErrCorrupt, i)
		}
		segCipher := encryptedPackage[offset : offset+cipherLen]
		offset += cipherLen

		iv := segmentIV(dataSalt, i)
		segPlainPadded, err := contentCipher.Decrypt(segCipher, iv)
		if err != nil {
			return nil, err
		}
		out = append(out, segPlainPadded[:segPlainLen]...)
		remaining -= segPlainLen
	}
	return out, nil
}
