package cryptoprim_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/beingidly/litexl/cryptoprim"
	"github.com/beingidly/litexl/xlerr"
)

func TestAesCbcRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	iv := bytes.Repeat([]byte{0x22}, 16)
	plaintext := []byte("sixteen-byte-block-aligned text!")

	cipher, err := cryptoprim.NewAesCbc(key)
	if err != nil {
		t.Fatalf("NewAesCbc: %v", err)
	}
	ciphertext, err := cipher.Encrypt(plaintext, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("ciphertext equals plaintext")
	}
	decrypted, err := cipher.Decrypt(ciphertext, iv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted[:len(plaintext)], plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted[:len(plaintext)], plaintext)
	}
}

func TestAesCbcZeroPadsUnalignedPlaintext(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, 16)
	iv := bytes.Repeat([]byte{0x44}, 16)
	plaintext := []byte("13 bytes!!!!!")

	cipher, err := cryptoprim.NewAesCbc(key)
	if err != nil {
		t.Fatalf("NewAesCbc: %v", err)
	}
	ciphertext, err := cipher.Encrypt(plaintext, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ciphertext)%16 != 0 {
		t.Fatalf("ciphertext length %d not block-aligned", len(ciphertext))
	}
	decrypted, err := cipher.Decrypt(ciphertext, iv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted[:len(plaintext)], plaintext) {
		t.Errorf("decrypted head = %q, want %q", decrypted[:len(plaintext)], plaintext)
	}
	for _, b := range decrypted[len(plaintext):] {
		if b != 0 {
			t.Errorf("padding byte = %d, want 0", b)
		}
	}
}

func TestAesCbcRejectsBadIVLength(t *testing.T) {
	cipher, err := cryptoprim.NewAesCbc(bytes.Repeat([]byte{0x01}, 16))
	if err != nil {
		t.Fatalf("NewAesCbc: %v", err)
	}
	if _, err := cipher.Encrypt([]byte("hi"), []byte{1, 2, 3}); !errors.Is(err, xlerr.ErrUnsupported) {
		t.Errorf("Encrypt with bad IV error = %v, want ErrUnsupported", err)
	}
}

func TestAesCbcRejectsUnalignedCiphertext(t *testing.T) {
	cipher, err := cryptoprim.NewAesCbc(bytes.Repeat([]byte{0x01}, 16))
	if err != nil {
		t.Fatalf("NewAesCbc: %v", err)
	}
	iv := bytes.Repeat([]byte{0x02}, 16)
	if _, err := cipher.Decrypt([]byte("not-block-aligned"), iv); !errors.Is(err, xlerr.ErrCorrupt) {
		t.Errorf("Decrypt with unaligned ciphertext error = %v, want ErrCorrupt", err)
	}
}

func TestKeyDerivationIsDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x05}, 16)
	kd1, err := cryptoprim.NewKeyDerivation("swordfish", salt, 100)
	if err != nil {
		t.Fatalf("NewKeyDerivation: %v", err)
	}
	kd2, err := cryptoprim.NewKeyDerivation("swordfish", salt, 100)
	if err != nil {
		t.Fatalf("NewKeyDerivation: %v", err)
	}
	key1 := kd1.DeriveKey(cryptoprim.BlockKeyVerifierInput, 32)
	key2 := kd2.DeriveKey(cryptoprim.BlockKeyVerifierInput, 32)
	if !bytes.Equal(key1, key2) {
		t.Errorf("same password/salt/spinCount produced different keys")
	}
	if len(key1) != 32 {
		t.Errorf("DeriveKey length = %d, want 32", len(key1))
	}
}

func TestKeyDerivationDiffersByBlockKey(t *testing.T) {
	salt := bytes.Repeat([]byte{0x06}, 16)
	kd, err := cryptoprim.NewKeyDerivation("hunter2", salt, 50)
	if err != nil {
		t.Fatalf("NewKeyDerivation: %v", err)
	}
	a := kd.DeriveKey(cryptoprim.BlockKeyVerifierInput, 32)
	b := kd.DeriveKey(cryptoprim.BlockKeyVerifierValue, 32)
	if bytes.Equal(a, b) {
		t.Errorf("distinct block keys produced identical derived keys")
	}
}

func TestKeyDerivationDiffersByPassword(t *testing.T) {
	salt := bytes.Repeat([]byte{0x07}, 16)
	kd1, _ := cryptoprim.NewKeyDerivation("correct-password", salt, 10)
	kd2, _ := cryptoprim.NewKeyDerivation("wrong-password", salt, 10)
	a := kd1.DeriveKey(cryptoprim.BlockKeyEncryptedKey, 16)
	b := kd2.DeriveKey(cryptoprim.BlockKeyEncryptedKey, 16)
	if bytes.Equal(a, b) {
		t.Errorf("different passwords produced identical derived keys")
	}
}

func TestEncodePasswordUTF16LE(t *testing.T) {
	b, err := cryptoprim.EncodePasswordUTF16LE("AB")
	if err != nil {
		t.Fatalf("EncodePasswordUTF16LE: %v", err)
	}
	want := []byte{'A', 0, 'B', 0}
	if !bytes.Equal(b, want) {
		t.Errorf("EncodePasswordUTF16LE(%q) = %v, want %v", "AB", b, want)
	}
}
