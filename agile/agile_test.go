package agile_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/beingidly/litexl/agile"
	"github.com/beingidly/litexl/xlerr"
)

func TestEncryptDecryptRoundTripAES256(t *testing.T) {
	plaintext := []byte("a small OOXML package payload")
	info, pkg, err := agile.Encrypt(plaintext, agile.Options{
		Algorithm: agile.AES256,
		Password:  "correct horse battery staple",
		SpinCount: 1000,
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := agile.Decrypt(info, pkg, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestEncryptDecryptRoundTripAES128(t *testing.T) {
	plaintext := []byte("another payload")
	info, pkg, err := agile.Encrypt(plaintext, agile.Options{
		Algorithm: agile.AES128,
		Password:  "hunter2",
		SpinCount: 100,
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := agile.Decrypt(info, pkg, "hunter2")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestEncryptDecryptMultiSegmentPlaintext(t *testing.T) {
	// Larger than one 4096-byte segment, to exercise the segment loop and
	// its per-segment IV derivation.
	plaintext := bytes.Repeat([]byte("0123456789abcdef"), 1000) // 16000 bytes
	info, pkg, err := agile.Encrypt(plaintext, agile.Options{
		Algorithm: agile.AES256,
		Password:  "segment-test",
		SpinCount: 50,
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := agile.Decrypt(info, pkg, "segment-test")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch over %d bytes", len(plaintext))
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	info, pkg, err := agile.Encrypt([]byte("secret"), agile.Options{
		Algorithm: agile.AES256,
		Password:  "right",
		SpinCount: 10,
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := agile.Decrypt(info, pkg, "wrong"); !errors.Is(err, xlerr.ErrInvalidPassword) {
		t.Errorf("Decrypt with wrong password error = %v, want ErrInvalidPassword", err)
	}
}

func TestDecryptRejectsUnsupportedVersion(t *testing.T) {
	info, pkg, err := agile.Encrypt([]byte("x"), agile.Options{
		Algorithm: agile.AES256,
		Password:  "p",
		SpinCount: 10,
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	bad := append([]byte(nil), info...)
	bad[0] = 3 // major version 3 instead of 4
	if _, err := agile.Decrypt(bad, pkg, "p"); !errors.Is(err, xlerr.ErrUnsupported) {
		t.Errorf("Decrypt with bad version error = %v, want ErrUnsupported", err)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	desc := agile.Descriptor{
		KeyBits:                    256,
		DataSalt:                   []byte("0123456789abcdef"),
		SpinCount:                  100000,
		KeySalt:                    []byte("fedcba9876543210"),
		EncryptedVerifierHashInput: bytes.Repeat([]byte{0xAB}, 16),
		EncryptedVerifierHashValue: bytes.Repeat([]byte{0xCD}, 32),
		EncryptedKeyValue:          bytes.Repeat([]byte{0xEF}, 32),
	}
	encoded := agile.EncodeDescriptor(desc)
	if !strings.Contains(string(encoded), "keyBits=\"256\"") {
		t.Fatalf("encoded descriptor missing keyBits attribute: %s", encoded)
	}
	got, err := agile.DecodeDescriptor(encoded)
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	if got.KeyBits != desc.KeyBits || got.SpinCount != desc.SpinCount {
		t.Errorf("DecodeDescriptor scalar fields = %+v, want %+v", got, desc)
	}
	if !bytes.Equal(got.DataSalt, desc.DataSalt) || !bytes.Equal(got.KeySalt, desc.KeySalt) {
		t.Errorf("DecodeDescriptor salts = %+v, want %+v", got, desc)
	}
	if !bytes.Equal(got.EncryptedVerifierHashInput, desc.EncryptedVerifierHashInput) ||
		!bytes.Equal(got.EncryptedVerifierHashValue, desc.EncryptedVerifierHashValue) ||
		!bytes.Equal(got.EncryptedKeyValue, desc.EncryptedKeyValue) {
		t.Errorf("DecodeDescriptor encrypted fields did not round trip")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	encoded := agile.EncodeHeader(agile.SupportedHeader)
	got, err := agile.DecodeHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != agile.SupportedHeader {
		t.Errorf("DecodeHeader() = %+v, want %+v", got, agile.SupportedHeader)
	}
}

func TestDecodeHeaderRejectsUnsupportedVersion(t *testing.T) {
	encoded := agile.EncodeHeader(agile.Header{Major: 2, Minor: 0})
	if _, err := agile.DecodeHeader(encoded); !errors.Is(err, xlerr.ErrUnsupported) {
		t.Errorf("DecodeHeader(2.0) error = %v, want ErrUnsupported", err)
	}
}
