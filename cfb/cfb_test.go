package cfb_test

import (
	"bytes"
	"testing"

	"github.com/beingidly/litexl/cfb"
)

func TestIsCFB(t *testing.T) {
	if !cfb.IsCFB(cfb.Magic[:]) {
		t.Errorf("IsCFB(Magic) = false, want true")
	}
	if cfb.IsCFB([]byte("PK\x03\x04")) {
		t.Errorf("IsCFB(zip magic) = true, want false")
	}
	if cfb.IsCFB([]byte{0xD0, 0xCF}) {
		t.Errorf("IsCFB(truncated magic) = true, want false")
	}
}

func TestWriteEncryptedContainerRoundTrip(t *testing.T) {
	encryptionInfo := bytes.Repeat([]byte{0xAA}, 300)
	encryptedPackage := bytes.Repeat([]byte{0xBB}, 10000)

	out, err := cfb.WriteEncryptedContainer(encryptionInfo, encryptedPackage)
	if err != nil {
		t.Fatalf("WriteEncryptedContainer: %v", err)
	}
	if !cfb.IsCFB(out) {
		t.Fatalf("container does not start with the CFB magic signature")
	}
	if len(out)%512 != 0 {
		t.Errorf("container length %d is not sector-aligned", len(out))
	}

	r, err := cfb.Open(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	gotInfo, err := r.EncryptionInfo()
	if err != nil {
		t.Fatalf("EncryptionInfo: %v", err)
	}
	if !bytes.Equal(gotInfo, encryptionInfo) {
		t.Errorf("EncryptionInfo stream mismatch: got %d bytes, want %d", len(gotInfo), len(encryptionInfo))
	}

	gotPkg, err := r.EncryptedPackage()
	if err != nil {
		t.Fatalf("EncryptedPackage: %v", err)
	}
	if len(gotPkg) < len(encryptedPackage) {
		t.Fatalf("EncryptedPackage stream shorter than input: got %d, want at least %d", len(gotPkg), len(encryptedPackage))
	}
	if !bytes.Equal(gotPkg[:len(encryptedPackage)], encryptedPackage) {
		t.Errorf("EncryptedPackage stream prefix mismatch")
	}
	for _, b := range gotPkg[len(encryptedPackage):] {
		if b != 0 {
			t.Errorf("EncryptedPackage padding byte = %d, want 0", b)
			break
		}
	}
	if len(gotPkg) < 4104 {
		t.Errorf("EncryptedPackage stream length %d < minimum 4104", len(gotPkg))
	}
}

func TestWriteEncryptedContainerSmallPayload(t *testing.T) {
	// EncryptionInfo small enough for the mini stream and an EncryptedPackage
	// far below the 4104-byte minimum it is padded to, with every FAT sector
	// listed in the header's DIFAT, exercising the opposite end of the size
	// range from the multi-sector test above.
	encryptionInfo := []byte("tiny-info")
	encryptedPackage := []byte("tiny-package")

	out, err := cfb.WriteEncryptedContainer(encryptionInfo, encryptedPackage)
	if err != nil {
		t.Fatalf("WriteEncryptedContainer: %v", err)
	}
	r, err := cfb.Open(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	gotInfo, err := r.EncryptionInfo()
	if err != nil {
		t.Fatalf("EncryptionInfo: %v", err)
	}
	if !bytes.Equal(gotInfo, encryptionInfo) {
		t.Errorf("EncryptionInfo mismatch: got %q, want %q", gotInfo, encryptionInfo)
	}
	gotPkg, err := r.EncryptedPackage()
	if err != nil {
		t.Fatalf("EncryptedPackage: %v", err)
	}
	if !bytes.Equal(gotPkg[:len(encryptedPackage)], encryptedPackage) {
		t.Errorf("EncryptedPackage prefix mismatch: got %q, want %q", gotPkg[:len(encryptedPackage)], encryptedPackage)
	}
}

func TestReaderStreamMissing(t *testing.T) {
	out, err := cfb.WriteEncryptedContainer([]byte("a"), []byte("b"))
	if err != nil {
		t.Fatalf("WriteEncryptedContainer: %v", err)
	}
	r, err := cfb.Open(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := r.Stream("does-not-exist"); ok {
		t.Errorf("Stream(%q) found, want absent", "does-not-exist")
	}
}
