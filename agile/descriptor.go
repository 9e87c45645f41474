package agile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/beingidly/litexl/internal/xmlcodec"
)

const (
	encryptionNS = "http://schemas.microsoft.com/office/2006/encryption"
	passwordNS   = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
	passwordURI  = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
)

// Descriptor is the parsed content of the <encryption> XML document that
// follows the 8-byte header in the EncryptionInfo stream, per spec.md
// §4.10 and §6.
type Descriptor struct {
	KeyBits                    int
	DataSalt                   []byte
	SpinCount                  int
	KeySalt                    []byte
	EncryptedVerifierHashInput []byte
	EncryptedVerifierHashValue []byte
	EncryptedKeyValue          []byte
}

// EncodeDescriptor renders the <encryption> XML document.
func EncodeDescriptor(d Descriptor) []byte {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("encryption",
		xmlcodec.Attr{Name: "xmlns", Value: encryptionNS},
		xmlcodec.Attr{Name: "xmlns:p", Value: passwordNS},
	)
	w.EmptyElement("keyData",
		xmlcodec.Attr{Name: "saltSize", Value: "16"},
		xmlcodec.Attr{Name: "blockSize", Value: "16"},
		xmlcodec.Attr{Name: "keyBits", Value: strconv.Itoa(d.KeyBits)},
		xmlcodec.Attr{Name: "hashSize", Value: "64"},
		xmlcodec.Attr{Name: "cipherAlgorithm", Value: "AES"},
		xmlcodec.Attr{Name: "cipherChaining", Value: "ChainingModeCBC"},
		xmlcodec.Attr{Name: "hashAlgorithm", Value: "SHA512"},
		xmlcodec.Attr{Name: "saltValue", Value: b64(d.DataSalt)},
	)
	w.StartElement("keyEncryptors")
	w.StartElement("keyEncryptor", xmlcodec.Attr{Name: "uri", Value: passwordURI})
	w.EmptyElement("p:encryptedKey",
		xmlcodec.Attr{Name: "spinCount", Value: strconv.Itoa(d.SpinCount)},
		xmlcodec.Attr{Name: "saltSize", Value: "16"},
		xmlcodec.Attr{Name: "blockSize", Value: "16"},
		xmlcodec.Attr{Name: "keyBits", Value: strconv.Itoa(d.KeyBits)},
		xmlcodec.Attr{Name: "hashSize", Value: "64"},
		xmlcodec.Attr{Name: "cipherAlgorithm", Value: "AES"},
		xmlcodec.Attr{Name: "cipherChaining", Value: "ChainingModeCBC"},
		xmlcodec.Attr{Name: "hashAlgorithm", Value: "SHA512"},
		xmlcodec.Attr{Name: "saltValue", Value: b64(d.KeySalt)},
		xmlcodec.Attr{Name: "encryptedVerifierHashInput", Value: b64(d.EncryptedVerifierHashInput)},
		xmlcodec.Attr{Name: "encryptedVerifierHashValue", Value: b64(d.EncryptedVerifierHashValue)},
		xmlcodec.Attr{Name: "encryptedKeyValue", Value: b64(d.EncryptedKeyValue)},
	)
	w.EndElement("keyEncryptor")
	w.EndElement("keyEncryptors")
	w.EndElement("encryption")
	return buf.Bytes()
}

// DecodeDescriptor parses an <encryption> XML document back into a
// Descriptor.
func DecodeDescriptor(data []byte) (Descriptor, error) {
	r := xmlcodec.NewReader(bytes.NewReader(data), "EncryptionInfo")
	var d Descriptor
	for {
		ev, err := r.Next()
		if err != nil {
			return Descriptor{}, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			break
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		switch ev.Name {
		case "keyData":
			d.KeyBits = atoiOr(ev, "keyBits", 0)
			d.DataSalt = unb64(attrVal(ev, "saltValue"))
		case "encryptedKey":
			d.SpinCount = atoiOr(ev, "spinCount", 0)
			if d.KeyBits == 0 {
				d.KeyBits = atoiOr(ev, "keyBits", 0)
			}
			d.KeySalt = unb64(attrVal(ev, "saltValue"))
			d.EncryptedVerifierHashInput = unb64(attrVal(ev, "encryptedVerifierHashInput"))
			d.EncryptedVerifierHashValue = unb64(attrVal(ev, "encryptedVerifierHashValue"))
			d.EncryptedKeyValue = unb64(attrVal(ev, "encryptedKeyValue"))
		}
	}
	if d.KeyBits == 0 {
		return Descriptor{}, fmt.Errorf("agile: missing keyBits in EncryptionInfo descriptor")
	}
	return d, nil
}

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func unb64(s string) []byte {
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}

func attrVal(ev xmlcodec.Event, name string) string {
	v, _ := ev.Attr(name)
	return v
}

func atoiOr(ev xmlcodec.Event, name string, def int) int {
	v, ok := ev.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
