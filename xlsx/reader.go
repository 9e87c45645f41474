package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/beingidly/litexl/agile"
	"github.com/beingidly/litexl/cfb"
	"github.com/beingidly/litexl/internal/zipcodec"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/sharedstringsxml"
	"github.com/beingidly/litexl/sheetxml"
	"github.com/beingidly/litexl/stylesxml"
	"github.com/beingidly/litexl/workbookxml"
	"github.com/beingidly/litexl/xlerr"
)

// readPackage reconstructs a Workbook from a decompressed, plaintext ZIP
// package, replaying workbook.xml's sheet order and injecting the decoded
// style table and shared-strings table ahead of each sheet body decode
// (sheetxml.Decode resolves t="s" cells against shared strings, and
// date-vs-number ambiguity on untyped numeric cells against styles, as it
// walks).
func readPackage(data []byte) (*model.Workbook, error) {
	zr, err := zipcodec.NewReader(data)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.readPackage", "", err)
	}

	workbookXML, err := zr.ReadAll("xl/workbook.xml")
	if err != nil {
		return nil, xlerr.Wrap("xlsx.readPackage", "xl/workbook.xml", err)
	}
	relsXML, err := zr.ReadAll("xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, xlerr.Wrap("xlsx.readPackage", "xl/_rels/workbook.xml.rels", err)
	}
	refs, err := workbookxml.DecodeWorkbookRefs(workbookXML, relsXML)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.readPackage", "xl/workbook.xml", err)
	}

	wb := model.Create()

	if zr.HasEntry("xl/styles.xml") {
		stylesData, err := zr.ReadAll("xl/styles.xml")
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", "xl/styles.xml", err)
		}
		styles, err := stylesxml.Decode(stylesData)
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", "xl/styles.xml", err)
		}
		wb.ReplaceStyles(styles)
	}

	shared := model.NewSharedStrings()
	if zr.HasEntry("xl/sharedStrings.xml") {
		sstData, err := zr.ReadAll("xl/sharedStrings.xml")
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", "xl/sharedStrings.xml", err)
		}
		shared, err = sharedstringsxml.Decode(sstData)
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", "xl/sharedStrings.xml", err)
		}
	}
	wb.ReplaceSharedStrings(shared)

	for _, ref := range refs {
		sh, err := wb.AddSheet(ref.Name)
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", ref.Part, err)
		}
		body, err := zr.ReadAll(ref.Part)
		if err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", ref.Part, err)
		}
		if err := sheetxml.Decode(body, sh, wb); err != nil {
			return nil, xlerr.Wrap("xlsx.readPackage", ref.Part, err)
		}
	}

	return wb, nil
}

// Read parses a package from r. password is ignored for a plain ZIP; for an
// Agile/CFB container it decrypts the wrapped package before parsing it.
// The container kind is detected from the leading bytes (cfb.IsCFB), per
// spec.md §4.9's "reader sniffs the magic number" rule.
func Read(r io.Reader, password string) (*model.Workbook, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Read", "", fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}

	if !cfb.IsCFB(raw) {
		return readPackage(raw)
	}

	container, err := cfb.Open(bytes.NewReader(raw))
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Read", "", err)
	}
	encryptionInfo, err := container.EncryptionInfo()
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Read", "", err)
	}
	encryptedPackage, err := container.EncryptedPackage()
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Read", "", err)
	}
	plain, err := agile.Decrypt(encryptionInfo, encryptedPackage, password)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Read", "", err)
	}
	return readPackage(plain)
}

// Open opens the package at path with no password. If the file is
// Agile-encrypted, the empty password fails the verifier check and Open
// returns xlerr.ErrInvalidPassword; callers expecting encryption should use
// OpenWithPassword instead.
func Open(path string) (*model.Workbook, error) {
	return OpenWithPassword(path, "")
}

// OpenWithPassword opens the package at path, decrypting it with password
// if it is an Agile/CFB container.
func OpenWithPassword(path, password string) (*model.Workbook, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, xlerr.Wrap("xlsx.Open", path, xlerr.ErrFileNotFound)
	}
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Open", path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	defer f.Close()
	wb, err := Read(f, password)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.Open", path, err)
	}
	return wb, nil
}
