// Package xlsx orchestrates the lower-level codecs (model, stylesxml,
// sheetxml, workbookxml, sharedstringsxml, internal/zipcodec) into whole
// package reads and writes, and — when a password is supplied — wraps or
// unwraps that package inside the Agile/CFB encryption envelope (cfb,
// agile), per spec.md §4.9.
//
// Grounded on the teacher's WriteExcel/ReadExcel (pkg/excel/writer.go,
// pkg/excel/reader.go), which drive archive/zip directly part-by-part in
// exactly the fixed order spec.md §4.9 names; this package generalizes
// that sequence across every part the full object model produces and adds
// the encrypted round-trip the teacher never implements.
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

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

// EncryptionOptions configures the Agile envelope a Save wraps the package
// in, mirroring spec.md §6's EncryptionOptions contract.
type EncryptionOptions struct {
	Algorithm agile.Algorithm
	Password  string
	SpinCount int
}

// defaultSpinCount matches the 100,000-ish range ECMA-376 implementations
// commonly use; callers needing a different cost/security tradeoff set
// EncryptionOptions.SpinCount explicitly.
const defaultSpinCount = 100000

// writePackage serializes wb's full object graph into one plain (unencrypted)
// ZIP buffer, in the fixed part order spec.md §4.9 prescribes.
func writePackage(wb *model.Workbook) ([]byte, error) {
	sheets := wb.Sheets()

	contentTypes, err := workbookxml.EncodeContentTypes(len(sheets))
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "[Content_Types].xml", err)
	}
	pkgRels, err := workbookxml.EncodePackageRels()
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "_rels/.rels", err)
	}
	workbookXML, err := workbookxml.EncodeWorkbook(wb)
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "xl/workbook.xml", err)
	}
	workbookRels, err := workbookxml.EncodeWorkbookRels(len(sheets))
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "xl/_rels/workbook.xml.rels", err)
	}

	// Sheet bodies are rendered before sharedStrings.xml and styles.xml
	// since encoding a sheet interns its text cells into the shared table
	// and, for Date cells whose assigned style isn't already
	// date-formatted, appends a date-formatted style to the workbook's
	// style table (both spec.md §4.7 side effects); sharedStrings.xml and
	// styles.xml must reflect every intern/append.
	sheetBodies := make([][]byte, len(sheets))
	for i, sh := range sheets {
		body, err := sheetxml.Encode(sh, wb)
		if err != nil {
			return nil, xlerr.Wrap("xlsx.writePackage", fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), err)
		}
		sheetBodies[i] = body
	}
	sharedStringsXML, err := sharedstringsxml.Encode(wb.SharedStrings())
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "xl/sharedStrings.xml", err)
	}
	stylesXML, err := stylesxml.Encode(wb.Styles())
	if err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "xl/styles.xml", err)
	}

	var buf bytes.Buffer
	zw := zipcodec.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", pkgRels},
		{"xl/workbook.xml", workbookXML},
		{"xl/_rels/workbook.xml.rels", workbookRels},
		{"xl/styles.xml", stylesXML},
		{"xl/sharedStrings.xml", sharedStringsXML},
	}
	for _, p := range parts {
		if err := zw.WriteEntry(p.name, p.data); err != nil {
			return nil, xlerr.Wrap("xlsx.writePackage", p.name, err)
		}
	}
	for i, body := range sheetBodies {
		name := fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		if err := zw.WriteEntry(name, body); err != nil {
			return nil, xlerr.Wrap("xlsx.writePackage", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, xlerr.Wrap("xlsx.writePackage", "", err)
	}
	return buf.Bytes(), nil
}

// SaveTo writes wb to dst: a plain ZIP if opts is nil, or an Agile-encrypted
// CFB container if opts is supplied.
func SaveTo(wb *model.Workbook, dst io.Writer, opts *EncryptionOptions) error {
	if wb.Closed() {
		return xlerr.ErrClosed
	}
	plain, err := writePackage(wb)
	if err != nil {
		return err
	}
	if opts == nil {
		_, err := dst.Write(plain)
		if err != nil {
			return xlerr.Wrap("xlsx.SaveTo", "", fmt.Errorf("%w: %v", xlerr.ErrIO, err))
		}
		return nil
	}

	spinCount := opts.SpinCount
	if spinCount <= 0 {
		spinCount = defaultSpinCount
	}
	encryptionInfo, encryptedPackage, err := agile.Encrypt(plain, agile.Options{
		Algorithm: opts.Algorithm,
		Password:  opts.Password,
		SpinCount: spinCount,
	})
	if err != nil {
		return xlerr.Wrap("xlsx.SaveTo", "", err)
	}
	container, err := cfb.WriteEncryptedContainer(encryptionInfo, encryptedPackage)
	if err != nil {
		return xlerr.Wrap("xlsx.SaveTo", "", err)
	}
	if _, err := dst.Write(container); err != nil {
		return xlerr.Wrap("xlsx.SaveTo", "", fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return nil
}

// Save writes wb to path. Per DESIGN.md's resolution of spec.md §9's
// open question, the write is atomic: the package is built into a
// temporary file in the same directory and renamed over path only once
// fully written, so a failed or interrupted save never truncates an
// existing file at path.
func Save(wb *model.Workbook, path string, opts *EncryptionOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".litexl-save-*")
	if err != nil {
		return xlerr.Wrap("xlsx.Save", path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	tmpPath := tmp.Name()
	succeeded := false
	defer func() {
		tmp.Close()
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	if err := SaveTo(wb, tmp, opts); err != nil {
		return xlerr.Wrap("xlsx.Save", path, err)
	}
	if err := tmp.Close(); err != nil {
		return xlerr.Wrap("xlsx.Save", path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return xlerr.Wrap("xlsx.Save", path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	succeeded = true
	return nil
}
