// Package workbookxml encodes and decodes xl/workbook.xml,
// xl/_rels/workbook.xml.rels, and [Content_Types].xml — the three parts
// that tie a list of worksheet XML parts together into one package, per
// spec.md §4.8.
//
// Grounded on the teacher's writer.go, which hand-builds the equivalent
// three parts with archive/zip + encoding/xml for a single fixed sheet;
// generalized here to N sheets, and to the reader side the teacher never
// implements (cross-checked against adnsv-go-xl/xl/workbook.go's
// name/rId/sheetId bookkeeping).
package workbookxml

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
)

const (
	mainNS  = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	relNS   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	pkgRelNS = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// EncodeWorkbook renders xl/workbook.xml, listing each sheet with its name,
// a 1-based sheetId, and a relationship id rId{index+1}.
func EncodeWorkbook(wb *model.Workbook) ([]byte, error) {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("workbook",
		xmlcodec.Attr{Name: "xmlns", Value: mainNS},
		xmlcodec.Attr{Name: "xmlns:r", Value: relNS},
	)
	w.StartElement("sheets")
	for _, sh := range wb.Sheets() {
		i := sh.Index()
		w.EmptyElement("sheet",
			xmlcodec.Attr{Name: "name", Value: sh.Name},
			xmlcodec.Attr{Name: "sheetId", Value: strconv.Itoa(i + 1)},
			xmlcodec.Attr{Name: "r:id", Value: rID(i)},
		)
	}
	w.EndElement("sheets")
	w.EndElement("workbook")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("workbookxml.EncodeWorkbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rID(sheetIndex int) string { return fmt.Sprintf("rId%d", sheetIndex+1) }

// EncodeWorkbookRels renders xl/_rels/workbook.xml.rels, pairing each
// sheet's rId with its worksheet part target.
func EncodeWorkbookRels(sheetCount int) ([]byte, error) {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("Relationships", xmlcodec.Attr{Name: "xmlns", Value: pkgRelNS})
	for i := 0; i < sheetCount; i++ {
		w.EmptyElement("Relationship",
			xmlcodec.Attr{Name: "Id", Value: rID(i)},
			xmlcodec.Attr{Name: "Type", Value: relNS + "/worksheet"},
			xmlcodec.Attr{Name: "Target", Value: fmt.Sprintf("worksheets/sheet%d.xml", i+1)},
		)
	}
	w.EndElement("Relationships")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("workbookxml.EncodeWorkbookRels: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePackageRels renders _rels/.rels, the package-level relationship
// pointing at the workbook part.
func EncodePackageRels() ([]byte, error) {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("Relationships", xmlcodec.Attr{Name: "xmlns", Value: pkgRelNS})
	w.EmptyElement("Relationship",
		xmlcodec.Attr{Name: "Id", Value: "rId1"},
		xmlcodec.Attr{Name: "Type", Value: relNS + "/officeDocument"},
		xmlcodec.Attr{Name: "Target", Value: "xl/workbook.xml"},
	)
	w.EndElement("Relationships")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("workbookxml.EncodePackageRels: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeContentTypes renders [Content_Types].xml, enumerating the core
// default extensions plus an override for every required part.
func EncodeContentTypes(sheetCount int) ([]byte, error) {
	const ctNS = "http://schemas.openxmlformats.org/package/2006/content-types"
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("Types", xmlcodec.Attr{Name: "xmlns", Value: ctNS})
	w.EmptyElement("Default",
		xmlcodec.Attr{Name: "Extension", Value: "rels"},
		xmlcodec.Attr{Name: "ContentType", Value: "application/vnd.openxmlformats-package.relationships+xml"},
	)
	w.EmptyElement("Default",
		xmlcodec.Attr{Name: "Extension", Value: "xml"},
		xmlcodec.Attr{Name: "ContentType", Value: "application/xml"},
	)
	w.EmptyElement("Override",
		xmlcodec.Attr{Name: "PartName", Value: "/xl/workbook.xml"},
		xmlcodec.Attr{Name: "ContentType", Value: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"},
	)
	w.EmptyElement("Override",
		xmlcodec.Attr{Name: "PartName", Value: "/xl/styles.xml"},
		xmlcodec.Attr{Name: "ContentType", Value: "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"},
	)
	w.EmptyElement("Override",
		xmlcodec.Attr{Name: "PartName", Value: "/xl/sharedStrings.xml"},
		xmlcodec.Attr{Name: "ContentType", Value: "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"},
	)
	for i := 0; i < sheetCount; i++ {
		w.EmptyElement("Override",
			xmlcodec.Attr{Name: "PartName", Value: fmt.Sprintf("/xl/worksheets/sheet%d.xml", i+1)},
			xmlcodec.Attr{Name: "ContentType", Value: "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"},
		)
	}
	w.EndElement("Types")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("workbookxml.EncodeContentTypes: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetRef is one resolved <sheet> entry from workbook.xml: its declared
// name and the worksheet part path its relationship id resolves to.
type SheetRef struct {
	Name string
	Part string // e.g. "xl/worksheets/sheet1.xml"
}

// DecodeWorkbookRefs resolves workbook.xml's <sheet> list against
// workbook.xml.rels's relationship map, in document order. Per spec.md
// §4.8, a <sheet> with no name or no resolvable relationship is skipped
// silently rather than failing the whole read.
func DecodeWorkbookRefs(workbookXML, relsXML []byte) ([]SheetRef, error) {
	rels, err := decodeRelTargets(relsXML)
	if err != nil {
		return nil, err
	}

	r := xmlcodec.NewReader(bytes.NewReader(workbookXML), "xl/workbook.xml")
	var refs []SheetRef
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			break
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "sheet" {
			continue
		}
		name, hasName := ev.Attr("name")
		rid, hasRid := ev.Attr("id")
		if !hasRid {
			continue
		}
		target, ok := rels[rid]
		if !hasName || name == "" || !ok {
			continue
		}
		refs = append(refs, SheetRef{Name: name, Part: "xl/" + target})
	}
	return refs, nil
}

func decodeRelTargets(relsXML []byte) (map[string]string, error) {
	r := xmlcodec.NewReader(bytes.NewReader(relsXML), "workbook.xml.rels")
	out := map[string]string{}
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return out, nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "Relationship" {
			continue
		}
		id, hasID := ev.Attr("Id")
		target, hasTarget := ev.Attr("Target")
		if hasID && hasTarget {
			out[id] = target
		}
	}
}
