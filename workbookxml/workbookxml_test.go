package workbookxml_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/workbookxml"
)

func TestEncodeDecodeWorkbookRefsRoundTrip(t *testing.T) {
	wb := model.Create()
	if _, err := wb.AddSheet("Sheet1"); err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	if _, err := wb.AddSheet("Data"); err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	workbookXML, err := workbookxml.EncodeWorkbook(wb)
	if err != nil {
		t.Fatalf("EncodeWorkbook: %v", err)
	}
	relsXML, err := workbookxml.EncodeWorkbookRels(len(wb.Sheets()))
	if err != nil {
		t.Fatalf("EncodeWorkbookRels: %v", err)
	}

	refs, err := workbookxml.DecodeWorkbookRefs(workbookXML, relsXML)
	if err != nil {
		t.Fatalf("DecodeWorkbookRefs: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("DecodeWorkbookRefs returned %d refs, want 2", len(refs))
	}
	if refs[0].Name != "Sheet1" || refs[0].Part != "xl/worksheets/sheet1.xml" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Name != "Data" || refs[1].Part != "xl/worksheets/sheet2.xml" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func TestEncodePackageRels(t *testing.T) {
	data, err := workbookxml.EncodePackageRels()
	if err != nil {
		t.Fatalf("EncodePackageRels: %v", err)
	}
	if !strings.Contains(string(data), `Target="xl/workbook.xml"`) {
		t.Errorf("package rels missing workbook target: %s", data)
	}
}

func TestEncodeContentTypesListsEverySheet(t *testing.T) {
	data, err := workbookxml.EncodeContentTypes(3)
	if err != nil {
		t.Fatalf("EncodeContentTypes: %v", err)
	}
	s := string(data)
	for i := 1; i <= 3; i++ {
		want := "/xl/worksheets/sheet" + strconv.Itoa(i) + ".xml"
		if !strings.Contains(s, want) {
			t.Errorf("content types missing override for %s", want)
		}
	}
	if !strings.Contains(s, "/xl/sharedStrings.xml") || !strings.Contains(s, "/xl/styles.xml") {
		t.Errorf("content types missing sharedStrings or styles override: %s", s)
	}
}

func TestDecodeWorkbookRefsSkipsUnresolvedSheet(t *testing.T) {
	workbookXML := []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<sheets>` +
		`<sheet name="Good" sheetId="1" r:id="rId1"/>` +
		`<sheet name="Dangling" sheetId="2" r:id="rId2"/>` +
		`</sheets></workbook>`)
	relsXML := []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`)

	refs, err := workbookxml.DecodeWorkbookRefs(workbookXML, relsXML)
	if err != nil {
		t.Fatalf("DecodeWorkbookRefs: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "Good" {
		t.Errorf("DecodeWorkbookRefs = %+v, want only the resolvable sheet", refs)
	}
}

