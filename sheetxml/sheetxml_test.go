package sheetxml_test

import (
	"testing"
	"time"

	"github.com/beingidly/litexl/cellref"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/sheetxml"
)

func buildSheet(t *testing.T) (*model.Workbook, *model.Sheet) {
	t.Helper()
	wb := model.Create()
	sh, err := wb.AddSheet("Sheet1")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	return wb, sh
}

// readerWorkbook builds the destination workbook a Decode call resolves
// against, carrying over wb's (possibly Encode-mutated, e.g. by an
// appended date style) shared-strings and style tables exactly as
// xlsx.readPackage does ahead of each sheet body decode.
func readerWorkbook(wb *model.Workbook) *model.Workbook {
	wb2 := model.Create()
	wb2.ReplaceSharedStrings(wb.SharedStrings())
	wb2.ReplaceStyles(wb.Styles())
	return wb2
}

func TestEncodeDecodeCellKindsRoundTrip(t *testing.T) {
	wb, sh := buildSheet(t)

	row0, _ := sh.Row(0)
	c0, _ := row0.Cell(0)
	c0.Value = model.TextValue("hello")
	c1, _ := row0.Cell(1)
	c1.Value = model.NumberValue(3.5)
	c2, _ := row0.Cell(2)
	c2.Value = model.BoolValue(true)
	c3, _ := row0.Cell(3)
	c3.Value = model.ErrorValue("#DIV/0!")
	cached := model.NumberValue(7)
	c4, _ := row0.Cell(4)
	c4.Value = model.FormulaValue("SUM(A1:B1)", &cached)
	c5, _ := row0.Cell(5)
	c5.Value = model.DateValue(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	data, err := sheetxml.Encode(sh, wb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wb2 := readerWorkbook(wb)
	sh2, _ := wb2.AddSheet("Sheet1")
	if err := sheetxml.Decode(data, sh2, wb2); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	row, ok := sh2.GetRow(0)
	if !ok {
		t.Fatalf("row 0 missing after decode")
	}
	cells := row.Cells()
	if len(cells) != 6 {
		t.Fatalf("decoded %d cells, want 6", len(cells))
	}
	if cells[0].Value.AsText() != "hello" {
		t.Errorf("cell 0 = %q, want %q", cells[0].Value.AsText(), "hello")
	}
	if cells[1].Value.AsNumber() != 3.5 {
		t.Errorf("cell 1 = %v, want 3.5", cells[1].Value.AsNumber())
	}
	if !cells[2].Value.AsBool() {
		t.Errorf("cell 2 = false, want true")
	}
	if cells[3].Value.AsError() != "#DIV/0!" {
		t.Errorf("cell 3 = %q, want %q", cells[3].Value.AsError(), "#DIV/0!")
	}
	if cells[4].Value.Kind != model.KindFormula || cells[4].Value.Formula != "SUM(A1:B1)" {
		t.Errorf("cell 4 = %+v, want formula SUM(A1:B1)", cells[4].Value)
	}
	if cells[4].Value.CachedValue().AsNumber() != 7 {
		t.Errorf("cell 4 cached value = %v, want 7", cells[4].Value.CachedValue().AsNumber())
	}
	wantDate := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if !cells[5].Value.AsDate().Equal(wantDate) {
		t.Errorf("cell 5 = %v, want %v", cells[5].Value.AsDate(), wantDate)
	}
}

func TestEncodeInternsTextIntoSharedStrings(t *testing.T) {
	wb, sh := buildSheet(t)
	row, _ := sh.Row(0)
	cell, _ := row.Cell(0)
	cell.Value = model.TextValue("interned")

	if _, err := sheetxml.Encode(sh, wb); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	v, ok := wb.SharedStrings().At(0)
	if !ok || v != "interned" {
		t.Errorf("Encode did not intern text cell into shared strings: %q, %v", v, ok)
	}
}

func TestEncodeDecodeRowAndColumnAttributes(t *testing.T) {
	wb, sh := buildSheet(t)
	row, _ := sh.Row(2)
	row.Height = 30
	row.CustomHeight = true
	row.Hidden = true
	if err := sh.SetColumnWidth(1, 25.5); err != nil {
		t.Fatalf("SetColumnWidth: %v", err)
	}

	data, err := sheetxml.Encode(sh, wb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wb2 := readerWorkbook(wb)
	sh2, _ := wb2.AddSheet("Sheet1")
	if err := sheetxml.Decode(data, sh2, wb2); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got, ok := sh2.GetRow(2)
	if !ok {
		t.Fatalf("row 2 missing after decode")
	}
	if got.Height != 30 || !got.CustomHeight || !got.Hidden {
		t.Errorf("row attributes = %+v, want height=30 customHeight=true hidden=true", got)
	}
	cf, ok := sh2.Format.Columns[1]
	if !ok || cf.Width != 25.5 {
		t.Errorf("column 1 format = %+v, want width 25.5", cf)
	}
}

func TestEncodeDecodeMergesAndAutoFilter(t *testing.T) {
	wb, sh := buildSheet(t)
	rng, err := cellref.NewRange(0, 0, 1, 1)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	sh.Merge(rng)
	filter, err := cellref.NewRange(0, 0, 5, 3)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	sh.SetAutoFilter(&filter)

	data, err := sheetxml.Encode(sh, wb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wb2 := readerWorkbook(wb)
	sh2, _ := wb2.AddSheet("Sheet1")
	if err := sheetxml.Decode(data, sh2, wb2); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sh2.Format.Merges) != 1 || sh2.Format.Merges[0].ToRef() != rng.ToRef() {
		t.Errorf("merges = %+v, want [%s]", sh2.Format.Merges, rng.ToRef())
	}
	if sh2.Format.AutoFilter == nil || sh2.Format.AutoFilter.ToRef() != filter.ToRef() {
		t.Errorf("autoFilter = %v, want %s", sh2.Format.AutoFilter, filter.ToRef())
	}
}

func TestEncodeDecodeSheetProtection(t *testing.T) {
	wb, sh := buildSheet(t)
	sh.Protect = model.Protection{
		Enabled:      true,
		PasswordHash: "deadbeef",
		Algorithm:    "SHA-512",
		SaltValue:    "c2FsdA==",
		SpinCount:    100000,
	}

	data, err := sheetxml.Encode(sh, wb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wb2 := readerWorkbook(wb)
	sh2, _ := wb2.AddSheet("Sheet1")
	if err := sheetxml.Decode(data, sh2, wb2); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !sh2.Protect.Enabled || sh2.Protect.PasswordHash != "deadbeef" || sh2.Protect.SpinCount != 100000 {
		t.Errorf("protection = %+v, want enabled hashValue=deadbeef spinCount=100000", sh2.Protect)
	}
}

func TestDecodeConditionalFormattingAndDataValidationsPassThrough(t *testing.T) {
	wb, sh := buildSheet(t)
	sh.Format.ConditionalFormats = append(sh.Format.ConditionalFormats, model.RawXML{
		LocalName: "conditionalFormatting",
		Body:      `<cfRule type="cellIs" dxfId="0" priority="1" operator="greaterThan"><formula>5</formula></cfRule>`,
	})
	sh.Format.DataValidations = append(sh.Format.DataValidations, model.RawXML{
		LocalName: "dataValidation",
		Body:      `<dataValidation type="whole" operator="greaterThan" sqref="A1"><formula1>10</formula1></dataValidation>`,
	})

	data, err := sheetxml.Encode(sh, wb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wb2 := readerWorkbook(wb)
	sh2, _ := wb2.AddSheet("Sheet1")
	if err := sheetxml.Decode(data, sh2, wb2); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sh2.Format.ConditionalFormats) != 1 {
		t.Fatalf("conditional formats = %d, want 1", len(sh2.Format.ConditionalFormats))
	}
	if len(sh2.Format.DataValidations) != 1 {
		t.Fatalf("data validations = %d, want 1", len(sh2.Format.DataValidations))
	}
}
