package xlsx_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/beingidly/litexl/agile"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/xlerr"
	"github.com/beingidly/litexl/xlsx"
)

func buildWorkbook(t *testing.T) *model.Workbook {
	t.Helper()
	wb := model.Create()
	sh, err := wb.AddSheet("Sheet1")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	row, _ := sh.Row(0)
	c0, _ := row.Cell(0)
	c0.Value = model.TextValue("hello")
	c1, _ := row.Cell(1)
	c1.Value = model.NumberValue(42)
	c2, _ := row.Cell(2)
	c2.Value = model.DateValue(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	return wb
}

func TestSaveOpenRoundTripPlain(t *testing.T) {
	wb := buildWorkbook(t)
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	if err := xlsx.Save(wb, path, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := xlsx.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sh := got.SheetByIndex(0)
	if sh == nil || sh.Name != "Sheet1" {
		t.Fatalf("sheet not round-tripped: %+v", sh)
	}
	row, ok := sh.GetRow(0)
	if !ok {
		t.Fatalf("row 0 missing")
	}
	cells := row.Cells()
	if len(cells) != 3 || cells[0].Value.AsText() != "hello" || cells[1].Value.AsNumber() != 42 {
		t.Errorf("cells = %+v, want [hello, 42, date]", cells)
	}
	wantDate := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if cells[2].Value.Kind != model.KindDate || !cells[2].Value.AsDate().Equal(wantDate) {
		t.Errorf("cell 2 = %+v, want date %v", cells[2].Value, wantDate)
	}
}

func TestSaveOpenRoundTripEncryptedAES256(t *testing.T) {
	wb := buildWorkbook(t)
	path := filepath.Join(t.TempDir(), "secret.xlsx")
	opts := &xlsx.EncryptionOptions{
		Algorithm: agile.AES256,
		Password:  "correct horse battery staple",
		SpinCount: 1000,
	}
	if err := xlsx.Save(wb, path, opts); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := xlsx.Open(path); err == nil {
		t.Errorf("Open without password succeeded, want failure")
	}

	got, err := xlsx.OpenWithPassword(path, "correct horse battery staple")
	if err != nil {
		t.Fatalf("OpenWithPassword: %v", err)
	}
	sh := got.SheetByIndex(0)
	row, ok := sh.GetRow(0)
	if !ok {
		t.Fatalf("row 0 missing")
	}
	cells := row.Cells()
	if len(cells) != 3 || cells[0].Value.AsText() != "hello" {
		t.Errorf("cells = %+v, want text cell 'hello'", cells)
	}
}

func TestOpenWithWrongPasswordFails(t *testing.T) {
	wb := buildWorkbook(t)
	path := filepath.Join(t.TempDir(), "secret.xlsx")
	opts := &xlsx.EncryptionOptions{
		Algorithm: agile.AES128,
		Password:  "right-password",
		SpinCount: 100,
	}
	if err := xlsx.Save(wb, path, opts); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := xlsx.OpenWithPassword(path, "wrong-password"); !errors.Is(err, xlerr.ErrInvalidPassword) {
		t.Errorf("OpenWithPassword(wrong) error = %v, want ErrInvalidPassword", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.xlsx")
	if _, err := xlsx.Open(path); !errors.Is(err, xlerr.ErrFileNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrFileNotFound", err)
	}
}

func TestSaveClosedWorkbookFails(t *testing.T) {
	wb := buildWorkbook(t)
	wb.Close()
	path := filepath.Join(t.TempDir(), "closed.xlsx")
	if err := xlsx.Save(wb, path, nil); !errors.Is(err, xlerr.ErrClosed) {
		t.Errorf("Save(closed workbook) error = %v, want ErrClosed", err)
	}
}
