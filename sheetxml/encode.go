// Package sheetxml encodes and decodes one worksheet XML part
// (xl/worksheets/sheetN.xml), per spec.md §4.7.
//
// Grounded on the teacher's pkg/excel/writer.go row/cell emission (which
// hand-writes <row>/<c>/<v> via archive/zip + encoding/xml) generalized to
// the full cell-type/formula/merge/column surface spec.md §4.7 describes,
// cross-checked against adnsv-go-xl/xl/sheet.go's cell-type dispatch for
// the t="s"/"b"/"e"/"str" attribute rules.
package sheetxml

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/beingidly/litexl/cellref"
	"github.com/beingidly/litexl/dateserial"
	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/stylesxml"
)

const mainNS = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"

// defaultDateNumberFormat is the built-in format (id 22, "m/d/yy h:mm")
// ensureDateStyle assigns to a Date cell whose current style carries no
// date-recognizable number format, per spec.md §4.6's built-in id table.
const defaultDateNumberFormat = "m/d/yy h:mm"

// Encode renders one worksheet against wb (its owning workbook, for shared
// strings and styles). Text cells are interned into wb's shared-string
// table as a side effect (spec.md §4.7: "interning into the workbook's
// shared-string table"); Date cells whose resolved style has no
// date-recognizable number format get one appended to wb's style table,
// since a Date cell emitted under a non-date style would read back as a
// bare Number (spec.md §8's round-trip invariant).
func Encode(sheet *model.Sheet, wb *model.Workbook) ([]byte, error) {
	shared := wb.SharedStrings()
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("worksheet", xmlcodec.Attr{Name: "xmlns", Value: mainNS})

	encodeCols(w, sheet)

	w.StartElement("sheetData")
	for _, row := range sheet.Rows() {
		encodeRow(w, row, shared, wb)
	}
	w.EndElement("sheetData")

	encodeMergeCells(w, sheet)
	encodeAutoFilter(w, sheet)
	encodeConditionalFormats(w, sheet)
	encodeDataValidations(w, sheet)
	encodeProtection(w, sheet)

	w.EndElement("worksheet")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("sheetxml.Encode: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeCols(w *xmlcodec.Writer, sheet *model.Sheet) {
	if len(sheet.Format.Columns) == 0 {
		return
	}
	cols := make([]int, 0, len(sheet.Format.Columns))
	for c := range sheet.Format.Columns {
		cols = append(cols, c)
	}
	sortInts(cols)

	w.StartElement("cols")
	for _, c := range cols {
		cf := sheet.Format.Columns[c]
		oneBased := strconv.Itoa(c + 1)
		attrs := []xmlcodec.Attr{
			{Name: "min", Value: oneBased},
			{Name: "max", Value: oneBased},
			{Name: "width", Value: strconv.FormatFloat(cf.Width, 'f', -1, 64)},
			{Name: "customWidth", Value: "1"},
		}
		if cf.Hidden {
			attrs = append(attrs, xmlcodec.Attr{Name: "hidden", Value: "1"})
		}
		w.EmptyElement("col", attrs...)
	}
	w.EndElement("cols")
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func encodeRow(w *xmlcodec.Writer, row *model.Row, shared *model.SharedStrings, wb *model.Workbook) {
	attrs := []xmlcodec.Attr{{Name: "r", Value: strconv.Itoa(row.Number + 1)}}
	if row.CustomHeight && row.Height != model.AutoHeight {
		attrs = append(attrs,
			xmlcodec.Attr{Name: "ht", Value: strconv.FormatFloat(row.Height, 'f', -1, 64)},
			xmlcodec.Attr{Name: "customHeight", Value: "1"},
		)
	}
	if row.Hidden {
		attrs = append(attrs, xmlcodec.Attr{Name: "hidden", Value: "1"})
	}
	w.StartElement("row", attrs...)
	for _, cell := range row.Cells() {
		encodeCell(w, row.Number, cell, shared, wb)
	}
	w.EndElement("row")
}

// ensureDateStyle returns a style index whose resolved style carries a
// date-recognizable number format, appending a copy of idx's style with
// defaultDateNumberFormat set to wb's style table when idx's style doesn't
// already qualify. spec.md §4.7 leaves date-style selection to the caller,
// but the writer supplies the missing signal rather than silently lose a
// Date cell's type on the next read.
func ensureDateStyle(wb *model.Workbook, idx int) int {
	style := wb.Style(idx)
	if stylesxml.IsDateFormatted(style) {
		return idx
	}
	style.NumberFormat = defaultDateNumberFormat
	newIdx, err := wb.AddStyle(style)
	if err != nil {
		return idx
	}
	return newIdx
}

func encodeCell(w *xmlcodec.Writer, rowNum int, cell *model.Cell, shared *model.SharedStrings, wb *model.Workbook) {
	if cell.Value.Kind == model.KindDate {
		cell.StyleIndex = ensureDateStyle(wb, cell.StyleIndex)
	}

	ref, _ := cellref.ToRef(rowNum, cell.Col)
	attrs := []xmlcodec.Attr{{Name: "r", Value: ref}}
	if cell.StyleIndex != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "s", Value: strconv.Itoa(cell.StyleIndex)})
	}

	if cell.Value.Kind == model.KindEmpty {
		if cell.StyleIndex != 0 {
			w.EmptyElement("c", attrs...)
		}
		return
	}

	if cell.Value.Kind == model.KindFormula {
		encodeFormulaCell(w, attrs, cell.Value)
		return
	}

	t, text := scalarValueAttr(cell.Value, shared, false)
	if t != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "t", Value: t})
	}
	w.StartElement("c", attrs...)
	w.StartElement("v")
	w.Characters(text)
	w.EndElement("v")
	w.EndElement("c")
}

func encodeFormulaCell(w *xmlcodec.Writer, attrs []xmlcodec.Attr, v model.CellValue) {
	cached := v.CachedValue()
	if cached.Kind != model.KindEmpty {
		if t, _ := scalarValueAttr(cached, nil, true); t != "" {
			attrs = append(attrs, xmlcodec.Attr{Name: "t", Value: t})
		}
	}
	w.StartElement("c", attrs...)
	w.StartElement("f")
	w.Characters(v.Formula)
	w.EndElement("f")
	if cached.Kind != model.KindEmpty {
		_, text := scalarValueAttr(cached, nil, true)
		w.StartElement("v")
		w.Characters(text)
		w.EndElement("v")
	}
	w.EndElement("c")
}

// scalarValueAttr returns the t attribute (possibly empty, meaning the
// default numeric type) and the <v> text for a non-formula value. asFormula
// selects the "str"/raw-text-cached-result convention spec.md §4.7
// describes instead of the shared-string interning used for ordinary Text
// cells.
func scalarValueAttr(v model.CellValue, shared *model.SharedStrings, asFormula bool) (string, string) {
	switch v.Kind {
	case model.KindText:
		if asFormula {
			return "str", v.Text
		}
		idx := 0
		if shared != nil {
			idx = shared.Add(v.Text)
		}
		return "s", strconv.Itoa(idx)
	case model.KindNumber:
		return "", strconv.FormatFloat(v.Number, 'f', -1, 64)
	case model.KindBool:
		if v.Bool {
			return "b", "1"
		}
		return "b", "0"
	case model.KindDate:
		return "", strconv.FormatFloat(dateserial.ToSerial(v.Date), 'f', -1, 64)
	case model.KindError:
		return "e", v.Error
	default:
		return "", ""
	}
}

func encodeMergeCells(w *xmlcodec.Writer, sheet *model.Sheet) {
	if len(sheet.Format.Merges) == 0 {
		return
	}
	w.StartElement("mergeCells", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(sheet.Format.Merges))})
	for _, rng := range sheet.Format.Merges {
		w.EmptyElement("mergeCell", xmlcodec.Attr{Name: "ref", Value: rng.ToRef()})
	}
	w.EndElement("mergeCells")
}

func encodeAutoFilter(w *xmlcodec.Writer, sheet *model.Sheet) {
	if sheet.Format.AutoFilter == nil {
		return
	}
	w.EmptyElement("autoFilter", xmlcodec.Attr{Name: "ref", Value: sheet.Format.AutoFilter.ToRef()})
}

func encodeConditionalFormats(w *xmlcodec.Writer, sheet *model.Sheet) {
	for _, raw := range sheet.Format.ConditionalFormats {
		encodeRawXML(w, raw)
	}
}

func encodeDataValidations(w *xmlcodec.Writer, sheet *model.Sheet) {
	if len(sheet.Format.DataValidations) == 0 {
		return
	}
	w.StartElement("dataValidations", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(sheet.Format.DataValidations))})
	for _, raw := range sheet.Format.DataValidations {
		w.Raw(raw.Body)
	}
	w.EndElement("dataValidations")
}

func encodeRawXML(w *xmlcodec.Writer, raw model.RawXML) {
	w.StartElement(raw.LocalName)
	w.Raw(raw.Body)
	w.EndElement(raw.LocalName)
}

func encodeProtection(w *xmlcodec.Writer, sheet *model.Sheet) {
	p := sheet.Protect
	if !p.Enabled {
		return
	}
	var attrs []xmlcodec.Attr
	if p.PasswordHash != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "hashValue", Value: p.PasswordHash})
	}
	if p.Algorithm != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "algorithmName", Value: p.Algorithm})
	}
	if p.SaltValue != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "saltValue", Value: p.SaltValue})
	}
	if p.SpinCount != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "spinCount", Value: strconv.Itoa(p.SpinCount)})
	}
	attrs = append(attrs, xmlcodec.Attr{Name: "sheet", Value: "1"})
	w.EmptyElement("sheetProtection", attrs...)
}
