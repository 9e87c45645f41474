package sheetxml

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/beingidly/litexl/cellref"
	"github.com/beingidly/litexl/dateserial"
	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/stylesxml"
)

// Decode parses one worksheet XML part into sheet (already created by the
// caller via Workbook.AddSheet, so its name/index are already fixed), per
// the pull-event state machine spec.md §4.7 specifies. wb supplies the
// already-decoded shared-strings table (for t="s" cells) and style table
// (to disambiguate an untyped numeric cell's style-carried Date-vs-Number
// signal, per spec.md §9's open question).
func Decode(data []byte, sheet *model.Sheet, wb *model.Workbook) error {
	r := xmlcodec.NewReader(bytes.NewReader(data), "sheet.xml")
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		switch ev.Name {
		case "cols":
			if err := decodeCols(r, sheet); err != nil {
				return err
			}
		case "sheetData":
			if err := decodeSheetData(r, sheet, wb); err != nil {
				return err
			}
		case "mergeCells":
			if err := decodeMergeCells(r, sheet); err != nil {
				return err
			}
		case "autoFilter":
			if ref, ok := ev.Attr("ref"); ok {
				if rng, err := cellref.ParseRange(ref); err == nil {
					sheet.SetAutoFilter(&rng)
				}
			}
			if err := skipElement(r); err != nil {
				return err
			}
		case "conditionalFormatting":
			body, err := captureInner(r)
			if err != nil {
				return err
			}
			sheet.Format.ConditionalFormats = append(sheet.Format.ConditionalFormats,
				model.RawXML{LocalName: "conditionalFormatting", Body: body})
		case "dataValidations":
			if err := decodeDataValidations(r, sheet); err != nil {
				return err
			}
		case "sheetProtection":
			applyProtection(ev, sheet)
			if err := skipElement(r); err != nil {
				return err
			}
		default:
			if err := skipElement(r); err != nil {
				return err
			}
		}
	}
}

// skipElement drains events until the end of the element whose start was
// just consumed by the caller.
func skipElement(r *xmlcodec.Reader) error {
	depth := 0
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		switch ev.Kind {
		case xmlcodec.EventStartElement:
			depth++
		case xmlcodec.EventEndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func decodeCols(r *xmlcodec.Reader, sheet *model.Sheet) error {
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "cols" {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "col" {
			continue
		}
		minC, _ := strconv.Atoi(attrOrEmpty(ev, "min"))
		maxC, _ := strconv.Atoi(attrOrEmpty(ev, "max"))
		width, _ := strconv.ParseFloat(attrOrEmpty(ev, "width"), 64)
		hidden := attrOrEmpty(ev, "hidden") == "1"
		for c := minC - 1; c <= maxC-1; c++ {
			if c < 0 || c > model.MaxCol {
				continue
			}
			sheet.Format.Columns[c] = &model.ColumnFormat{Width: width, Hidden: hidden}
		}
	}
}

func decodeSheetData(r *xmlcodec.Reader, sheet *model.Sheet, wb *model.Workbook) error {
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "sheetData" {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "row" {
			continue
		}
		rowNum, _ := strconv.Atoi(attrOrEmpty(ev, "r"))
		row, err := sheet.Row(rowNum - 1)
		if err != nil {
			return err
		}
		if ht := attrOrEmpty(ev, "ht"); ht != "" {
			if v, err := strconv.ParseFloat(ht, 64); err == nil {
				row.Height = v
			}
		}
		row.CustomHeight = attrOrEmpty(ev, "customHeight") == "1"
		row.Hidden = attrOrEmpty(ev, "hidden") == "1"
		if err := decodeRowCells(r, row, wb); err != nil {
			return err
		}
	}
}

func decodeRowCells(r *xmlcodec.Reader, row *model.Row, wb *model.Workbook) error {
	nextCol := 0
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "row" {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "c" {
			continue
		}
		col := nextCol
		if ref := attrOrEmpty(ev, "r"); ref != "" {
			if _, c, err := cellref.ParseRef(ref); err == nil {
				col = c
			}
		}
		styleIdx, _ := strconv.Atoi(attrOrEmpty(ev, "s"))
		t := attrOrEmpty(ev, "t")
		value, err := decodeCellBody(r, t, wb, styleIdx)
		if err != nil {
			return err
		}
		cell, err := row.Cell(col)
		if err != nil {
			return err
		}
		cell.Value = value
		cell.StyleIndex = styleIdx
		nextCol = col + 1
	}
}

func decodeCellBody(r *xmlcodec.Reader, t string, wb *model.Workbook, styleIdx int) (model.CellValue, error) {
	var vtext, ftext, inlineText string
	var hasV, hasF, hasInline bool

	for {
		ev, err := r.Next()
		if err != nil {
			return model.Empty, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			break
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "c" {
			break
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		switch ev.Name {
		case "v":
			txt, err := r.ElementText()
			if err != nil {
				return model.Empty, err
			}
			vtext, hasV = txt, true
		case "f":
			txt, err := r.ElementText()
			if err != nil {
				return model.Empty, err
			}
			ftext, hasF = txt, true
		case "is":
			txt, err := decodeInlineStr(r)
			if err != nil {
				return model.Empty, err
			}
			inlineText, hasInline = txt, true
		default:
			if err := skipElement(r); err != nil {
				return model.Empty, err
			}
		}
	}

	base := finalizeScalar(t, vtext, hasInline, inlineText, wb, styleIdx)
	if hasF {
		var cached *model.CellValue
		if hasV || hasInline {
			c := base
			cached = &c
		}
		return model.FormulaValue(ftext, cached), nil
	}
	return base, nil
}

func decodeInlineStr(r *xmlcodec.Reader) (string, error) {
	for {
		ev, err := r.Next()
		if err != nil {
			return "", err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return "", nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "is" {
			return "", nil
		}
		if ev.Kind == xmlcodec.EventStartElement && ev.Name == "t" {
			return r.ElementText()
		}
	}
}

// finalizeScalar applies the t-dispatch table spec.md §4.7 gives for
// end_element "c", with inline strings (<is><t>) taking priority per the
// state machine and unrecognized t values falling back to Number
// (best-effort, as the spec directs). A bare (no-t) numeric cell whose
// resolved style (styleIdx, looked up in wb) carries a date-recognizable
// number format reconstructs as Date instead of Number, mirroring the
// writer's own "Date cells emit as number under a date-formatted style"
// convention (spec.md §4.7) and closing spec.md §9's "accept both t="d"
// and the style-carried signal" open question.
func finalizeScalar(t, vtext string, hasInline bool, inlineText string, wb *model.Workbook, styleIdx int) model.CellValue {
	if hasInline {
		return model.TextValue(inlineText)
	}
	switch t {
	case "s":
		idx, err := strconv.Atoi(vtext)
		if err != nil || wb == nil {
			return model.TextValue("")
		}
		s, _ := wb.SharedStrings().At(idx)
		return model.TextValue(s)
	case "str":
		return model.TextValue(vtext)
	case "b":
		return model.BoolValue(vtext == "1")
	case "e":
		return model.ErrorValue(vtext)
	case "d":
		if tm, err := parseISODate(vtext); err == nil {
			return model.DateValue(tm)
		}
		if n, err := strconv.ParseFloat(vtext, 64); err == nil {
			return model.DateValue(dateserial.FromSerial(n))
		}
		return model.Empty
	default:
		if vtext == "" {
			return model.Empty
		}
		n, err := strconv.ParseFloat(vtext, 64)
		if err != nil {
			return model.Empty
		}
		if wb != nil && stylesxml.IsDateFormatted(wb.Style(styleIdx)) {
			return model.DateValue(dateserial.FromSerial(n))
		}
		return model.NumberValue(n)
	}
}

// parseISODate accepts the handful of ISO-8601 layouts a t="d" cell's <v>
// may carry (spec.md §9's open question: accept both serial and ISO string
// forms on read).
func parseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Value: s}
}

func decodeMergeCells(r *xmlcodec.Reader, sheet *model.Sheet) error {
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "mergeCells" {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "mergeCell" {
			continue
		}
		if ref, ok := ev.Attr("ref"); ok {
			if rng, err := cellref.ParseRange(ref); err == nil {
				sheet.Merge(rng)
			}
		}
	}
}

func attrOrEmpty(ev xmlcodec.Event, name string) string {
	v, _ := ev.Attr(name)
	return v
}

// captureInner reconstructs, as semantically-equivalent XML text, the
// content of an element whose start tag has already been consumed, up to
// (and consuming) its matching end tag. Used for the opaque
// conditional-formatting/data-validation descriptors spec.md §1 says the
// core treats as pass-through.
func captureInner(r *xmlcodec.Reader) (string, error) {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	depth := 0
	for {
		ev, err := r.Next()
		if err != nil {
			return "", err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return buf.String(), nil
		}
		switch ev.Kind {
		case xmlcodec.EventStartElement:
			w.StartElement(ev.Name, convAttrs(ev.Attrs)...)
			depth++
		case xmlcodec.EventCharacters:
			w.Characters(ev.Chars)
		case xmlcodec.EventEndElement:
			if depth == 0 {
				return buf.String(), nil
			}
			depth--
			w.EndElement(ev.Name)
		}
	}
}

func captureElement(r *xmlcodec.Reader, ev xmlcodec.Event) (string, error) {
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.StartElement(ev.Name, convAttrs(ev.Attrs)...)
	inner, err := captureInner(r)
	if err != nil {
		return "", err
	}
	w.Raw(inner)
	w.EndElement(ev.Name)
	return buf.String(), nil
}

func convAttrs(attrs []xml.Attr) []xmlcodec.Attr {
	out := make([]xmlcodec.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = xmlcodec.Attr{Name: a.Name.Local, Value: a.Value}
	}
	return out
}

func decodeDataValidations(r *xmlcodec.Reader, sheet *model.Sheet) error {
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return nil
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "dataValidations" {
			return nil
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		frag, err := captureElement(r, ev)
		if err != nil {
			return err
		}
		sheet.Format.DataValidations = append(sheet.Format.DataValidations,
			model.RawXML{LocalName: ev.Name, Body: frag})
	}
}

func applyProtection(ev xmlcodec.Event, sheet *model.Sheet) {
	sheet.Protect.Enabled = true
	if v, ok := ev.Attr("hashValue"); ok {
		sheet.Protect.PasswordHash = v
	}
	if v, ok := ev.Attr("algorithmName"); ok {
		sheet.Protect.Algorithm = v
	}
	if v, ok := ev.Attr("saltValue"); ok {
		sheet.Protect.SaltValue = v
	}
	if v, ok := ev.Attr("spinCount"); ok {
		n, _ := strconv.Atoi(v)
		sheet.Protect.SpinCount = n
	}
}
