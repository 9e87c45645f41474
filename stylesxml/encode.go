package stylesxml

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
)

const mainNS = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"

// fillKey (here) and fontKeyT (below) are the map keys for fill and font
// deduplication; model.Border is a struct of BorderSide structs, which is
// already comparable, so borders are keyed on the value directly.
type fillKey struct{ argb uint32 }

// Encode builds xl/styles.xml from styles, deduplicating fonts, fills,
// borders, and number formats by value, as spec.md §4.6 requires. Fill
// index 0 is always "none" and index 1 is always "gray125", whether or not
// any style references them.
func Encode(styles []model.Style) ([]byte, error) {
	fonts, fontIdx := buildFonts(styles)
	fills, fillIdx := buildFills(styles)
	borders, borderIdx := buildBorders(styles)
	numFmts, numFmtIdx := buildNumFmts(styles)

	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("styleSheet", xmlcodec.Attr{Name: "xmlns", Value: mainNS})

	if len(numFmts) > 0 {
		w.StartElement("numFmts", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(numFmts))})
		for _, nf := range numFmts {
			w.EmptyElement("numFmt",
				xmlcodec.Attr{Name: "numFmtId", Value: strconv.Itoa(nf.id)},
				xmlcodec.Attr{Name: "formatCode", Value: nf.code},
			)
		}
		w.EndElement("numFmts")
	}

	w.StartElement("fonts", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(fonts))})
	for _, f := range fonts {
		encodeFont(w, f)
	}
	w.EndElement("fonts")

	w.StartElement("fills", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(fills))})
	for i, argb := range fills {
		encodeFill(w, i, argb)
	}
	w.EndElement("fills")

	w.StartElement("borders", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(borders))})
	for _, b := range borders {
		encodeBorder(w, b)
	}
	w.EndElement("borders")

	w.StartElement("cellXfs", xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(styles))})
	for _, s := range styles {
		encodeXf(w, s, fontIdx[fontKeyOf(s)], fillIdx[fillKey{s.FillARGB}], borderIdx[s.Border], numFmtIdx[s.NumberFormat])
	}
	w.EndElement("cellXfs")

	w.EndElement("styleSheet")
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("stylesxml.Encode: %w", err)
	}
	return buf.Bytes(), nil
}

type fontKeyT struct {
	model.Font
}

func fontKeyOf(s model.Style) fontKeyT { return fontKeyT{s.Font} }

func buildFonts(styles []model.Style) ([]model.Font, map[fontKeyT]int) {
	idx := map[fontKeyT]int{}
	fonts := []model.Font{{}} // font[0] is the default
	idx[fontKeyT{}] = 0
	for _, s := range styles {
		k := fontKeyOf(s)
		if _, ok := idx[k]; !ok {
			idx[k] = len(fonts)
			fonts = append(fonts, s.Font)
		}
	}
	return fonts, idx
}

func buildFills(styles []model.Style) ([]uint32, map[fillKey]int) {
	idx := map[fillKey]int{}
	fills := []uint32{0, 0xFFC0C0C0} // fill[0]=none, fill[1]=gray125, always present
	idx[fillKey{0}] = 0
	idx[fillKey{0xFFC0C0C0}] = 1
	for _, s := range styles {
		k := fillKey{s.FillARGB}
		if _, ok := idx[k]; !ok {
			idx[k] = len(fills)
			fills = append(fills, s.FillARGB)
		}
	}
	return fills, idx
}

func buildBorders(styles []model.Style) ([]model.Border, map[model.Border]int) {
	idx := map[model.Border]int{}
	borders := []model.Border{{}} // border[0] is all-none
	idx[model.Border{}] = 0
	for _, s := range styles {
		if _, ok := idx[s.Border]; !ok {
			idx[s.Border] = len(borders)
			borders = append(borders, s.Border)
		}
	}
	return borders, idx
}

type numFmtEntry struct {
	id   int
	code string
}

// buildNumFmts assigns ids to every distinct non-General number format in
// first-seen order: built-in ids from the recognized table, custom formats
// starting at 164. Returns only the custom entries (the <numFmt> elements
// that must be declared; built-ins are implicit) plus a code->id map
// covering both.
func buildNumFmts(styles []model.Style) ([]numFmtEntry, map[string]int) {
	idIdx := map[string]int{"": 0, "General": 0}
	var custom []numFmtEntry
	nextCustom := customNumFmtBase
	for _, s := range styles {
		code := s.NumberFormat
		if code == "" {
			continue
		}
		if _, ok := idIdx[code]; ok {
			continue
		}
		if id, ok := builtinNumFmts[code]; ok {
			idIdx[code] = id
			continue
		}
		idIdx[code] = nextCustom
		custom = append(custom, numFmtEntry{id: nextCustom, code: code})
		nextCustom++
	}
	return custom, idIdx
}

func encodeFont(w *xmlcodec.Writer, f model.Font) {
	w.StartElement("font")
	if f.Bold {
		w.EmptyElement("b")
	}
	if f.Italic {
		w.EmptyElement("i")
	}
	if f.Underline {
		w.EmptyElement("u")
	}
	if f.Strikethrough {
		w.EmptyElement("strike")
	}
	size := f.Size
	if size == 0 {
		size = 11
	}
	w.EmptyElement("sz", xmlcodec.Attr{Name: "val", Value: strconv.FormatFloat(size, 'g', -1, 64)})
	if f.ARGB != 0 {
		w.EmptyElement("color", xmlcodec.Attr{Name: "rgb", Value: argbHex(f.ARGB)})
	}
	name := f.Name
	if name == "" {
		name = "Calibri"
	}
	w.EmptyElement("name", xmlcodec.Attr{Name: "val", Value: name})
	w.EndElement("font")
}

func encodeFill(w *xmlcodec.Writer, index int, argb uint32) {
	w.StartElement("fill")
	switch {
	case index == 1:
		w.EmptyElement("patternFill", xmlcodec.Attr{Name: "patternType", Value: "gray125"})
	case argb == 0:
		w.EmptyElement("patternFill", xmlcodec.Attr{Name: "patternType", Value: "none"})
	default:
		w.StartElement("patternFill", xmlcodec.Attr{Name: "patternType", Value: "solid"})
		w.EmptyElement("fgColor", xmlcodec.Attr{Name: "rgb", Value: argbHex(argb)})
		w.EndElement("patternFill")
	}
	w.EndElement("fill")
}

func encodeBorder(w *xmlcodec.Writer, b model.Border) {
	w.StartElement("border")
	encodeBorderSide(w, "left", b.Left)
	encodeBorderSide(w, "right", b.Right)
	encodeBorderSide(w, "top", b.Top)
	encodeBorderSide(w, "bottom", b.Bottom)
	w.EmptyElement("diagonal")
	w.EndElement("border")
}

func encodeBorderSide(w *xmlcodec.Writer, name string, side model.BorderSide) {
	if side.Style == model.BorderNone {
		w.EmptyElement(name)
		return
	}
	w.StartElement(name, xmlcodec.Attr{Name: "style", Value: borderStyleName(side.Style)})
	if side.ARGB != 0 {
		w.EmptyElement("color", xmlcodec.Attr{Name: "rgb", Value: argbHex(side.ARGB)})
	}
	w.EndElement(name)
}

func borderStyleName(s model.BorderStyle) string {
	switch s {
	case model.BorderThin:
		return "thin"
	case model.BorderMedium:
		return "medium"
	case model.BorderThick:
		return "thick"
	case model.BorderDashed:
		return "dashed"
	case model.BorderDotted:
		return "dotted"
	case model.BorderDouble:
		return "double"
	case model.BorderHair:
		return "hair"
	default:
		return "thin"
	}
}

func encodeXf(w *xmlcodec.Writer, s model.Style, fontID, fillID, borderID, numFmtID int) {
	attrs := []xmlcodec.Attr{
		{Name: "numFmtId", Value: strconv.Itoa(numFmtID)},
		{Name: "fontId", Value: strconv.Itoa(fontID)},
		{Name: "fillId", Value: strconv.Itoa(fillID)},
		{Name: "borderId", Value: strconv.Itoa(borderID)},
	}
	if fontID != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyFont", Value: "1"})
	}
	if fillID != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyFill", Value: "1"})
	}
	if borderID != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyBorder", Value: "1"})
	}
	if numFmtID != 0 {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyNumberFormat", Value: "1"})
	}
	hasAlignment := !s.Alignment.Empty() || s.WrapText
	if hasAlignment {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyAlignment", Value: "1"})
	}
	hasProtection := s.Locked != model.DefaultStyle().Locked
	if hasProtection {
		attrs = append(attrs, xmlcodec.Attr{Name: "applyProtection", Value: "1"})
	}
	if hasAlignment || hasProtection {
		w.StartElement("xf", attrs...)
		if hasAlignment {
			encodeAlignment(w, s)
		}
		if hasProtection {
			encodeProtection(w, s)
		}
		w.EndElement("xf")
		return
	}
	w.EmptyElement("xf", attrs...)
}

func encodeProtection(w *xmlcodec.Writer, s model.Style) {
	locked := "0"
	if s.Locked {
		locked = "1"
	}
	w.EmptyElement("protection", xmlcodec.Attr{Name: "locked", Value: locked})
}

func encodeAlignment(w *xmlcodec.Writer, s model.Style) {
	var attrs []xmlcodec.Attr
	if h := hAlignName(s.Alignment.Horizontal); h != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "horizontal", Value: h})
	}
	if v := vAlignName(s.Alignment.Vertical); v != "" {
		attrs = append(attrs, xmlcodec.Attr{Name: "vertical", Value: v})
	}
	if s.WrapText {
		attrs = append(attrs, xmlcodec.Attr{Name: "wrapText", Value: "1"})
	}
	w.EmptyElement("alignment", attrs...)
}

func hAlignName(h model.HorizontalAlign) string {
	switch h {
	case model.HAlignLeft:
		return "left"
	case model.HAlignCenter:
		return "center"
	case model.HAlignRight:
		return "right"
	case model.HAlignFill:
		return "fill"
	case model.HAlignJustify:
		return "justify"
	default:
		return ""
	}
}

func vAlignName(v model.VerticalAlign) string {
	switch v {
	case model.VAlignTop:
		return "top"
	case model.VAlignMiddle:
		return "center"
	default:
		return ""
	}
}

func argbHex(argb uint32) string {
	return fmt.Sprintf("%08X", argb)
}
