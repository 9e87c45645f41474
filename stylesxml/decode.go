package stylesxml

import (
	"bytes"
	"strconv"

	"github.com/xuri/nfp"

	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
)

type decodeState struct {
	numFmts map[int]string
	fonts   []model.Font
	fills   []uint32
	borders []model.Border

	curFont   model.Font
	curBorder model.Border
}

// Decode parses xl/styles.xml into a Style table indexed exactly as the xf
// records appeared (cellXfs[i] -> Styles[i]).
func Decode(data []byte) ([]model.Style, error) {
	r := xmlcodec.NewReader(bytes.NewReader(data), "xl/styles.xml")
	st := &decodeState{numFmts: map[int]string{}}
	for id, code := range builtinNumFmtsByID {
		st.numFmts[id] = code
	}

	var styles []model.Style
	section := ""
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			break
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		switch ev.Name {
		case "numFmt":
			id, code := parseNumFmt(ev)
			st.numFmts[id] = code
		case "fonts", "fills", "borders", "cellXfs", "numFmts":
			section = ev.Name
		case "font":
			if section == "fonts" {
				st.curFont = model.Font{Size: 11, Name: "Calibri"}
				readFontBody(r, st)
				st.fonts = append(st.fonts, st.curFont)
			}
		case "fill":
			if section == "fills" {
				argb := readFillBody(r)
				st.fills = append(st.fills, argb)
			}
		case "border":
			if section == "borders" {
				st.curBorder = model.Border{}
				readBorderBody(r, st)
				st.borders = append(st.borders, st.curBorder)
			}
		case "xf":
			if section == "cellXfs" {
				s, err := readXf(r, ev, st)
				if err != nil {
					return nil, err
				}
				styles = append(styles, s)
			}
		}
	}
	return styles, nil
}

func parseNumFmt(ev xmlcodec.Event) (int, string) {
	idStr, _ := ev.Attr("numFmtId")
	code, _ := ev.Attr("formatCode")
	id, _ := strconv.Atoi(idStr)
	return id, code
}

func readFontBody(r *xmlcodec.Reader, st *decodeState) {
	depth := 0
	for {
		ev, err := r.Next()
		if err != nil || ev.Kind == xmlcodec.EventEndDocument {
			return
		}
		switch ev.Kind {
		case xmlcodec.EventStartElement:
			switch ev.Name {
			case "b":
				st.curFont.Bold = true
			case "i":
				st.curFont.Italic = true
			case "u":
				st.curFont.Underline = true
			case "strike":
				st.curFont.Strikethrough = true
			case "sz":
				if v, ok := ev.Attr("val"); ok {
					st.curFont.Size, _ = strconv.ParseFloat(v, 64)
				}
			case "name":
				if v, ok := ev.Attr("val"); ok {
					st.curFont.Name = v
				}
			case "color":
				if v, ok := ev.Attr("rgb"); ok {
					st.curFont.ARGB = parseARGB(v)
				}
			default:
				depth++
			}
		case xmlcodec.EventEndElement:
			if ev.Name == "font" {
				return
			}
			if depth > 0 {
				depth--
			}
		}
	}
}

func readFillBody(r *xmlcodec.Reader) uint32 {
	var argb uint32
	isGray125 := false
	for {
		ev, err := r.Next()
		if err != nil || ev.Kind == xmlcodec.EventEndDocument {
			return argb
		}
		if ev.Kind == xmlcodec.EventStartElement {
			switch ev.Name {
			case "patternFill":
				if pt, ok := ev.Attr("patternType"); ok && pt == "gray125" {
					isGray125 = true
				}
			case "fgColor":
				if v, ok := ev.Attr("rgb"); ok {
					argb = parseARGB(v)
				}
			}
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "fill" {
			if isGray125 {
				return 0xFFC0C0C0
			}
			return argb
		}
	}
}

func readBorderBody(r *xmlcodec.Reader, st *decodeState) {
	for {
		ev, err := r.Next()
		if err != nil || ev.Kind == xmlcodec.EventEndDocument {
			return
		}
		if ev.Kind == xmlcodec.EventEndElement && ev.Name == "border" {
			return
		}
		if ev.Kind != xmlcodec.EventStartElement {
			continue
		}
		switch ev.Name {
		case "left", "right", "top", "bottom":
			side := readBorderSide(r, ev)
			switch ev.Name {
			case "left":
				st.curBorder.Left = side
			case "right":
				st.curBorder.Right = side
			case "top":
				st.curBorder.Top = side
			case "bottom":
				st.curBorder.Bottom = side
			}
		}
	}
}

func readBorderSide(r *xmlcodec.Reader, ev xmlcodec.Event) model.BorderSide {
	side := model.BorderSide{Style: borderStyleFromName(attrOr(ev, "style", ""))}
	for {
		inner, err := r.Next()
		if err != nil || inner.Kind == xmlcodec.EventEndDocument {
			return side
		}
		if inner.Kind == xmlcodec.EventStartElement && inner.Name == "color" {
			if v, ok := inner.Attr("rgb"); ok {
				side.ARGB = parseARGB(v)
			}
		}
		if inner.Kind == xmlcodec.EventEndElement && inner.Name == ev.Name {
			return side
		}
	}
}

func readXf(r *xmlcodec.Reader, ev xmlcodec.Event, st *decodeState) (model.Style, error) {
	fontID := attrInt(ev, "fontId")
	fillID := attrInt(ev, "fillId")
	borderID := attrInt(ev, "borderId")
	numFmtID := attrInt(ev, "numFmtId")

	s := model.Style{Locked: true}
	if fontID >= 0 && fontID < len(st.fonts) {
		s.Font = st.fonts[fontID]
	}
	if fillID >= 0 && fillID < len(st.fills) {
		s.FillARGB = st.fills[fillID]
	}
	if borderID >= 0 && borderID < len(st.borders) {
		s.Border = st.borders[borderID]
	}
	if code, ok := st.numFmts[numFmtID]; ok && code != "General" {
		s.NumberFormat = code
	}

	// xf may be empty-element or have <alignment>/<protection> children;
	// drain until its matching end, applying whatever is found along the way.
	depth := 0
	for {
		inner, err := r.Next()
		if err != nil {
			return model.Style{}, err
		}
		if inner.Kind == xmlcodec.EventEndDocument {
			break
		}
		if inner.Kind == xmlcodec.EventStartElement {
			switch inner.Name {
			case "alignment":
				applyAlignment(inner, &s)
			case "protection":
				if v, ok := inner.Attr("locked"); ok {
					s.Locked = v != "0"
				}
			default:
				depth++
			}
			continue
		}
		if inner.Kind == xmlcodec.EventEndElement {
			if inner.Name == "xf" && depth == 0 {
				break
			}
			if depth > 0 {
				depth--
			}
		}
	}
	return s, nil
}

func applyAlignment(ev xmlcodec.Event, s *model.Style) {
	if h, ok := ev.Attr("horizontal"); ok {
		s.Alignment.Horizontal = hAlignFromName(h)
	}
	if v, ok := ev.Attr("vertical"); ok {
		s.Alignment.Vertical = vAlignFromName(v)
	}
	if v, ok := ev.Attr("wrapText"); ok && v == "1" {
		s.WrapText = true
	}
}

func attrOr(ev xmlcodec.Event, name, def string) string {
	if v, ok := ev.Attr(name); ok {
		return v
	}
	return def
}

func attrInt(ev xmlcodec.Event, name string) int {
	v, ok := ev.Attr(name)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(v)
	return n
}

func parseARGB(hex string) uint32 {
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func borderStyleFromName(name string) model.BorderStyle {
	switch name {
	case "thin":
		return model.BorderThin
	case "medium":
		return model.BorderMedium
	case "thick":
		return model.BorderThick
	case "dashed":
		return model.BorderDashed
	case "dotted":
		return model.BorderDotted
	case "double":
		return model.BorderDouble
	case "hair":
		return model.BorderHair
	default:
		return model.BorderNone
	}
}

func hAlignFromName(name string) model.HorizontalAlign {
	switch name {
	case "left":
		return model.HAlignLeft
	case "center":
		return model.HAlignCenter
	case "right":
		return model.HAlignRight
	case "fill":
		return model.HAlignFill
	case "justify":
		return model.HAlignJustify
	default:
		return model.HAlignGeneral
	}
}

func vAlignFromName(name string) model.VerticalAlign {
	switch name {
	case "top":
		return model.VAlignTop
	case "center":
		return model.VAlignMiddle
	default:
		return model.VAlignBottom
	}
}

// IsDateFormatted reports whether style's effective number format (explicit
// NumberFormat, falling back to General) represents a date or time value.
// Built-in ids are checked against the ECMA-376 table; custom formats are
// tokenized with xuri/nfp and scanned for a date/elapsed-time token,
// grounded on TsubasaBE-go-xlsb/numfmt.isDateFormat's use of the same
// parser for the equivalent classification.
func IsDateFormatted(style model.Style) bool {
	code := style.NumberFormat
	if code == "" {
		return false
	}
	if id, ok := builtinNumFmts[code]; ok {
		return isBuiltinDateFormatID(id)
	}
	sections := nfp.NumberFormatParser().Parse(code)
	for _, sec := range sections {
		for _, tok := range sec.Items {
			if tok.TType == nfp.TokenTypeDateTimes || tok.TType == nfp.TokenTypeElapsedDateTimes {
				return true
			}
		}
	}
	return false
}
