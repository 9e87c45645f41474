package model

// BorderStyle enumerates the line styles a Border side may take.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderThin
	BorderMedium
	BorderThick
	BorderDashed
	BorderDotted
	BorderDouble
	BorderHair
)

// BorderSide is one edge of a cell border: its style variant and ARGB color.
type BorderSide struct {
	Style BorderStyle
	ARGB  uint32
}

// Border holds all four sides of a cell border.
type Border struct {
	Left, Right, Top, Bottom BorderSide
}

// HorizontalAlign mirrors ECMA-376 ST_HorizontalAlignment's core subset
// named in spec.md §3.
type HorizontalAlign int

const (
	HAlignGeneral HorizontalAlign = iota
	HAlignLeft
	HAlignCenter
	HAlignRight
	HAlignFill
	HAlignJustify
)

// VerticalAlign mirrors ECMA-376 ST_VerticalAlignment's core subset.
type VerticalAlign int

const (
	VAlignBottom VerticalAlign = iota
	VAlignMiddle
	VAlignTop
)

// Alignment bundles horizontal and vertical alignment.
type Alignment struct {
	Horizontal HorizontalAlign
	Vertical   VerticalAlign
}

// Empty reports whether both axes are at their default (general/bottom).
func (a Alignment) Empty() bool {
	return a.Horizontal == HAlignGeneral && a.Vertical == VAlignBottom
}

// Font describes the font sub-record of a Style.
type Font struct {
	Name          string
	Size          float64
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	ARGB          uint32
}

// Style is a value record combining font, fill, border, number format, and
// cell protection/alignment attributes. Styles are referenced by integer
// index from Cell.StyleIndex; the table deduplicates by value only when
// serialized (StylesXml), not at this layer (spec.md §4.2).
type Style struct {
	Font         Font
	FillARGB     uint32 // 0 means "no fill"
	Border       Border
	NumberFormat string // empty means "General"
	Locked       bool
	WrapText     bool
	Alignment    Alignment
}

// DefaultStyle is the style at index 0, reserved by convention across every
// workbook (spec.md §3).
func DefaultStyle() Style {
	return Style{Locked: true}
}
