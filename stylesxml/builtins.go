// Package stylesxml encodes and decodes xl/styles.xml: fonts, fills,
// borders, number formats, and the xf (cell format) records that combine
// them, per spec.md §4.6.
//
// Grounded on the teacher's styles-as-empty-stub
// (`<styleSheet xmlns="..."></styleSheet>` in pkg/excel/writer.go) expanded
// into a full sub-table builder in the teacher's own encoding/xml +
// archive/zip idiom, cross-checked against
// TsubasaBE-go-xlsb/styles/styles.go's BuiltInNumFmt table and
// isDateFormat heuristic for the built-in id set and the custom-format
// date-detection rule spec.md §4.9's Open Question asks us to decide.
package stylesxml

// builtinNumFmts is the recognized built-in id set from spec.md §4.6.
var builtinNumFmts = map[string]int{
	"General":         0,
	"0":               1,
	"0.00":            2,
	"#,##0":           3,
	"#,##0.00":        4,
	"0%":              9,
	"0.00%":           10,
	"0.00E+00":        11,
	"# ?/?":           12,
	"# ??/??":         13,
	"mm-dd-yy":        14,
	"d-mmm-yy":        15,
	"d-mmm":           16,
	"mmm-yy":          17,
	"h:mm AM/PM":      18,
	"h:mm:ss AM/PM":   19,
	"h:mm":            20,
	"h:mm:ss":         21,
	"m/d/yy h:mm":     22,
	"@":               49,
}

// builtinNumFmtsByID is the reverse index, used when decoding a numFmtId
// that has no explicit <numFmt> override.
var builtinNumFmtsByID = func() map[int]string {
	m := make(map[int]string, len(builtinNumFmts))
	for s, id := range builtinNumFmts {
		m[id] = s
	}
	return m
}()

// customNumFmtBase is the first id assigned to a custom (non-built-in)
// number format, per spec.md §4.6.
const customNumFmtBase = 164

// isBuiltinDateFormatID reports whether id is one of the built-in ids
// ECMA-376 designates as date/time formats (TsubasaBE-go-xlsb/styles/styles.go's isDateFormatID).
func isBuiltinDateFormatID(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}
