// Package cellref converts between Excel A1-style cell/range references and
// 0-based (row, col) coordinates.
//
// Grounded on the column-letter arithmetic in adnsv-go-xl/xl/row.go
// (ColumnNumberAsLetters / CellCoordAsString) and yamitzky-xlrd-go's
// colRefToIndex-style parsing, generalized to 0-based coordinates and to
// range references per spec.md §4.1.
package cellref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beingidly/litexl/xlerr"
)

// ColumnLetters converts a 0-based column index into its base-26 Excel
// letters, where A=0. The off-by-one carry (subtract one before dividing by
// 26 on every digit after the first) makes this differ from naive base-26.
func ColumnLetters(col int) (string, error) {
	if col < 0 {
		return "", fmt.Errorf("%w: negative column %d", xlerr.ErrOutOfRange, col)
	}
	var b []byte
	n := col
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(b), nil
}

// ParseColumn converts Excel column letters (any case) to a 0-based index.
func ParseColumn(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column letters", xlerr.ErrCorrupt)
	}
	col := 0
	for _, ch := range letters {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: invalid column letter %q", xlerr.ErrCorrupt, letters)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// ToRef formats a 0-based (row, col) coordinate as an A1-style reference,
// e.g. (0,0) -> "A1", (1,2) -> "C2".
func ToRef(row, col int) (string, error) {
	if row < 0 || col < 0 {
		return "", fmt.Errorf("%w: negative coordinate (%d,%d)", xlerr.ErrOutOfRange, row, col)
	}
	letters, err := ColumnLetters(col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", letters, row+1), nil
}

// ParseRef parses an A1-style cell reference into a 0-based (row, col)
// coordinate. Tolerates mixed case and an absolute "$" prefix on either the
// column or the row component (e.g. "$A$1", "A$1", "$A1").
func ParseRef(ref string) (row, col int, err error) {
	s := strings.TrimSpace(ref)
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	start := i
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == start {
		return 0, 0, fmt.Errorf("%w: malformed reference %q", xlerr.ErrCorrupt, ref)
	}
	colLetters := s[start:i]
	if i < len(s) && s[i] == '$' {
		i++
	}
	digitsStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitsStart || i != len(s) {
		return 0, 0, fmt.Errorf("%w: malformed reference %q", xlerr.ErrCorrupt, ref)
	}
	rowNum, convErr := strconv.Atoi(s[digitsStart:i])
	if convErr != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("%w: malformed reference %q", xlerr.ErrCorrupt, ref)
	}
	col, err = ParseColumn(colLetters)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: malformed reference %q", xlerr.ErrCorrupt, ref)
	}
	return rowNum - 1, col, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Range is an inclusive rectangular range of 0-based coordinates.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// NewRange validates and constructs a Range. Fails with out-of-range if any
// coordinate is negative or if an axis end precedes its start.
func NewRange(startRow, startCol, endRow, endCol int) (Range, error) {
	if startRow < 0 || startCol < 0 || endRow < 0 || endCol < 0 {
		return Range{}, fmt.Errorf("%w: negative coordinate in range", xlerr.ErrOutOfRange)
	}
	if startRow > endRow || startCol > endCol {
		return Range{}, fmt.Errorf("%w: range end precedes start", xlerr.ErrOutOfRange)
	}
	return Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}, nil
}

// ParseRange parses "A1" (a degenerate single-cell range) or "A1:B10".
func ParseRange(ref string) (Range, error) {
	parts := strings.SplitN(ref, ":", 2)
	sr, sc, err := ParseRef(parts[0])
	if err != nil {
		return Range{}, err
	}
	if len(parts) == 1 {
		return NewRange(sr, sc, sr, sc)
	}
	er, ec, err := ParseRef(parts[1])
	if err != nil {
		return Range{}, err
	}
	return NewRange(sr, sc, er, ec)
}

// ToRef formats the range as "A1" when degenerate, or "A1:B10" otherwise.
func (r Range) ToRef() string {
	start, _ := ToRef(r.StartRow, r.StartCol)
	if r.StartRow == r.EndRow && r.StartCol == r.EndCol {
		return start
	}
	end, _ := ToRef(r.EndRow, r.EndCol)
	return start + ":" + end
}

// Contains reports whether (row, col) lies within the inclusive range.
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartCol && col <= r.EndCol
}
