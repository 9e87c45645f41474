package model

import (
	"fmt"
	"sort"

	"github.com/beingidly/litexl/cellref"
	"github.com/beingidly/litexl/xlerr"
)

// ColumnFormat holds per-column presentation data.
type ColumnFormat struct {
	Width  float64 // characters, not pixels
	Hidden bool
}

// RawXML is an opaque, verbatim-serialized descriptor. SheetXml writes it
// back without interpreting its contents. Used for conditional formatting
// and data validation — both explicitly out of core scope per spec.md §1
// ("treated as opaque descriptors the writer serializes verbatim"); sheet
// protection is kept in the Protection struct instead.
type RawXML struct {
	// LocalName is the element name (e.g. "conditionalFormatting").
	LocalName string
	// Body is pre-rendered XML written verbatim. For conditional formatting
	// it is the inner XML, written between <conditionalFormatting> start and
	// end tags; for data validation it is the whole <dataValidation>
	// element, written inside <dataValidations>.
	Body string
}

// SheetFormat bundles the non-cell presentation state of a Sheet.
type SheetFormat struct {
	Merges              []cellref.Range
	AutoFilter          *cellref.Range
	Columns             map[int]*ColumnFormat // 0-based column index
	ConditionalFormats  []RawXML
	DataValidations     []RawXML
	Hidden              bool
}

func newSheetFormat() SheetFormat {
	return SheetFormat{Columns: make(map[int]*ColumnFormat)}
}

// Protection is the sheet-protection descriptor. The core stores and
// round-trips it opaquely (spec.md §1: "password-hashed sheet-protection
// records" are out of scope); PasswordHash is whatever ECMA-376 hash the
// caller or source file already computed.
type Protection struct {
	Enabled      bool
	PasswordHash string
	Algorithm    string // e.g. "SHA-512", empty for legacy hash
	SaltValue    string
	SpinCount    int
}

// Sheet owns an ordered mapping from row index to Row, plus SheetFormat and
// Protection. Row/column indices are validated on every materialization.
type Sheet struct {
	Name    string
	index   int
	rows    map[int]*Row
	order   []int
	Format  SheetFormat
	Protect Protection
}

func newSheet(name string, index int) *Sheet {
	return &Sheet{
		Name:   name,
		index:  index,
		rows:   make(map[int]*Row),
		Format: newSheetFormat(),
	}
}

// Index returns the sheet's ordinal, assigned at insertion and never
// renumbered within a write cycle even if an earlier sheet is removed.
func (s *Sheet) Index() int { return s.index }

// Row materializes (creating if absent) the row at index r.
func (s *Sheet) Row(r int) (*Row, error) {
	if r < 0 || r > MaxRow {
		return nil, fmt.Errorf("%w: row %d", xlerr.ErrOutOfRange, r)
	}
	if row, ok := s.rows[r]; ok {
		return row, nil
	}
	row := newRow(r)
	s.rows[r] = row
	s.insertOrdered(r)
	return row, nil
}

// GetRow returns the row at index r if present, without materializing it.
func (s *Sheet) GetRow(r int) (*Row, bool) {
	row, ok := s.rows[r]
	return row, ok
}

// Rows returns the sheet's rows in ascending row-number order (spec.md §5).
func (s *Sheet) Rows() []*Row {
	out := make([]*Row, 0, len(s.order))
	for _, r := range s.order {
		out = append(out, s.rows[r])
	}
	return out
}

func (s *Sheet) insertOrdered(r int) {
	i := sort.SearchInts(s.order, r)
	s.order = append(s.order, 0)
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = r
}

// Cell materializes the row then the cell at (r, c), validating both limits
// as specified by spec.md §3.
func (s *Sheet) Cell(r, c int) (*Cell, error) {
	row, err := s.Row(r)
	if err != nil {
		return nil, err
	}
	return row.Cell(c)
}

// Merge records a merged range as given; Merge itself does no validation
// (cellref.NewRange and cellref.ParseRange validate when building one).
func (s *Sheet) Merge(rng cellref.Range) {
	s.Format.Merges = append(s.Format.Merges, rng)
}

// SetAutoFilter sets (or clears, with a nil rng) the sheet's auto-filter range.
func (s *Sheet) SetAutoFilter(rng *cellref.Range) {
	s.Format.AutoFilter = rng
}

// SetColumnWidth sets the display width (in characters) of column c.
func (s *Sheet) SetColumnWidth(c int, width float64) error {
	if c < 0 || c > MaxCol {
		return fmt.Errorf("%w: column %d", xlerr.ErrOutOfRange, c)
	}
	cf, ok := s.Format.Columns[c]
	if !ok {
		cf = &ColumnFormat{}
		s.Format.Columns[c] = cf
	}
	cf.Width = width
	return nil
}

// SetHidden sets the sheet's visibility. Supplemented feature per
// SPEC_FULL.md, grounded on adnsv-go-xl's sheet-property accessor style.
func (s *Sheet) SetHidden(hidden bool) { s.Format.Hidden = hidden }

// Hidden reports the sheet's visibility.
func (s *Sheet) Hidden() bool { return s.Format.Hidden }

func (s *Sheet) clone() *Sheet {
	c := newSheet(s.Name, s.index)
	c.Protect = s.Protect
	c.Format.Hidden = s.Format.Hidden
	c.Format.Merges = append([]cellref.Range(nil), s.Format.Merges...)
	if s.Format.AutoFilter != nil {
		r := *s.Format.AutoFilter
		c.Format.AutoFilter = &r
	}
	c.Format.ConditionalFormats = append([]RawXML(nil), s.Format.ConditionalFormats...)
	c.Format.DataValidations = append([]RawXML(nil), s.Format.DataValidations...)
	for col, cf := range s.Format.Columns {
		v := *cf
		c.Format.Columns[col] = &v
	}
	for _, rn := range s.order {
		src := s.rows[rn]
		c.rows[rn] = src.clone()
		c.order = append(c.order, rn)
	}
	return c
}
