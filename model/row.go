package model

import (
	"fmt"

	"github.com/beingidly/litexl/xlerr"
)

// MaxRow and MaxCol are the Excel grid limits from spec.md §3/§6.
const (
	MaxRow = 1048575
	MaxCol = 16383
)

// AutoHeight is the sentinel Row.Height value meaning "auto" (spec.md §3).
const AutoHeight = -1.0

// Row owns an ordered mapping from column index to Cell, plus row-level
// formatting.
type Row struct {
	Number       int
	cells        map[int]*Cell
	order        []int // ascending column indices, maintained incrementally
	Height       float64
	CustomHeight bool
	Hidden       bool
}

func newRow(number int) *Row {
	return &Row{
		Number: number,
		cells:  make(map[int]*Cell),
		Height: AutoHeight,
	}
}

// NewDetachedRow constructs a Row not owned by any Sheet, for use by
// readers (rowspill, sheetxml) reconstructing rows outside the normal
// Sheet.Row materialization path.
func NewDetachedRow(number int) *Row { return newRow(number) }

// SetDetachedCell places a cell directly at col on a detached row, for use
// by readers reconstructing previously-serialized rows. Unlike Row.Cell, it
// performs no MaxCol validation, since the data is assumed already valid
// (it was validated on write).
func (r *Row) SetDetachedCell(col, styleIndex int, value CellValue) *Cell {
	c := &Cell{Col: col, Value: value, StyleIndex: styleIndex}
	if _, exists := r.cells[col]; !exists {
		r.insertOrdered(col)
	}
	r.cells[col] = c
	return c
}

// Cell materializes (creating if absent) the cell at column col, validating
// it against MaxCol. Callers mutate the returned Cell's Value/StyleIndex
// directly.
func (r *Row) Cell(col int) (*Cell, error) {
	if col < 0 || col > MaxCol {
		return nil, fmt.Errorf("%w: column %d", xlerr.ErrOutOfRange, col)
	}
	if c, ok := r.cells[col]; ok {
		return c, nil
	}
	c := &Cell{Col: col, Value: Empty}
	r.cells[col] = c
	r.insertOrdered(col)
	return c, nil
}

// GetCell returns the cell at col if present, without materializing it.
func (r *Row) GetCell(col int) (*Cell, bool) {
	c, ok := r.cells[col]
	return c, ok
}

// Cells returns the row's cells in ascending column order (spec.md §5:
// "within a sheet, ... cells are in ascending column order").
func (r *Row) Cells() []*Cell {
	out := make([]*Cell, 0, len(r.order))
	for _, col := range r.order {
		out = append(out, r.cells[col])
	}
	return out
}

func (r *Row) insertOrdered(col int) {
	i := 0
	for i < len(r.order) && r.order[i] < col {
		i++
	}
	r.order = append(r.order, 0)
	copy(r.order[i+1:], r.order[i:])
	r.order[i] = col
}

func (r *Row) clone() *Row {
	c := newRow(r.Number)
	c.Height = r.Height
	c.CustomHeight = r.CustomHeight
	c.Hidden = r.Hidden
	for _, col := range r.order {
		src := r.cells[col]
		cp := *src
		if src.Value.Cached != nil {
			cv := *src.Value.Cached
			cp.Value.Cached = &cv
		}
		c.cells[col] = &cp
		c.order = append(c.order, col)
	}
	return c
}
