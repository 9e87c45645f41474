// Package model implements the in-memory workbook object graph: Workbook,
// Sheet, Row, Cell, Style, and SharedStrings, and the invariants spec.md §3
// places on them. It owns no file-format knowledge — that lives in
// sheetxml, stylesxml, workbookxml, and xlsx.
//
// Grounded on adnsv-go-xl/xl/workbook.go's Workbook/AddSheet shape
// (sheetMap for duplicate detection, ordinal assignment at insertion), with
// the teacher's pkg/excel.SheetData generalized from [][]string into the
// full typed Cell/Style/SharedStrings graph spec.md §3 requires.
package model

import (
	"fmt"
	"strings"

	"github.com/beingidly/litexl/xlerr"
	deepcopy "github.com/tiendc/go-deepcopy"
)

// Workbook owns an ordered list of Sheets, an ordered Style table (index 0
// reserved for the default style), and an insertion-ordered SharedStrings
// table. All mutations fail once the workbook is closed.
type Workbook struct {
	sheets     []*Sheet
	sheetByKey map[string]*Sheet // lower-cased name -> sheet, for case-insensitive lookup
	styles     []Style
	shared     *SharedStrings
	closed     bool
}

// Create returns a new, empty, open Workbook with the default style
// pre-populated at index 0, matching spec.md §3's invariant.
func Create() *Workbook {
	return &Workbook{
		sheetByKey: make(map[string]*Sheet),
		styles:     []Style{DefaultStyle()},
		shared:     NewSharedStrings(),
	}
}

// Closed reports whether the workbook has been closed.
func (w *Workbook) Closed() bool { return w.closed }

// Close marks the workbook closed; all subsequent mutating calls fail with
// xlerr.ErrClosed.
func (w *Workbook) Close() { w.closed = true }

func (w *Workbook) checkOpen() error {
	if w.closed {
		return xlerr.ErrClosed
	}
	return nil
}

// AddSheet appends a new, empty sheet named name. Fails with
// xlerr.ErrEmptyName if name is blank, or xlerr.ErrDuplicateName if a
// case-insensitive match already exists.
func (w *Workbook) AddSheet(name string) (*Sheet, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, xlerr.ErrEmptyName
	}
	key := strings.ToLower(name)
	if _, exists := w.sheetByKey[key]; exists {
		return nil, fmt.Errorf("%w: %q", xlerr.ErrDuplicateName, name)
	}
	sh := newSheet(name, len(w.sheets))
	w.sheets = append(w.sheets, sh)
	w.sheetByKey[key] = sh
	return sh, nil
}

// Sheets returns the workbook's sheets in insertion order. The returned
// slice must not be mutated.
func (w *Workbook) Sheets() []*Sheet { return w.sheets }

// SheetByIndex returns the sheet at ordinal index, or nil if out of range.
func (w *Workbook) SheetByIndex(index int) *Sheet {
	if index < 0 || index >= len(w.sheets) {
		return nil
	}
	return w.sheets[index]
}

// SheetByName returns the sheet matching name case-insensitively, or nil.
func (w *Workbook) SheetByName(name string) *Sheet {
	return w.sheetByKey[strings.ToLower(name)]
}

// AddStyle appends style to the table and returns its index. No
// deduplication happens at this layer; StylesXml deduplicates by value at
// serialization time.
func (w *Workbook) AddStyle(style Style) (int, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	w.styles = append(w.styles, style)
	return len(w.styles) - 1, nil
}

// Styles returns the style table. The returned slice must not be mutated.
func (w *Workbook) Styles() []Style { return w.styles }

// Style returns the style at idx, or the default style if idx is out of
// range (a defensive fallback; writers should never produce such an index).
func (w *Workbook) Style(idx int) Style {
	if idx < 0 || idx >= len(w.styles) {
		return DefaultStyle()
	}
	return w.styles[idx]
}

// AddSharedString interns s into the workbook's shared-string table,
// returning the existing index if s was already present.
func (w *Workbook) AddSharedString(s string) (int, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	return w.shared.Add(s), nil
}

// SharedStrings returns the workbook's shared-string table.
func (w *Workbook) SharedStrings() *SharedStrings { return w.shared }

// ReplaceStyles overwrites the workbook's entire style table. Used only by
// xlsx.Read/xlsx.Open reconstructing a workbook from its on-disk
// xl/styles.xml (spec.md §3: "Readers reconstruct this graph in full").
func (w *Workbook) ReplaceStyles(styles []Style) {
	if len(styles) == 0 {
		styles = []Style{DefaultStyle()}
	}
	w.styles = styles
}

// ReplaceSharedStrings swaps in a SharedStrings table already
// reconstructed from xl/sharedStrings.xml, preserving its on-disk indices
// exactly (see sharedstringsxml.Decode).
func (w *Workbook) ReplaceSharedStrings(shared *SharedStrings) {
	w.shared = shared
}

// Clone returns a deep, independent copy of the workbook, including an
// open/closed state matching the original. Sheets/rows/cells are copied
// with a hand-written walk (they form an owned tree with no exported
// fields suitable for reflection-based copying); the flat Style table is
// copied with go-deepcopy, mirroring the role tiendc/go-deepcopy already
// plays as a dependency of the teacher's mapper layer.
func (w *Workbook) Clone() (*Workbook, error) {
	c := &Workbook{
		sheetByKey: make(map[string]*Sheet, len(w.sheetByKey)),
		closed:     w.closed,
	}
	if err := deepcopy.Copy(&c.styles, &w.styles); err != nil {
		return nil, fmt.Errorf("clone styles: %w", err)
	}
	c.shared = w.shared.Clone()
	for _, sh := range w.sheets {
		cs := sh.clone()
		c.sheets = append(c.sheets, cs)
		c.sheetByKey[strings.ToLower(cs.Name)] = cs
	}
	return c, nil
}
