// Package rowspill implements the append-only, file-backed row log spec.md
// §4.3 describes: a bounded-memory staging area the XLSX writer can use for
// very large sheets instead of holding every Row in memory.
//
// Grounded on the scoped-resource discipline of adnsv-go-xl/xl/zfs.go
// (guaranteed Close/cleanup around an *os.File) and on the frame-based
// binary layout style of TsubasaBE-go-xlsb/record (length-prefixed,
// little-endian fields read back in a tight loop).
package rowspill

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/xlerr"
)

// Cell value tags, per spec.md §4.3's on-disk frame table.
const (
	tagEmpty   byte = 0
	tagText    byte = 1
	tagNumber  byte = 2
	tagBool    byte = 3
	tagDate    byte = 4
	tagFormula byte = 5
	tagError   byte = 6
)

// Spill is an append-only on-disk row log. Once sealed it becomes
// read-only; Close always removes the backing file, whether or not the
// spill was ever read.
type Spill struct {
	file   *os.File
	w      *bufio.Writer
	sealed bool
	path   string
}

// New creates a fresh spill file in dir (os.TempDir() if dir is empty),
// named with a collision-free UUID rather than relying on os.CreateTemp's
// pattern matching — mirrors the identifier-generation role google/uuid
// plays in adnsv-go-xl/xl/media.go for generated media part names.
func New(dir string) (*Spill, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := fmt.Sprintf("%s%clitexl-spill-%s", dir, os.PathSeparator, uuid.NewString())
	f, err := os.Create(path)
	if err != nil {
		return nil, xlerr.Wrap("rowspill.New", path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return &Spill{file: f, w: bufio.NewWriter(f), path: path}, nil
}

// Append writes one row frame. Fails if the spill has already been sealed.
func (s *Spill) Append(row *model.Row) error {
	if s.sealed {
		return fmt.Errorf("%w: spill already sealed", xlerr.ErrIO)
	}
	cells := row.Cells()
	var hdr [21]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(int32(row.Number)))
	binary.LittleEndian.PutUint64(hdr[4:12], math.Float64bits(row.Height))
	hdr[12] = boolByte(row.CustomHeight)
	hdr[13] = boolByte(row.Hidden)
	binary.LittleEndian.PutUint32(hdr[14:18], uint32(int32(len(cells))))
	// hdr[18:21] unused padding kept out; write first 18 bytes only.
	if _, err := s.w.Write(hdr[:18]); err != nil {
		return xlerr.Wrap("rowspill.Append", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	for _, c := range cells {
		if err := s.writeCell(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Spill) writeCell(c *model.Cell) error {
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(int32(c.Col)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(int32(c.StyleIndex)))
	tag, payload := encodeValue(c.Value)
	hdr[8] = tag
	if _, err := s.w.Write(hdr[:]); err != nil {
		return xlerr.Wrap("rowspill.writeCell", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	if _, err := s.w.Write(payload); err != nil {
		return xlerr.Wrap("rowspill.writeCell", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return nil
}

func encodeValue(v model.CellValue) (byte, []byte) {
	switch v.Kind {
	case model.KindText:
		return tagText, lengthPrefixed(v.Text)
	case model.KindNumber:
		return tagNumber, float64Bytes(v.Number)
	case model.KindBool:
		return tagBool, []byte{boolByte(v.Bool)}
	case model.KindDate:
		return tagDate, lengthPrefixed(v.Date.Format("2006-01-02T15:04:05Z07:00"))
	case model.KindFormula:
		return tagFormula, lengthPrefixed(v.Formula)
	case model.KindError:
		return tagError, lengthPrefixed(v.Error)
	default:
		return tagEmpty, nil
	}
}

func lengthPrefixed(s string) []byte {
	b := make([]byte, 4+len(s))
	binary.LittleEndian.PutUint32(b[0:4], uint32(len(s)))
	copy(b[4:], s)
	return b
}

func float64Bytes(f float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Seal flushes pending writes and switches the spill to read-only mode.
// Subsequent Append calls fail.
func (s *Spill) Seal() error {
	if err := s.w.Flush(); err != nil {
		return xlerr.Wrap("rowspill.Seal", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	s.sealed = true
	return nil
}

// ForEachRow replays every row in append order, invoking visit for each.
// Iteration halts early if visit returns false. Fails if the spill is not
// sealed and could not be flushed first.
func (s *Spill) ForEachRow(visit func(*model.Row) bool) error {
	if !s.sealed {
		if err := s.w.Flush(); err != nil {
			return xlerr.Wrap("rowspill.ForEachRow", s.path, fmt.Errorf("%w: not sealed and not flushable: %v", xlerr.ErrIO, err))
		}
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return xlerr.Wrap("rowspill.ForEachRow", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	r := bufio.NewReader(s.file)
	for {
		row, err := readRowFrame(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return xlerr.Wrap("rowspill.ForEachRow", s.path, err)
		}
		if !visit(row) {
			return nil
		}
	}
}

func readRowFrame(r *bufio.Reader) (*model.Row, error) {
	var hdr [18]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated row frame", xlerr.ErrCorrupt)
		}
		return nil, err
	}
	number := int(int32(binary.LittleEndian.Uint32(hdr[0:4])))
	height := math.Float64frombits(binary.LittleEndian.Uint64(hdr[4:12]))
	customHeight := hdr[12] != 0
	hidden := hdr[13] != 0
	cellCount := int(int32(binary.LittleEndian.Uint32(hdr[14:18])))

	row := model.NewDetachedRow(number)
	row.Height = height
	row.CustomHeight = customHeight
	row.Hidden = hidden

	for i := 0; i < cellCount; i++ {
		var chdr [9]byte
		if _, err := io.ReadFull(r, chdr[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated cell header", xlerr.ErrCorrupt)
		}
		col := int(int32(binary.LittleEndian.Uint32(chdr[0:4])))
		styleIdx := int(int32(binary.LittleEndian.Uint32(chdr[4:8])))
		tag := chdr[8]
		value, err := readValue(r, tag)
		if err != nil {
			return nil, err
		}
		row.SetDetachedCell(col, styleIdx, value)
	}
	return row, nil
}

func readValue(r *bufio.Reader, tag byte) (model.CellValue, error) {
	switch tag {
	case tagEmpty:
		return model.Empty, nil
	case tagText:
		s, err := readLengthPrefixed(r)
		return model.TextValue(s), err
	case tagNumber:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.Empty, fmt.Errorf("%w: truncated number payload", xlerr.ErrCorrupt)
		}
		return model.NumberValue(math.Float64frombits(binary.LittleEndian.Uint64(b[:]))), nil
	case tagBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.Empty, fmt.Errorf("%w: truncated bool payload", xlerr.ErrCorrupt)
		}
		return model.BoolValue(b[0] != 0), nil
	case tagDate:
		s, err := readLengthPrefixed(r)
		if err != nil {
			return model.Empty, err
		}
		t, perr := parseISO(s)
		if perr != nil {
			return model.Empty, fmt.Errorf("%w: bad date payload: %v", xlerr.ErrCorrupt, perr)
		}
		return model.DateValue(t), nil
	case tagFormula:
		s, err := readLengthPrefixed(r)
		return model.FormulaValue(s, nil), err
	case tagError:
		s, err := readLengthPrefixed(r)
		return model.ErrorValue(s), err
	default:
		return model.Empty, fmt.Errorf("%w: unknown cell tag %d", xlerr.ErrCorrupt, tag)
	}
}

func parseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func readLengthPrefixed(r *bufio.Reader) (string, error) {
	var lb [4]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return "", fmt.Errorf("%w: truncated length prefix", xlerr.ErrCorrupt)
	}
	n := binary.LittleEndian.Uint32(lb[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: truncated string payload", xlerr.ErrCorrupt)
	}
	return string(buf), nil
}

// Close always removes the backing file, whether the spill was sealed,
// partially written, or never read (spec.md §5: scoped resources released
// on every exit path).
func (s *Spill) Close() error {
	closeErr := s.file.Close()
	removeErr := os.Remove(s.path)
	if closeErr != nil {
		return xlerr.Wrap("rowspill.Close", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, closeErr))
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return xlerr.Wrap("rowspill.Close", s.path, fmt.Errorf("%w: %v", xlerr.ErrIO, removeErr))
	}
	return nil
}
