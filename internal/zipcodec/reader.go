package zipcodec

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/beingidly/litexl/xlerr"
)

// Reader provides random-access, per-entry reads over a ZIP archive held
// entirely in memory (mirroring how xlsx buffers a whole package before
// handing it to the Agile pipeline, or before returning it from Open).
type Reader struct {
	zr    *zip.Reader
	byName map[string]*zip.File
}

// NewReader indexes every entry in data by name for O(1) HasEntry lookups
// after construction.
func NewReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xlerr.ErrCorrupt, err)
	}
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}
	return &Reader{zr: zr, byName: byName}, nil
}

// HasEntry reports whether name exists in the archive, O(1) after NewReader.
func (r *Reader) HasEntry(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Open returns a stream over the decompressed bytes of the named entry.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, xlerr.Wrap("zipcodec.Open", name, xlerr.ErrCorrupt)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, xlerr.Wrap("zipcodec.Open", name, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return rc, nil
}

// ReadAll opens name and reads its entire decompressed content.
func (r *Reader) ReadAll(name string) ([]byte, error) {
	rc, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, xlerr.Wrap("zipcodec.ReadAll", name, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return data, nil
}

// Names returns every entry name in the archive, in no particular order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
