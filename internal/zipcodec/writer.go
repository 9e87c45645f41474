// Package zipcodec is the minimal ZIP codec spec.md §4.4 describes: a
// single-pass deflating writer and a random-access-by-name reader, thin
// enough that xlsx can drive it one part at a time.
//
// Grounded directly on the teacher's pkg/excel/writer.go and
// go/pkg/excel/reader.go, which drive archive/zip the same way (zip.Writer
// for output, zip.OpenReader/zip.Reader for input); generalized here into
// its own package so xlsx can be written against an interface instead of
// archive/zip directly, matching the Storage abstraction in
// adnsv-go-xl/xl/zfs.go.
package zipcodec

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/beingidly/litexl/xlerr"
)

// Writer is a single-pass deflating ZIP stream writer. Entries are opened
// one at a time; opening a new entry auto-closes the previous one (the
// underlying archive/zip.Writer already behaves this way — each Create
// call implicitly finishes the prior entry).
type Writer struct {
	zw      *zip.Writer
	current io.Writer
}

// NewWriter wraps dst (a file or in-memory buffer) as a ZIP writer.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(dst)}
}

// CreateEntry opens a new deflated entry named name and returns a writer
// for its contents. Writing to a previously returned entry writer after a
// new CreateEntry call is undefined, matching archive/zip's contract.
func (w *Writer) CreateEntry(name string) (io.Writer, error) {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	f, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return nil, xlerr.Wrap("zipcodec.CreateEntry", name, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	w.current = f
	return f, nil
}

// WriteEntry is a convenience wrapper: create name and write all of data.
func (w *Writer) WriteEntry(name string, data []byte) error {
	f, err := w.CreateEntry(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return xlerr.Wrap("zipcodec.WriteEntry", name, fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return nil
}

// Close finalizes the ZIP central directory. Must be called exactly once,
// on every exit path, for the archive to be valid.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		return xlerr.Wrap("zipcodec.Close", "", fmt.Errorf("%w: %v", xlerr.ErrIO, err))
	}
	return nil
}
