package cfb

import (
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/beingidly/litexl/xlerr"
)

// Reader indexes every stream in a CFB container by its root-relative
// path, built on richardlehane/mscfb's sector/FAT/miniFAT traversal — the
// DIFAT/FAT/directory walk spec.md §4.10 describes for CfbReader, without
// reimplementing it by hand (CfbWriter, in writer.go, has no such library to lean
// on since mscfb is read-only).
type Reader struct {
	streams map[string][]byte
}

// Open parses the whole CFB container from r and materializes every
// stream. litexl's containers are small enough (EncryptionInfo plus the
// DataSpaces bookkeeping streams, and EncryptedPackage) that eager,
// whole-stream reads cost nothing extra over mscfb's own buffering.
func Open(r io.Reader) (*Reader, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xlerr.ErrCorrupt, err)
	}
	streams := make(map[string][]byte)
	entry, err := doc.Next()
	for err == nil {
		buf := make([]byte, entry.Size)
		if entry.Size > 0 {
			if _, rerr := io.ReadFull(doc, buf); rerr != nil && rerr != io.EOF {
				return nil, fmt.Errorf("%w: reading stream %q: %v", xlerr.ErrCorrupt, entry.Name, rerr)
			}
		}
		streams[streamPath(entry)] = buf
		entry, err = doc.Next()
	}
	if err != io.EOF {
		return nil, fmt.Errorf("%w: %v", xlerr.ErrCorrupt, err)
	}
	return &Reader{streams: streams}, nil
}

func streamPath(entry *mscfb.File) string {
	if len(entry.Path) == 0 {
		return entry.Name
	}
	return strings.Join(entry.Path, "/") + "/" + entry.Name
}

// Stream returns the raw bytes of the stream at path (e.g.
// "EncryptionInfo", "\x06DataSpaces/Version"), or false if absent.
func (r *Reader) Stream(path string) ([]byte, bool) {
	b, ok := r.streams[path]
	return b, ok
}

// EncryptionInfo returns the EncryptionInfo stream, or xlerr.ErrCorrupt if
// the container does not carry one.
func (r *Reader) EncryptionInfo() ([]byte, error) {
	b, ok := r.streams["EncryptionInfo"]
	if !ok {
		return nil, fmt.Errorf("%w: missing EncryptionInfo stream", xlerr.ErrCorrupt)
	}
	return b, nil
}

// EncryptedPackage returns the EncryptedPackage stream (its sector-aligned
// zero padding beyond the declared plaintext length is left in place;
// agile.Decrypt only consumes the segments its own length prefix names).
func (r *Reader) EncryptedPackage() ([]byte, error) {
	b, ok := r.streams["EncryptedPackage"]
	if !ok {
		return nil, fmt.Errorf("%w: missing EncryptedPackage stream", xlerr.ErrCorrupt)
	}
	return b, nil
}
