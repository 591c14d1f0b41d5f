package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// maxNestedArchiveSize bounds how much of a nested archive is buffered in memory.
const maxNestedArchiveSize = 256 << 20 // 256MB

// ErrEntryNotFound is returned when an archive entry named by a locator does not exist.
var ErrEntryNotFound = errors.New("archive entry not found")

// archive is an opened archive together with whatever must be closed to release it.
type archive struct {
	*zip.Reader
	closer io.Closer
}

func (a *archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// openArchive opens the physical archive at path and descends through the
// nested archive entries in chain. The first entry whose name matches each
// chain segment wins.
func openArchive(path string, chain []string) (*archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	a := &archive{Reader: &rc.Reader, closer: rc}

	for _, seg := range chain {
		f := findEntry(a.Reader, stripLeadingSlash(seg))
		if f == nil {
			_ = a.Close()
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, seg)
		}
		inner, err := openNested(f)
		// The outer file is no longer needed once the nested archive is buffered.
		_ = a.Close()
		if err != nil {
			return nil, err
		}
		a = &archive{Reader: inner}
	}
	return a, nil
}

// openNested buffers a nested archive entry and opens it as an archive.
// zip needs random access, so the entry cannot be read as a plain stream.
func openNested(f *zip.File) (*zip.Reader, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening nested archive %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxNestedArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading nested archive %s: %w", f.Name, err)
	}
	if len(data) > maxNestedArchiveSize {
		return nil, fmt.Errorf("nested archive %s exceeds %d bytes", f.Name, maxNestedArchiveSize)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading nested archive %s: %w", f.Name, err)
	}
	return zr, nil
}

// findEntry returns the first non-directory entry named exactly name.
func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if isDirEntry(f) {
			continue
		}
		if f.Name == name {
			return f
		}
	}
	return nil
}

// hasEntry reports whether name exists in the archive as a file or as a
// directory, explicit or implied by the entries below it.
func hasEntry(zr *zip.Reader, name string) bool {
	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return true
	}
	for _, f := range zr.File {
		if f.Name == name || strings.HasPrefix(f.Name, name+"/") {
			return true
		}
	}
	return false
}

func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir()
}

// entryReader closes the entry stream and the archive that backs it.
type entryReader struct {
	io.ReadCloser
	archive *archive
}

func (r *entryReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// openArchiveEntry opens the entry a jar locator points to.
func openArchiveEntry(loc Locator) (io.ReadCloser, error) {
	a, err := openArchive(loc.Path, loc.ChainSegments())
	if err != nil {
		return nil, err
	}
	f := findEntry(a.Reader, loc.Entry)
	if f == nil {
		_ = a.Close()
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, loc)
	}
	rc, err := f.Open()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("opening %s: %w", loc, err)
	}
	return &entryReader{ReadCloser: rc, archive: a}, nil
}

// isArchiveFile reports whether the file at path starts with a zip signature.
func isArchiveFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	sig := make([]byte, 4)
	if _, err := io.ReadFull(f, sig); err != nil {
		return false
	}
	return bytes.Equal(sig, []byte("PK\x03\x04")) || bytes.Equal(sig, []byte("PK\x05\x06"))
}
