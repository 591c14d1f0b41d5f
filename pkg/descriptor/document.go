package descriptor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Recognized descriptor extensions. Matching is exact and case-sensitive.
const (
	ExtWSDL   = "wsdl"
	ExtSchema = "xsd"
)

// Kind classifies a descriptor document by extension.
type Kind string

// Document kinds.
const (
	KindWSDL   Kind = "wsdl"
	KindSchema Kind = "xsd"
	KindOther  Kind = "other"
)

// HTTPClient fetches documents with http and https locators.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Document is a lazily readable handle to one descriptor document. It is
// immutable once created and safe to share.
type Document struct {
	loc      Locator
	resource string
	data     []byte
}

// NewDocument returns a handle that reads loc on every Open.
func NewDocument(loc Locator) *Document {
	return &Document{loc: loc}
}

// NewBytesDocument returns a handle over in-memory content identified by loc.
func NewBytesDocument(loc Locator, data []byte) *Document {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Document{loc: loc, data: cp}
}

// newResourceDocument returns a handle for a document found on the class path
// under the slash-separated resource name.
func newResourceDocument(loc Locator, resource string) *Document {
	return &Document{loc: loc, resource: resource}
}

// ResourceName returns the document's path relative to the class-path root it
// was discovered under, e.g. "sample/wsdl/S.wsdl". It is the same whether the
// root is a directory or an archive. Documents not produced by discovery fall
// back to Locator.Key.
func (d *Document) ResourceName() string {
	if d.resource != "" {
		return d.resource
	}
	return d.loc.Key()
}

// Locator returns the document's locator.
func (d *Document) Locator() Locator {
	return d.loc
}

// Name returns the document's base name.
func (d *Document) Name() string {
	return d.loc.Name()
}

// Kind returns the document kind derived from its name.
func (d *Document) Kind() Kind {
	switch Extension(d.Name()) {
	case ExtWSDL:
		return KindWSDL
	case ExtSchema:
		return KindSchema
	default:
		return KindOther
	}
}

// String returns the canonical locator string.
func (d *Document) String() string {
	return d.loc.String()
}

// Open returns a fresh reader over the document content. The caller must close it.
func (d *Document) Open() (io.ReadCloser, error) {
	if d.data != nil {
		return io.NopCloser(bytes.NewReader(d.data)), nil
	}

	switch d.loc.Scheme {
	case SchemeFile:
		f, err := os.Open(d.loc.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", d.loc, err)
		}
		return f, nil
	case SchemeJar:
		return openArchiveEntry(d.loc)
	case SchemeHTTP, SchemeHTTPS:
		resp, err := HTTPClient.Get(d.loc.String())
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", d.loc, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: unexpected status %d", d.loc, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("%w: cannot open scheme %q", ErrInvalidLocator, d.loc.Scheme)
	}
}

// ReadAll reads the whole document.
func (d *Document) ReadAll() ([]byte, error) {
	rc, err := d.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// Extension returns the text after the last dot of name, or "" when the only
// dot is the first character or there is none.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i+1:]
	}
	return ""
}

// IsDescriptor reports whether name carries one of the recognized descriptor extensions.
func IsDescriptor(name string) bool {
	ext := Extension(name)
	return ext == ExtWSDL || ext == ExtSchema
}
