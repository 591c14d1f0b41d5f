package endpoint

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/getmockd/wsbind/pkg/util"
)

// WebContext resolves paths against a web application, e.g. WEB-INF/wsdl/...
type WebContext interface {
	Resource(path string) (descriptor.Locator, bool)
}

// DocRoot is a WebContext backed by a web application directory.
type DocRoot struct {
	dir string
}

// NewDocRoot returns a WebContext rooted at dir.
func NewDocRoot(dir string) *DocRoot {
	return &DocRoot{dir: dir}
}

// Dir returns the root directory.
func (d *DocRoot) Dir() string {
	return d.dir
}

// Resource resolves p relative to the root. A leading slash is optional and
// paths escaping the root are never resolved.
func (d *DocRoot) Resource(p string) (descriptor.Locator, bool) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return descriptor.Locator{}, false
	}
	clean, ok := util.SafeFilePath(filepath.FromSlash(p))
	if !ok {
		return descriptor.Locator{}, false
	}
	full := filepath.Join(d.dir, clean)
	if _, err := os.Stat(full); err != nil {
		return descriptor.Locator{}, false
	}
	return descriptor.FileLocator(full), true
}

// lookup is one resolution strategy.
type lookup func(text string) (descriptor.Locator, bool)

// Resolver turns configured Resources into documents.
//
// Text paths are tried against the web context (when there is one), then
// the loader, then parsed as an absolute locator. The first strategy that
// succeeds wins.
type Resolver struct {
	Web    WebContext
	Loader descriptor.Loader
}

// Resolve returns the document a Resource refers to.
func (r *Resolver) Resolve(res Resource) (*descriptor.Document, error) {
	switch res.kind {
	case resourceDocument:
		return res.doc, nil
	case resourceLocator:
		return descriptor.NewDocument(res.loc), nil
	case resourcePath:
		return r.ResolveText(res.text)
	default:
		return nil, &InvalidConfigurationError{Field: "resource", Reason: "unknown resource type", Value: res.raw}
	}
}

// ResolveText resolves a text path with the ordered strategies.
func (r *Resolver) ResolveText(text string) (*descriptor.Document, error) {
	for _, find := range r.strategies() {
		if loc, ok := find(text); ok {
			return descriptor.NewDocument(loc), nil
		}
	}
	return nil, &ResourceResolutionError{Location: text}
}

// ResolveDirect resolves text as an absolute locator or, failing that, as an
// existing filesystem path. Neither the web context nor the loader is consulted.
func (r *Resolver) ResolveDirect(text string) (*descriptor.Document, error) {
	for _, find := range []lookup{parseLocator, statPath} {
		if loc, ok := find(text); ok {
			return descriptor.NewDocument(loc), nil
		}
	}
	return nil, &ResourceResolutionError{Location: text}
}

func (r *Resolver) strategies() []lookup {
	var out []lookup
	if r.Web != nil {
		out = append(out, r.Web.Resource)
	}
	if r.Loader != nil {
		out = append(out, r.Loader.Resource)
	}
	return append(out, parseLocator)
}

func parseLocator(text string) (descriptor.Locator, bool) {
	loc, err := descriptor.ParseLocator(text)
	if err != nil {
		return descriptor.Locator{}, false
	}
	return loc, true
}

func statPath(text string) (descriptor.Locator, bool) {
	clean, ok := util.SafeFilePathAllowAbsolute(text)
	if !ok {
		return descriptor.Locator{}, false
	}
	info, err := os.Stat(clean)
	if err != nil || info.IsDir() {
		return descriptor.Locator{}, false
	}
	return descriptor.FileLocator(clean), true
}
