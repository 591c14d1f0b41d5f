package descriptor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/getmockd/wsbind/pkg/util"
)

// Loader resolves a logical resource name to a locator.
type Loader interface {
	Resource(name string) (Locator, bool)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) (Locator, bool)

// Resource calls f(name).
func (f LoaderFunc) Resource(name string) (Locator, bool) {
	return f(name)
}

// Root is one entry of a Classpath: a directory, or an archive optionally
// followed by the chain of nested archives to descend into.
type Root struct {
	Dir     string
	Archive string
	Chain   []string
}

// ParseRoot parses a classpath entry. Entries containing the container
// delimiter ("app.jar!/BOOT-INF/lib/inner.jar") name nested archives; other
// entries are archives when the file starts with a zip signature and
// directories otherwise.
func ParseRoot(entry string) Root {
	if archivePath, rest, ok := strings.Cut(entry, ContainerDelimiter); ok {
		var chain []string
		for _, seg := range strings.Split(rest, ContainerDelimiter) {
			if seg = stripLeadingSlash(seg); seg != "" {
				chain = append(chain, seg)
			}
		}
		return Root{Archive: archivePath, Chain: chain}
	}
	if info, err := os.Stat(entry); err == nil && !info.IsDir() && isArchiveFile(entry) {
		return Root{Archive: entry}
	}
	return Root{Dir: entry}
}

// String returns the root in classpath entry syntax.
func (r Root) String() string {
	if r.Archive == "" {
		return r.Dir
	}
	s := r.Archive
	for _, c := range r.Chain {
		s += ContainerDelimiter + "/" + c
	}
	return s
}

// Classpath is an ordered list of roots searched first to last, the way a
// class loader searches its entries.
type Classpath struct {
	roots []Root
}

// NewClasspath builds a Classpath from entry strings (see ParseRoot).
func NewClasspath(entries ...string) *Classpath {
	cp := &Classpath{}
	for _, e := range entries {
		if e == "" {
			continue
		}
		cp.roots = append(cp.roots, ParseRoot(e))
	}
	return cp
}

// Roots returns a copy of the classpath roots.
func (c *Classpath) Roots() []Root {
	out := make([]Root, len(c.roots))
	copy(out, c.roots)
	return out
}

// Resource returns the locator of name in the first root that contains it,
// as a file or a directory. A leading slash on name is ignored. Names that
// escape the root are never resolved.
func (c *Classpath) Resource(name string) (Locator, bool) {
	name = stripLeadingSlash(name)
	clean := "."
	if name != "" {
		var ok bool
		clean, ok = util.SafeFilePath(filepath.FromSlash(name))
		if !ok {
			return Locator{}, false
		}
	}

	for _, root := range c.roots {
		if loc, ok := root.resource(clean); ok {
			return loc, true
		}
	}
	return Locator{}, false
}

func (r Root) resource(name string) (Locator, bool) {
	if r.Archive == "" {
		p := filepath.Join(r.Dir, name)
		if _, err := os.Stat(p); err != nil {
			return Locator{}, false
		}
		return FileLocator(p), true
	}

	a, err := openArchive(r.Archive, r.Chain)
	if err != nil {
		return Locator{}, false
	}
	defer func() { _ = a.Close() }()

	entry := filepath.ToSlash(name)
	if entry == "." {
		entry = ""
	}
	if !hasEntry(a.Reader, entry) {
		return Locator{}, false
	}
	return ArchiveLocator(r.Archive, r.Chain, entry), true
}
