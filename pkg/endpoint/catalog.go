package endpoint

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/descriptor"
)

// Catalog locations probed when no entity resolver is configured.
const (
	WebCatalogPath     = "/WEB-INF/jax-ws-catalog.xml"
	LibraryCatalogPath = "META-INF/jax-ws-catalog.xml"
)

// EntityResolver maps the public and system identifiers of referenced
// schemas and WSDLs to the locators they should be read from.
type EntityResolver interface {
	ResolveEntity(publicID, systemID string) (descriptor.Locator, bool)
}

type rewrite struct {
	prefix string
	target string
}

// Catalog is an OASIS XML catalog. It supports system, public, uri,
// rewriteSystem and rewriteURI entries, including entries inside groups.
// Relative targets are resolved against the catalog's own location.
type Catalog struct {
	source  descriptor.Locator
	system  map[string]string
	public  map[string]string
	uri     map[string]string
	rewrite []rewrite
}

// EmptyCatalog returns a catalog without entries.
func EmptyCatalog() *Catalog {
	return &Catalog{
		system: map[string]string{},
		public: map[string]string{},
		uri:    map[string]string{},
	}
}

// ParseCatalog reads a catalog document.
func ParseCatalog(doc *descriptor.Document) (*Catalog, error) {
	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	x := etree.NewDocument()
	if _, err := x.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", doc.Locator(), err)
	}
	root := x.Root()
	if root == nil || root.Tag != "catalog" {
		return nil, fmt.Errorf("parsing catalog %s: root element must be catalog", doc.Locator())
	}

	c := EmptyCatalog()
	c.source = doc.Locator()
	c.collect(root)
	// Longest prefix first so the most specific rewrite applies.
	sort.SliceStable(c.rewrite, func(i, j int) bool {
		return len(c.rewrite[i].prefix) > len(c.rewrite[j].prefix)
	})
	return c, nil
}

func (c *Catalog) collect(parent *etree.Element) {
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "group":
			c.collect(el)
		case "system":
			c.system[el.SelectAttrValue("systemId", "")] = el.SelectAttrValue("uri", "")
		case "public":
			c.public[el.SelectAttrValue("publicId", "")] = el.SelectAttrValue("uri", "")
		case "uri":
			c.uri[el.SelectAttrValue("name", "")] = el.SelectAttrValue("uri", "")
		case "rewriteSystem":
			c.rewrite = append(c.rewrite, rewrite{
				prefix: el.SelectAttrValue("systemIdStartString", ""),
				target: el.SelectAttrValue("rewritePrefix", ""),
			})
		case "rewriteURI":
			c.rewrite = append(c.rewrite, rewrite{
				prefix: el.SelectAttrValue("uriStartString", ""),
				target: el.SelectAttrValue("rewritePrefix", ""),
			})
		}
	}
}

// Source returns the catalog location, if it was read from one.
func (c *Catalog) Source() (descriptor.Locator, bool) {
	return c.source, !c.source.IsZero()
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.system) + len(c.public) + len(c.uri) + len(c.rewrite)
}

// ResolveEntity implements EntityResolver.
func (c *Catalog) ResolveEntity(publicID, systemID string) (descriptor.Locator, bool) {
	if systemID != "" {
		if target, ok := c.system[systemID]; ok {
			return c.target(target)
		}
		if target, ok := c.uri[systemID]; ok {
			return c.target(target)
		}
		for _, rw := range c.rewrite {
			if rw.prefix != "" && strings.HasPrefix(systemID, rw.prefix) {
				return c.target(rw.target + strings.TrimPrefix(systemID, rw.prefix))
			}
		}
	}
	if publicID != "" {
		if target, ok := c.public[publicID]; ok {
			return c.target(target)
		}
	}
	return descriptor.Locator{}, false
}

func (c *Catalog) target(t string) (descriptor.Locator, bool) {
	if t == "" {
		return descriptor.Locator{}, false
	}
	if loc, err := descriptor.ParseLocator(t); err == nil {
		return loc, true
	}
	switch c.source.Scheme {
	case descriptor.SchemeFile:
		return descriptor.FileLocator(filepath.Join(filepath.Dir(c.source.Path), filepath.FromSlash(t))), true
	case descriptor.SchemeJar:
		entry := path.Join(path.Dir(c.source.Entry), t)
		return descriptor.ArchiveLocator(c.source.Path, c.source.ChainSegments(), entry), true
	default:
		return descriptor.Locator{}, false
	}
}
