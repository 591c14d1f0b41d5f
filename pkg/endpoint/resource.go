package endpoint

import (
	"fmt"
	"net/url"

	"github.com/getmockd/wsbind/pkg/descriptor"
)

type resourceKind int

const (
	resourceInvalid resourceKind = iota
	resourcePath
	resourceLocator
	resourceDocument
)

// Resource is a descriptor reference in one of three forms: a text path, a
// locator or an already resolved document. Only Resolver looks inside.
type Resource struct {
	kind resourceKind
	text string
	loc  descriptor.Locator
	doc  *descriptor.Document
	raw  any
}

// Path references a descriptor by text path or absolute locator string.
func Path(p string) Resource {
	return Resource{kind: resourcePath, text: p}
}

// At references a descriptor by locator.
func At(loc descriptor.Locator) Resource {
	return Resource{kind: resourceLocator, loc: loc}
}

// Doc references an already resolved document.
func Doc(doc *descriptor.Document) Resource {
	if doc == nil {
		return Resource{raw: doc}
	}
	return Resource{kind: resourceDocument, doc: doc}
}

// ResourceOf classifies a loosely typed value. Strings, locators, URLs,
// documents and Resources are accepted; any other value yields a Resource
// that fails to resolve with an InvalidConfigurationError. A nil value yields
// the zero Resource, which means "not configured".
func ResourceOf(v any) Resource {
	switch t := v.(type) {
	case nil:
		return Resource{}
	case Resource:
		return t
	case string:
		return Path(t)
	case descriptor.Locator:
		return At(t)
	case *descriptor.Locator:
		if t == nil {
			return Resource{}
		}
		return At(*t)
	case *url.URL:
		if t == nil {
			return Resource{}
		}
		loc, err := descriptor.ParseLocator(t.String())
		if err != nil {
			return Resource{raw: t}
		}
		return At(loc)
	case *descriptor.Document:
		if t == nil {
			return Resource{}
		}
		return Doc(t)
	default:
		return Resource{raw: v}
	}
}

// IsZero reports whether the resource is unset.
func (r Resource) IsZero() bool {
	return r.kind == resourceInvalid && r.raw == nil
}

func (r Resource) String() string {
	switch r.kind {
	case resourcePath:
		return r.text
	case resourceLocator:
		return r.loc.String()
	case resourceDocument:
		return r.doc.String()
	default:
		if r.raw == nil {
			return ""
		}
		return fmt.Sprintf("%v", r.raw)
	}
}
