package descriptor

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Result maps each discovered locator to its document. Keys are unique by
// construction, so rediscovering the same file collapses onto one entry.
type Result map[Locator]*Document

// Get returns the document registered under loc.
func (r Result) Get(loc Locator) (*Document, bool) {
	doc, ok := r[loc]
	return doc, ok
}

// Lookup resolves name through loader and returns the discovered document
// registered under the resulting locator.
func (r Result) Lookup(loader Loader, name string) (*Document, bool) {
	if loader == nil {
		return nil, false
	}
	loc, ok := loader.Resource(name)
	if !ok {
		return nil, false
	}
	return r.Get(loc)
}

// Locators returns the keys ordered by their canonical string.
func (r Result) Locators() []Locator {
	locs := make([]Locator, 0, len(r))
	for loc := range r {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		return locs[i].String() < locs[j].String()
	})
	return locs
}

// Documents returns the documents ordered by locator.
func (r Result) Documents() []*Document {
	docs := make([]*Document, 0, len(r))
	for _, loc := range r.Locators() {
		docs = append(docs, r[loc])
	}
	return docs
}

// Filter returns the documents whose ResourceName matches at least one include
// pattern (all documents when include is empty) and no exclude pattern.
// Patterns use doublestar syntax, e.g. "sample/wsdl/*.wsdl" or "**/*.xsd", and
// match the same way for directory and archive roots.
func (r Result) Filter(include, exclude []string) (Result, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}

	out := make(Result, len(r))
	for loc, doc := range r {
		key := loc.Key()
		if doc != nil {
			key = doc.ResourceName()
		}
		if len(include) > 0 && !matchAny(include, key) {
			continue
		}
		if matchAny(exclude, key) {
			continue
		}
		out[loc] = doc
	}
	return out, nil
}

func matchAny(patterns []string, key string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, key); ok {
			return true
		}
	}
	return false
}
