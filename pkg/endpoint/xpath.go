package endpoint

import (
	"strings"

	"github.com/beevik/etree"
)

// ExtractXPath returns the trimmed text at path in doc, or "" when nothing
// matches. Besides etree's path syntax (/a/b, //b, /a/b[1]) a trailing /@attr
// selects an attribute value.
func ExtractXPath(doc *etree.Document, path string) string {
	if doc == nil || path == "" {
		return ""
	}

	if elem := doc.FindElement(path); elem != nil {
		return strings.TrimSpace(elem.Text())
	}

	if i := strings.LastIndex(path, "/@"); i > 0 {
		if elem := doc.FindElement(path[:i]); elem != nil {
			if attr := elem.SelectAttr(path[i+2:]); attr != nil {
				return attr.Value
			}
		}
	}
	return ""
}
