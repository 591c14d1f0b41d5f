package endpoint

import (
	"fmt"
	"strings"
)

// QName is an XML qualified name.
type QName struct {
	Space string
	Local string
}

// String returns the name in {namespace}local form.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// IsZero reports whether q has no local part.
func (q QName) IsZero() bool {
	return q.Local == ""
}

// ParseQName parses {namespace}local or a bare local name.
func ParseQName(s string) (QName, error) {
	if !strings.HasPrefix(s, "{") {
		if s == "" || strings.ContainsAny(s, "{}") {
			return QName{}, fmt.Errorf("invalid qualified name %q", s)
		}
		return QName{Local: s}, nil
	}
	space, local, ok := strings.Cut(s[1:], "}")
	if !ok || local == "" || strings.ContainsAny(local, "{}") {
		return QName{}, fmt.Errorf("invalid qualified name %q", s)
	}
	return QName{Space: space, Local: local}, nil
}
