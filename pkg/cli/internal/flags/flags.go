// Package flags provides repeatable flag types for the wsbind commands.
package flags

import (
	"os"
	"path/filepath"
	"strings"
)

// StringSlice implements pflag.Value for repeatable string flags such as
// --config and --include.
type StringSlice []string

// String returns the string representation of the flag value.
func (s *StringSlice) String() string {
	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *StringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Type specifies the type label for Cobra flags.
func (s *StringSlice) Type() string {
	return "stringSlice"
}

// PathList is a repeatable flag whose values may each hold several entries
// joined by the OS path-list separator, the way a Java classpath is written.
// Empty entries are dropped.
type PathList []string

// String joins the entries with the OS path-list separator.
func (p *PathList) String() string {
	return strings.Join(*p, string(os.PathListSeparator))
}

// Set splits value on the path-list separator and appends each entry.
func (p *PathList) Set(value string) error {
	for _, entry := range filepath.SplitList(value) {
		if entry = strings.TrimSpace(entry); entry != "" {
			*p = append(*p, entry)
		}
	}
	return nil
}

// Type specifies the type label for Cobra flags.
func (p *PathList) Type() string {
	return "pathList"
}
