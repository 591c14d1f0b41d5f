package descriptor

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Locator schemes.
const (
	SchemeFile  = "file"
	SchemeJar   = "jar"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// ContainerDelimiter separates a physical archive locator from the entries
// nested inside it. Every additional archive level repeats it.
const ContainerDelimiter = "!"

// ErrInvalidLocator is returned when a string cannot be parsed as an absolute locator.
var ErrInvalidLocator = errors.New("invalid locator")

// Locator is the canonical identifier of a descriptor resource.
//
// For the file scheme Path is the absolute filesystem path. For the jar scheme
// Path is the physical archive on disk, Chain holds the archive entries that
// must be opened to reach the innermost archive (joined by "!/"), and Entry is
// the path inside that innermost archive. For http and https Path is the
// scheme-specific part of the URL.
//
// Locators built through the constructors in this package are canonical, so
// two locators compare equal exactly when their String forms are equal.
type Locator struct {
	Scheme string
	Path   string
	Chain  string
	Entry  string
}

// FileLocator returns the locator of a filesystem path. Relative paths are
// made absolute against the working directory.
func FileLocator(p string) Locator {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return Locator{Scheme: SchemeFile, Path: filepath.Clean(p)}
}

// ArchiveLocator returns the locator of entry inside the archive at archivePath,
// reached through the nested archive entries in chain.
func ArchiveLocator(archivePath string, chain []string, entry string) Locator {
	if abs, err := filepath.Abs(archivePath); err == nil {
		archivePath = abs
	}
	segs := make([]string, 0, len(chain))
	for _, c := range chain {
		segs = append(segs, stripLeadingSlash(c))
	}
	return Locator{
		Scheme: SchemeJar,
		Path:   filepath.Clean(archivePath),
		Chain:  strings.Join(segs, ContainerDelimiter+"/"),
		Entry:  stripLeadingSlash(entry),
	}
}

// Segments returns the nested archive chain followed by the entry, which is
// the sequence of names an archive traversal has to match.
func (l Locator) Segments() []string {
	var segs []string
	if l.Chain != "" {
		segs = strings.Split(l.Chain, ContainerDelimiter+"/")
	}
	return append(segs, l.Entry)
}

// ChainSegments returns the nested archive entries of a jar locator.
func (l Locator) ChainSegments() []string {
	if l.Chain == "" {
		return nil
	}
	return strings.Split(l.Chain, ContainerDelimiter+"/")
}

// IsZero reports whether l is the zero Locator.
func (l Locator) IsZero() bool {
	return l == Locator{}
}

// Name returns the last path element of the resource.
func (l Locator) Name() string {
	switch l.Scheme {
	case SchemeJar:
		return path.Base(l.Entry)
	case SchemeFile:
		return filepath.Base(l.Path)
	default:
		if u, err := url.Parse(l.String()); err == nil {
			return path.Base(u.Path)
		}
		return path.Base(l.Path)
	}
}

// Key returns the slash-separated resource path without a leading slash.
// Archive entries yield their entry name, files their absolute path.
func (l Locator) Key() string {
	if l.Scheme == SchemeJar {
		return l.Entry
	}
	if l.Scheme == SchemeFile {
		return stripLeadingSlash(filepath.ToSlash(l.Path))
	}
	return stripLeadingSlash(l.Path)
}

// String returns the canonical form of the locator. Path, chain and entry
// segments are percent-encoded, so the result parses back to an equal Locator.
func (l Locator) String() string {
	switch l.Scheme {
	case "":
		return ""
	case SchemeFile:
		return fileURL(l.Path)
	case SchemeJar:
		var b strings.Builder
		b.WriteString(SchemeJar)
		b.WriteString(":")
		b.WriteString(fileURL(l.Path))
		for _, seg := range l.ChainSegments() {
			b.WriteString(ContainerDelimiter + "/")
			b.WriteString(escapePath(seg))
		}
		b.WriteString(ContainerDelimiter + "/")
		b.WriteString(escapePath(l.Entry))
		return b.String()
	default:
		return l.Scheme + ":" + l.Path
	}
}

func fileURL(p string) string {
	slashed := filepath.ToSlash(p)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return SchemeFile + ":" + escapePath(slashed)
}

// escapePath percent-encodes each slash-separated segment of p. PathEscape
// encodes "!" as well, so the container delimiter only ever appears between
// archive levels.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// ParseLocator parses an absolute locator string. Accepted forms are
// file:/abs/path, file:///abs/path, jar:file:/archive.jar!/entry (archive: is
// accepted as an alias of jar:), and http(s) URLs.
func ParseLocator(s string) (Locator, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" {
		return Locator{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidLocator, s)
	}

	switch strings.ToLower(scheme) {
	case SchemeFile:
		p, err := parseFilePath(s)
		if err != nil {
			return Locator{}, err
		}
		return Locator{Scheme: SchemeFile, Path: filepath.Clean(p)}, nil

	case SchemeJar, "archive":
		parts := strings.Split(rest, ContainerDelimiter)
		if len(parts) < 2 {
			return Locator{}, fmt.Errorf("%w: %q has no container delimiter", ErrInvalidLocator, s)
		}
		archive, err := parseFilePath(parts[0])
		if err != nil {
			return Locator{}, err
		}
		segs := make([]string, 0, len(parts)-1)
		for _, part := range parts[1:] {
			seg, err := url.PathUnescape(part)
			if err != nil {
				return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
			}
			segs = append(segs, seg)
		}
		return ArchiveLocator(archive, segs[:len(segs)-1], segs[len(segs)-1]), nil

	case SchemeHTTP, SchemeHTTPS:
		u, err := url.Parse(s)
		if err != nil {
			return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		if u.Host == "" {
			return Locator{}, fmt.Errorf("%w: %q has no host", ErrInvalidLocator, s)
		}
		return Locator{Scheme: strings.ToLower(u.Scheme), Path: strings.TrimPrefix(u.String(), u.Scheme+":")}, nil

	default:
		return Locator{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocator, scheme)
	}
}

func parseFilePath(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if !strings.EqualFold(u.Scheme, SchemeFile) {
		return "", fmt.Errorf("%w: %q is not a file locator", ErrInvalidLocator, s)
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if p == "" || !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidLocator, s)
	}
	return filepath.FromSlash(p), nil
}

func stripLeadingSlash(s string) string {
	return strings.TrimPrefix(s, "/")
}
