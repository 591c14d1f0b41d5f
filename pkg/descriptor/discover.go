package descriptor

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/getmockd/wsbind/pkg/logging"
	"github.com/klauspost/compress/zip"
)

// Discoverer collects descriptor documents below a base resource.
// Discovery is best effort: unreadable files, directories and archives are
// skipped and logged at debug level, never reported as errors.
type Discoverer struct {
	Logger *slog.Logger
}

// Discover collects descriptors below base using a Discoverer without logging.
func Discover(base string, loader Loader) Result {
	return (&Discoverer{}).Discover(base, loader)
}

// Discover resolves base through loader and collects every .wsdl and .xsd
// document below it. An unresolvable base, or one that is neither a
// directory nor an archive entry, yields an empty result.
func (d *Discoverer) Discover(base string, loader Loader) Result {
	res := make(Result)
	if loader == nil {
		return res
	}

	loc, ok := loader.Resource(base)
	if !ok {
		d.logger().Debug("descriptor base not found", "base", base)
		return res
	}

	switch loc.Scheme {
	case SchemeFile:
		d.collectDir(base, loc.Path, res)
	case SchemeJar:
		d.collectJar(loc, res)
	default:
		d.logger().Debug("descriptor base has unsupported scheme", "base", base, "locator", loc.String())
	}
	return res
}

func (d *Discoverer) logger() *slog.Logger {
	if d.Logger == nil {
		return logging.Nop()
	}
	return d.Logger
}

// collectDir walks dir depth first and registers every descriptor file.
// Resource names are base joined with the path below dir.
func (d *Discoverer) collectDir(base, dir string, res Result) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}

	prefix := path.Clean(stripLeadingSlash(filepath.ToSlash(base)))
	_ = filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.logger().Debug("skipping unreadable path", "path", p, "error", err)
			//nolint:nilerr // unreadable branches are omitted, the walk continues
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !IsDescriptor(entry.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return nil
		}
		loc := FileLocator(p)
		res[loc] = newResourceDocument(loc, path.Join(prefix, filepath.ToSlash(rel)))
		return nil
	})
}

// collectJar opens the physical archive behind loc and descends through its
// chain of nested archives.
func (d *Discoverer) collectJar(loc Locator, res Result) {
	rc, err := zip.OpenReader(loc.Path)
	if err != nil {
		d.logger().Debug("skipping unreadable archive", "archive", loc.Path, "error", err)
		return
	}
	defer func() { _ = rc.Close() }()

	d.collectArchive(&rc.Reader, loc.Path, nil, loc.Segments(), res)
}

// collectArchive handles one archive level. segments holds the names still to
// be matched; chain the nested archive entries already opened.
//
// With one segment left every descriptor entry whose name starts with it is
// registered. Otherwise the first entry named exactly like the next segment is
// opened as an archive and traversal continues inside it; later entries with
// the same name are not considered.
func (d *Discoverer) collectArchive(zr *zip.Reader, archivePath string, chain, segments []string, res Result) {
	next := stripLeadingSlash(segments[0])

	if len(segments) == 1 {
		for _, f := range zr.File {
			if isDirEntry(f) {
				continue
			}
			if !strings.HasPrefix(f.Name, next) || !IsDescriptor(f.Name) {
				continue
			}
			loc := ArchiveLocator(archivePath, chain, f.Name)
			res[loc] = newResourceDocument(loc, loc.Entry)
		}
		return
	}

	f := findEntry(zr, next)
	if f == nil {
		d.logger().Debug("nested archive not found", "archive", archivePath, "entry", next)
		return
	}
	inner, err := openNested(f)
	if err != nil {
		d.logger().Debug("skipping unreadable nested archive", "archive", archivePath, "entry", next, "error", err)
		return
	}
	nested := append(append([]string{}, chain...), next)
	d.collectArchive(inner, archivePath, nested, segments[1:], res)
}
