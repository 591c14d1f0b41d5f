package endpoint

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceOf(t *testing.T) {
	t.Parallel()

	loc := descriptor.FileLocator("/srv/S.wsdl")
	doc := descriptor.NewDocument(loc)
	u, err := url.Parse("file:/srv/S.wsdl")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   any
		want Resource
	}{
		{"nil", nil, Resource{}},
		{"string", "sample/S.wsdl", Path("sample/S.wsdl")},
		{"locator", loc, At(loc)},
		{"locator pointer", &loc, At(loc)},
		{"url", u, At(loc)},
		{"document", doc, Doc(doc)},
		{"nil document", (*descriptor.Document)(nil), Resource{}},
		{"resource", Path("x"), Path("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResourceOf(tt.in))
		})
	}
}

func TestResolver_DocumentIsReturnedUnchanged(t *testing.T) {
	t.Parallel()

	doc := descriptor.NewBytesDocument(descriptor.FileLocator("/mem/S.wsdl"), []byte(testWSDL))
	loader := &countingLoader{}
	r := &Resolver{Loader: loader}

	got, err := r.Resolve(Doc(doc))
	require.NoError(t, err)
	assert.Same(t, doc, got)
	assert.Zero(t, loader.calls)
}

func TestResolver_LocatorIsWrapped(t *testing.T) {
	t.Parallel()

	loc := descriptor.ArchiveLocator("/srv/app.jar", nil, "sample/S.wsdl")
	loader := &countingLoader{}
	r := &Resolver{Loader: loader}

	got, err := r.Resolve(At(loc))
	require.NoError(t, err)
	assert.Equal(t, loc, got.Locator())
	assert.Zero(t, loader.calls)
}

func TestResolver_WebContextShortCircuits(t *testing.T) {
	t.Parallel()

	webLoc := descriptor.FileLocator("/srv/webapp/WEB-INF/x.wsdl")
	web := &webMap{paths: map[string]descriptor.Locator{"WEB-INF/x.wsdl": webLoc}}
	loader := &countingLoader{paths: map[string]descriptor.Locator{
		"WEB-INF/x.wsdl": descriptor.FileLocator("/srv/classes/WEB-INF/x.wsdl"),
	}}
	r := &Resolver{Web: web, Loader: loader}

	got, err := r.Resolve(Path("WEB-INF/x.wsdl"))
	require.NoError(t, err)
	assert.Equal(t, webLoc, got.Locator())
	assert.Equal(t, 1, web.calls)
	assert.Zero(t, loader.calls, "loader is not consulted after the web context answers")
}

func TestResolver_FallsBackToLoaderThenLocator(t *testing.T) {
	t.Parallel()

	libLoc := descriptor.ArchiveLocator("/srv/app.jar", nil, "sample/S.wsdl")
	web := &webMap{}
	loader := &countingLoader{paths: map[string]descriptor.Locator{"sample/S.wsdl": libLoc}}
	r := &Resolver{Web: web, Loader: loader}

	got, err := r.Resolve(Path("sample/S.wsdl"))
	require.NoError(t, err)
	assert.Equal(t, libLoc, got.Locator())
	assert.Equal(t, 1, web.calls)
	assert.Equal(t, 1, loader.calls)

	got, err = r.Resolve(Path("file:/srv/other/S.wsdl"))
	require.NoError(t, err)
	assert.Equal(t, descriptor.FileLocator("/srv/other/S.wsdl"), got.Locator())
}

func TestResolver_NotFound(t *testing.T) {
	t.Parallel()

	r := &Resolver{Loader: &countingLoader{}}
	_, err := r.Resolve(Path("not-a-real-path"))

	var rre *ResourceResolutionError
	require.ErrorAs(t, err, &rre)
	assert.Equal(t, "not-a-real-path", rre.Location)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestResolver_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := (&Resolver{}).Resolve(ResourceOf(42))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = (&Resolver{}).Resolve(Resource{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestResolver_ResolveDirect(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "S.wsdl"), testWSDL)
	loader := &countingLoader{paths: map[string]descriptor.Locator{"S.wsdl": descriptor.FileLocator(path)}}
	r := &Resolver{Loader: loader}

	got, err := r.ResolveDirect(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor.FileLocator(path), got.Locator())

	_, err = r.ResolveDirect("S.wsdl")
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Zero(t, loader.calls)

	_, err = r.ResolveDirect(tmp)
	assert.ErrorIs(t, err, ErrResourceNotFound, "directories are not documents")
}

func TestDocRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "WEB-INF", "wsdl", "S.wsdl"), testWSDL)
	web := NewDocRoot(root)

	loc, ok := web.Resource("/WEB-INF/wsdl/S.wsdl")
	require.True(t, ok)
	assert.Equal(t, descriptor.FileLocator(path), loc)

	_, ok = web.Resource("WEB-INF/wsdl/missing.wsdl")
	assert.False(t, ok)
	_, ok = web.Resource("../etc/passwd")
	assert.False(t, ok)
	_, ok = web.Resource("/")
	assert.False(t, ok)
}
