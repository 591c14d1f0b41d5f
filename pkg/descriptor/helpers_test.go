package descriptor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	data []byte
}

func file(name, content string) zipEntry {
	return zipEntry{name: name, data: []byte(content)}
}

func dir(name string) zipEntry {
	return zipEntry{name: name}
}

// zipBytes builds an archive in memory, keeping entry order and duplicates.
func zipBytes(t testing.TB, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.data != nil {
			_, err = w.Write(e.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeZip(t testing.TB, path string, entries ...zipEntry) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, zipBytes(t, entries...), 0o644))
	return path
}

func writeFile(t testing.TB, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func keys(r Result) []string {
	out := make([]string, 0, len(r))
	for _, loc := range r.Locators() {
		out = append(out, loc.String())
	}
	return out
}

// fixedLoader resolves every name to the same locator.
func fixedLoader(loc Locator) Loader {
	return LoaderFunc(func(string) (Locator, bool) { return loc, true })
}

const sampleWSDL = `<?xml version="1.0" encoding="UTF-8"?>
<definitions xmlns="http://schemas.xmlsoap.org/wsdl/"
             xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
             xmlns:soap12="http://schemas.xmlsoap.org/wsdl/soap12/"
             xmlns:tns="http://www.example.com/sample"
             name="SampleService"
             targetNamespace="http://www.example.com/sample">
  <service name="SampleService">
    <port name="FibonacciPort" binding="tns:FibonacciBinding">
      <soap:address location="http://localhost:8080/service/fibonacci"/>
    </port>
    <port name="FactorialPort" binding="tns:FactorialBinding">
      <soap12:address location="http://localhost:8080/service/factorial"/>
    </port>
  </service>
</definitions>`

const sampleXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="http://www.example.com/sample/types"/>`
