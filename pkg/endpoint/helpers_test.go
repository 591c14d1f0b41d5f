package endpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/stretchr/testify/require"
)

const testNS = "http://www.example.com/sample"

const testWSDL = `<?xml version="1.0" encoding="UTF-8"?>
<definitions xmlns="http://schemas.xmlsoap.org/wsdl/"
             xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
             xmlns:tns="http://www.example.com/sample"
             name="SampleService"
             targetNamespace="http://www.example.com/sample">
  <service name="SampleService">
    <port name="FibonacciPort" binding="tns:FibonacciBinding">
      <soap:address location="http://localhost:8080/service/fibonacci"/>
    </port>
    <port name="FactorialPort" binding="tns:FactorialBinding">
      <soap:address location="http://localhost:8080/service/factorial"/>
    </port>
  </service>
</definitions>`

const testXSD = `<?xml version="1.0" encoding="UTF-8"?>
<schema xmlns="http://www.w3.org/2001/XMLSchema" targetNamespace="http://www.example.com/sample/types"/>`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func echoImpl() *Impl {
	return &Impl{
		Name:      "Fibonacci",
		Namespace: testNS,
		Operations: OperationTable{
			"echo": func(_ context.Context, req *etree.Element) (*etree.Element, error) {
				return req.Copy(), nil
			},
		},
	}
}

// webMap is a WebContext answering from a fixed table and counting lookups.
type webMap struct {
	paths map[string]descriptor.Locator
	calls int
}

func (w *webMap) Resource(p string) (descriptor.Locator, bool) {
	w.calls++
	loc, ok := w.paths[p]
	return loc, ok
}

// countingLoader records every lookup.
type countingLoader struct {
	paths map[string]descriptor.Locator
	calls int
}

func (l *countingLoader) Resource(name string) (descriptor.Locator, bool) {
	l.calls++
	loc, ok := l.paths[name]
	return loc, ok
}
