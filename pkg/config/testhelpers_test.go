package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleWSDL = `<?xml version="1.0" encoding="UTF-8"?>
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

const sampleXSD = `<?xml version="1.0" encoding="UTF-8"?>
<schema xmlns="http://www.w3.org/2001/XMLSchema" targetNamespace="http://www.example.com/sample/types"/>`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeClasses lays out a classes directory with the sample contracts.
func writeClasses(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "classes")
	writeFile(t, filepath.Join(root, "sample", "wsdl", "SampleService.wsdl"), sampleWSDL)
	writeFile(t, filepath.Join(root, "sample", "xsd", "Types.xsd"), sampleXSD)
	writeFile(t, filepath.Join(root, "sample", "xsd", "internal", "Private.xsd"), sampleXSD)
	return root
}
