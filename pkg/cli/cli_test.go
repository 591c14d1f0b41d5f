package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

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

const testProject = `version: "1"
logging:
  level: error
classpath:
  - classes
discovery:
  - name: contracts
    base: sample
    include: ["**/*.xsd"]
services:
  - name: fibonacci
    impl: fibonacci
    url: /service/fibonacci
    primaryWsdl: sample/wsdl/SampleService.wsdl
    metadataFrom: contracts
  - name: factorial
    impl: factorial
    url: /service/factorial
    primaryWsdl: sample/wsdl/SampleService.wsdl
`

// resetFlags restores the package-level flag values between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		configFiles = nil
		logLevel = ""
		logFormat = ""
		jsonOutput = false
		validateFlagVals = validateFlags{}
		discoverFlagVals = discoverFlags{}
		serveFlagVals = serveFlags{}
		showModules = false
	}
	reset()
	t.Cleanup(reset)
}

// writeProject lays out a project directory and returns the project file path.
func writeProject(t *testing.T, project string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"wsbind.yaml": project,
		filepath.Join("classes", "sample", "wsdl", "SampleService.wsdl"): testWSDL,
		filepath.Join("classes", "sample", "xsd", "Types.xsd"):           testXSD,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "wsbind.yaml")
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), err
}
