package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff_WSDL(t *testing.T) {
	t.Parallel()

	meta, err := Sniff(NewBytesDocument(FileLocator("/mem/S.wsdl"), []byte(sampleWSDL)))
	require.NoError(t, err)

	assert.Equal(t, KindWSDL, meta.Kind)
	assert.Equal(t, "SampleService", meta.Name)
	assert.Equal(t, "http://www.example.com/sample", meta.TargetNamespace)
	require.Len(t, meta.Services, 1)
	require.Len(t, meta.Services[0].Ports, 2)

	fib := meta.Services[0].Ports[0]
	assert.Equal(t, "FibonacciPort", fib.Name)
	assert.Equal(t, "FibonacciBinding", fib.Binding)
	assert.Equal(t, "http://localhost:8080/service/fibonacci", fib.Address)
	assert.Equal(t, "1.1", fib.SOAPVersion)
	assert.Equal(t, "1.2", meta.Services[0].Ports[1].SOAPVersion)

	assert.True(t, meta.HasPort("SampleService", "FactorialPort"))
	assert.True(t, meta.HasPort("SampleService", ""))
	assert.False(t, meta.HasPort("SampleService", "MissingPort"))
	assert.False(t, meta.HasPort("OtherService", "FibonacciPort"))
}

func TestSniff_Schema(t *testing.T) {
	t.Parallel()

	meta, err := Sniff(NewBytesDocument(FileLocator("/mem/T.xsd"), []byte(sampleXSD)))
	require.NoError(t, err)
	assert.Equal(t, KindSchema, meta.Kind)
	assert.Equal(t, "http://www.example.com/sample/types", meta.TargetNamespace)
	assert.Empty(t, meta.Services)
}

func TestSniff_Errors(t *testing.T) {
	t.Parallel()

	_, err := Sniff(NewBytesDocument(FileLocator("/mem/x.wsdl"), []byte(`<catalog/>`)))
	assert.ErrorIs(t, err, ErrNotDescriptor)

	_, err = Sniff(NewBytesDocument(FileLocator("/mem/x.wsdl"), []byte(`<definitions`)))
	assert.Error(t, err)

	_, err = Sniff(NewBytesDocument(FileLocator("/mem/x.wsdl"), []byte(``)))
	assert.Error(t, err)
}
