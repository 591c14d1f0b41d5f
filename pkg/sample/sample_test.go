package sample

import (
	"context"
	"testing"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	return doc.Root()
}

func TestNumbers(t *testing.T) {
	t.Parallel()

	var n Numbers
	fib := []int64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	for i, want := range fib {
		assert.Equal(t, want, n.Fibonacci(i).Int64(), "fibonacci(%d)", i)
	}
	assert.Equal(t, "12586269025", n.Fibonacci(50).String())

	assert.Equal(t, int64(1), n.Factorial(0).Int64())
	assert.Equal(t, int64(120), n.Factorial(5).Int64())
	assert.Equal(t, "51090942171709440000", n.Factorial(21).String())
}

func TestFibonacciPort(t *testing.T) {
	t.Parallel()

	impl := (&FibonacciPort{}).Impl()
	assert.Equal(t, "FibonacciPort", impl.PortName.Local)
	op := impl.Operations["fibonacci"]
	require.NotNil(t, op)

	out, err := op(context.Background(), request(t, `<fibonacci xmlns="http://www.example.com/sample"><index>10</index></fibonacci>`))
	require.NoError(t, err)
	assert.Equal(t, "fibonacciResponse", out.Tag)
	assert.Equal(t, "55", out.FindElement("return").Text())

	_, err = op(context.Background(), request(t, `<fibonacci><index>-3</index></fibonacci>`))
	var fault *endpoint.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "Index cannot be negative.", fault.Message)
	assert.Equal(t, "Index: -3", fault.Detail)

	_, err = op(context.Background(), request(t, `<fibonacci><index>ten</index></fibonacci>`))
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, endpoint.FaultClient, fault.Code)

	_, err = op(context.Background(), request(t, `<fibonacci/>`))
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "missing index", fault.Message)
}

func TestFactorialPort(t *testing.T) {
	t.Parallel()

	op := (&FactorialPort{}).Impl().Operations["factorial"]

	out, err := op(context.Background(), request(t, `<factorial><number>6</number></factorial>`))
	require.NoError(t, err)
	assert.Equal(t, "720", out.FindElement("return").Text())

	_, err = op(context.Background(), request(t, `<factorial><number>-1</number></factorial>`))
	var fault *endpoint.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "Number cannot be negative.", fault.Message)
	assert.Equal(t, "Number: -1", fault.Detail)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"factorial", "fibonacci"}, Names())

	bean, ok := Lookup("Fibonacci")
	require.True(t, ok)
	assert.Equal(t, "FibonacciPortImpl", bean.Impl().Name)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestSampleBeanMaterializes(t *testing.T) {
	t.Parallel()

	bean, _ := Lookup("factorial")
	svc := endpoint.NewService()
	svc.SetBean(bean)

	ep, err := svc.Materialize()
	require.NoError(t, err)
	assert.Equal(t, ServiceName, ep.ServiceName())
	assert.Equal(t, "FactorialPort", ep.PortName().Local)
}
