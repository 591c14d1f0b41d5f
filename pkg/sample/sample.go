// Package sample provides the Fibonacci and Factorial demonstration
// services.
package sample

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/endpoint"
)

// Namespace is the target namespace of the sample services.
const Namespace = "http://www.example.com/sample"

// ServiceName is the WSDL service both ports belong to.
var ServiceName = endpoint.QName{Space: Namespace, Local: "SampleService"}

// Numbers computes the sample sequences.
type Numbers struct{}

// Fibonacci returns the index-th Fibonacci number.
func (Numbers) Fibonacci(index int) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for range index {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

// Factorial returns number!.
func (Numbers) Factorial(number int) *big.Int {
	return new(big.Int).MulRange(1, int64(number))
}

// FibonacciPort serves the fibonacci operation.
type FibonacciPort struct {
	Numbers Numbers
}

// Impl implements endpoint.Bean.
func (p *FibonacciPort) Impl() *endpoint.Impl {
	return &endpoint.Impl{
		Name:        "FibonacciPortImpl",
		Namespace:   Namespace,
		ServiceName: ServiceName,
		PortName:    endpoint.QName{Space: Namespace, Local: "FibonacciPort"},
		Operations: endpoint.OperationTable{
			"fibonacci": func(_ context.Context, req *etree.Element) (*etree.Element, error) {
				index, err := intArg(req, "index")
				if err != nil {
					return nil, err
				}
				if index < 0 {
					return nil, &endpoint.Fault{
						Code:    endpoint.FaultServer,
						Message: "Index cannot be negative.",
						Detail:  "Index: " + strconv.Itoa(index),
					}
				}
				return response("fibonacciResponse", p.Numbers.Fibonacci(index)), nil
			},
		},
	}
}

// FactorialPort serves the factorial operation.
type FactorialPort struct {
	Numbers Numbers
}

// Impl implements endpoint.Bean.
func (p *FactorialPort) Impl() *endpoint.Impl {
	return &endpoint.Impl{
		Name:        "FactorialPortImpl",
		Namespace:   Namespace,
		ServiceName: ServiceName,
		PortName:    endpoint.QName{Space: Namespace, Local: "FactorialPort"},
		Operations: endpoint.OperationTable{
			"factorial": func(_ context.Context, req *etree.Element) (*etree.Element, error) {
				number, err := intArg(req, "number")
				if err != nil {
					return nil, err
				}
				if number < 0 {
					return nil, &endpoint.Fault{
						Code:    endpoint.FaultServer,
						Message: "Number cannot be negative.",
						Detail:  "Number: " + strconv.Itoa(number),
					}
				}
				return response("factorialResponse", p.Numbers.Factorial(number)), nil
			},
		},
	}
}

func intArg(req *etree.Element, name string) (int, error) {
	if req == nil {
		return 0, &endpoint.Fault{Code: endpoint.FaultClient, Message: "missing request"}
	}
	el := req.FindElement(name)
	if el == nil {
		return 0, &endpoint.Fault{Code: endpoint.FaultClient, Message: fmt.Sprintf("missing %s", name)}
	}
	n, err := strconv.Atoi(strings.TrimSpace(el.Text()))
	if err != nil {
		return 0, &endpoint.Fault{Code: endpoint.FaultClient, Message: fmt.Sprintf("invalid %s", name), Detail: el.Text()}
	}
	return n, nil
}

func response(tag string, value *big.Int) *etree.Element {
	el := etree.NewElement("tns:" + tag)
	el.CreateAttr("xmlns:tns", Namespace)
	el.CreateElement("return").SetText(value.String())
	return el
}

var registry = map[string]func() endpoint.Bean{
	"fibonacci": func() endpoint.Bean { return &FibonacciPort{} },
	"factorial": func() endpoint.Bean { return &FactorialPort{} },
}

// Lookup returns a new bean for the named sample.
func Lookup(name string) (endpoint.Bean, bool) {
	newBean, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return newBean(), true
}

// Names returns the registered sample names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
