package endpoint

import (
	"context"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/descriptor"
)

// Operation implements one service operation. It receives the request
// payload (the first child of the SOAP Body) and returns the response payload.
type Operation func(ctx context.Context, req *etree.Element) (*etree.Element, error)

// OperationTable maps operation names to their implementations.
type OperationTable map[string]Operation

// Impl describes a service implementation: the metadata it declares about
// itself and the operations it provides.
type Impl struct {
	// Name identifies the implementation, e.g. "FibonacciPortImpl".
	Name string

	// Namespace is the target namespace used when names are not declared.
	Namespace string

	// BindingType is the declared binding ID, if any.
	BindingType string

	// WSDLLocation is the declared descriptor location hint, if any.
	WSDLLocation string

	// ServiceName and PortName are the declared names, if any.
	ServiceName QName
	PortName    QName

	Operations OperationTable

	// Loader resolves library resources on behalf of the implementation.
	Loader descriptor.Loader
}

// Bean is a value that carries its own implementation description.
type Bean interface {
	Impl() *Impl
}
