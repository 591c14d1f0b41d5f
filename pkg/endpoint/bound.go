package endpoint

import (
	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/google/uuid"
)

// BoundEndpoint is a fully assembled endpoint. It is immutable once built
// and is what the dispatch layer serves.
type BoundEndpoint struct {
	id          string
	impl        *Impl
	binding     *Binding
	serviceName QName
	portName    QName
	primary     *descriptor.Document
	metadata    []*descriptor.Document
	resolver    EntityResolver
	invoker     Invoker
	container   Container
}

// EndpointParams carries everything needed to build a BoundEndpoint.
type EndpointParams struct {
	Impl        *Impl
	Binding     *Binding
	ServiceName QName
	PortName    QName
	Primary     *descriptor.Document
	Metadata    []*descriptor.Document
	Resolver    EntityResolver
	Invoker     Invoker
	Container   Container
}

// NewBoundEndpoint builds an endpoint from fully resolved parameters.
func NewBoundEndpoint(p EndpointParams) (*BoundEndpoint, error) {
	metadata := make([]*descriptor.Document, len(p.Metadata))
	copy(metadata, p.Metadata)
	return &BoundEndpoint{
		id:          uuid.New().String(),
		impl:        p.Impl,
		binding:     p.Binding,
		serviceName: p.ServiceName,
		portName:    p.PortName,
		primary:     p.Primary,
		metadata:    metadata,
		resolver:    p.Resolver,
		invoker:     p.Invoker,
		container:   p.Container,
	}, nil
}

// ID returns the unique endpoint ID.
func (e *BoundEndpoint) ID() string { return e.id }

// Impl returns the implementation description.
func (e *BoundEndpoint) Impl() *Impl { return e.impl }

// Binding returns the endpoint binding.
func (e *BoundEndpoint) Binding() *Binding { return e.binding }

// ServiceName returns the qualified service name.
func (e *BoundEndpoint) ServiceName() QName { return e.serviceName }

// PortName returns the qualified port name.
func (e *BoundEndpoint) PortName() QName { return e.portName }

// PrimaryWSDL returns the primary WSDL, or nil when the endpoint has none.
func (e *BoundEndpoint) PrimaryWSDL() *descriptor.Document { return e.primary }

// Metadata returns a copy of the metadata documents.
func (e *BoundEndpoint) Metadata() []*descriptor.Document {
	out := make([]*descriptor.Document, len(e.metadata))
	copy(out, e.metadata)
	return out
}

// Document finds the primary WSDL or a metadata document by base name.
func (e *BoundEndpoint) Document(name string) (*descriptor.Document, bool) {
	if e.primary != nil && e.primary.Name() == name {
		return e.primary, true
	}
	for _, doc := range e.metadata {
		if doc.Name() == name {
			return doc, true
		}
	}
	return nil, false
}

// Resolver returns the entity resolver.
func (e *BoundEndpoint) Resolver() EntityResolver { return e.resolver }

// Invoker returns the invoker that executes operations.
func (e *BoundEndpoint) Invoker() Invoker { return e.invoker }

// Container returns the hosting container.
func (e *BoundEndpoint) Container() Container { return e.container }
