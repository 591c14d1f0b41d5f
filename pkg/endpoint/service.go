package endpoint

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/getmockd/wsbind/pkg/logging"
)

// Service collects the configuration of one endpoint and assembles it into
// a BoundEndpoint the first time Materialize is called.
//
// Setters may be called in any order; conflicts between them are reported
// by Materialize. Once an endpoint has been built every setter is a no-op
// and Materialize keeps returning the same instance. A failed Materialize
// commits nothing, so the configuration can be corrected and retried.
type Service struct {
	mu  sync.Mutex
	log *slog.Logger

	impl        *Impl
	invoker     Invoker
	serviceName QName
	portName    QName
	container   Container
	module      *Module
	web         WebContext

	binding   *Binding
	bindingID BindingID
	features  []Feature
	handlers  []Handler

	primaryRaw  Resource
	metadataRaw []Resource
	primary     *descriptor.Document
	metadata    []*descriptor.Document
	resolver    EntityResolver

	finalized   bool
	finalizeErr error

	endpoint *BoundEndpoint
	factory  func(EndpointParams) (*BoundEndpoint, error)
}

// NewService returns an empty Service.
func NewService() *Service {
	return &Service{
		log:     logging.Nop(),
		factory: NewBoundEndpoint,
	}
}

// configure runs fn under the lock unless the endpoint has been built.
func (s *Service) configure(setter string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endpoint != nil {
		s.logger().Debug("ignoring setter on materialized endpoint", "setter", setter, "endpoint", s.endpoint.ID())
		return
	}
	fn()
}

func (s *Service) logger() *slog.Logger {
	if s.log == nil {
		return logging.Nop()
	}
	return s.log
}

// SetLogger sets the logger used for assembly events.
func (s *Service) SetLogger(log *slog.Logger) {
	s.configure("logger", func() { s.log = log })
}

// SetImpl sets the implementation.
func (s *Service) SetImpl(impl *Impl) {
	s.configure("impl", func() {
		s.impl = impl
		s.finalized = false
	})
}

// SetBean installs the bean's operations as the invoker. The bean's
// implementation is used unless one was set explicitly. A nil bean, or one
// without an implementation, is ignored.
func (s *Service) SetBean(b Bean) {
	s.configure("bean", func() {
		if b == nil {
			s.logger().Debug("ignoring nil bean")
			return
		}
		impl := b.Impl()
		if impl == nil {
			s.logger().Debug("ignoring bean without implementation")
			return
		}
		s.invoker = NewTableInvoker(impl.Operations)
		if s.impl == nil {
			s.impl = impl
			s.finalized = false
		}
	})
}

// SetInvoker sets the invoker that executes operations.
func (s *Service) SetInvoker(inv Invoker) {
	s.configure("invoker", func() { s.invoker = inv })
}

// SetServiceName sets the qualified service name.
func (s *Service) SetServiceName(name QName) {
	s.configure("serviceName", func() { s.serviceName = name })
}

// SetPortName sets the qualified port name.
func (s *Service) SetPortName(name QName) {
	s.configure("portName", func() { s.portName = name })
}

// SetContainer sets the hosting container.
func (s *Service) SetContainer(c Container) {
	s.configure("container", func() { s.container = c })
}

// SetModule sets the module the endpoint is reported in when the container
// does not provide one.
func (s *Service) SetModule(m *Module) {
	s.configure("module", func() { s.module = m })
}

// SetBinding sets a prebuilt binding. It cannot be combined with a binding
// ID or features.
func (s *Service) SetBinding(b *Binding) {
	s.configure("binding", func() { s.binding = b })
}

// SetBindingID sets the binding ID by URI or ##SOAP11_HTTP style token.
// Once the endpoint is materialized the argument is not parsed and nil is
// returned.
func (s *Service) SetBindingID(id string) error {
	var err error
	s.configure("bindingID", func() {
		var parsed BindingID
		if parsed, err = ParseBindingID(id); err == nil {
			s.bindingID = parsed
		}
	})
	return err
}

// SetFeatures sets the binding features. A non-nil slice, even an empty
// one, counts as configured.
func (s *Service) SetFeatures(features []Feature) {
	s.configure("features", func() {
		if features == nil {
			s.features = nil
			return
		}
		s.features = append([]Feature{}, features...)
	})
}

// SetHandlers sets handlers appended to the binding's chain.
func (s *Service) SetHandlers(handlers []Handler) {
	s.configure("handlers", func() { s.handlers = append([]Handler(nil), handlers...) })
}

// SetPrimaryWSDL sets the primary WSDL as a path, locator, URL or document.
func (s *Service) SetPrimaryWSDL(v any) {
	s.configure("primaryWsdl", func() {
		s.primaryRaw = ResourceOf(v)
		s.finalized = false
	})
}

// SetMetadata sets the metadata documents, each given as a path, locator,
// URL or document.
func (s *Service) SetMetadata(values []any) {
	s.configure("metadata", func() {
		s.metadataRaw = make([]Resource, 0, len(values))
		for _, v := range values {
			s.metadataRaw = append(s.metadataRaw, ResourceOf(v))
		}
		s.finalized = false
	})
}

// SetResolver sets the entity resolver.
func (s *Service) SetResolver(r EntityResolver) {
	s.configure("resolver", func() { s.resolver = r })
}

// SetWebContext sets the web context used for resolution.
func (s *Service) SetWebContext(w WebContext) {
	s.configure("webContext", func() {
		s.web = w
		s.finalized = false
	})
}

// Finalize resolves the configured primary WSDL and metadata into
// documents. Its error is also returned by Materialize.
func (s *Service) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endpoint != nil {
		return nil
	}
	return s.finalizeLocked()
}

func (s *Service) finalizeLocked() error {
	s.finalized = true
	s.finalizeErr = nil
	s.primary = nil
	s.metadata = nil

	r := s.contentResolver()
	if !s.primaryRaw.IsZero() {
		doc, err := r.Resolve(s.primaryRaw)
		if err != nil {
			s.finalizeErr = err
			return err
		}
		s.primary = doc
	}
	metadata := make([]*descriptor.Document, 0, len(s.metadataRaw))
	for _, raw := range s.metadataRaw {
		doc, err := r.Resolve(raw)
		if err != nil {
			s.finalizeErr = err
			return err
		}
		metadata = append(metadata, doc)
	}
	s.metadata = metadata
	return nil
}

func (s *Service) contentResolver() *Resolver {
	r := &Resolver{Web: s.web}
	if s.impl != nil && s.impl.Loader != nil {
		r.Loader = s.impl.Loader
	}
	return r
}

// Materialize builds the endpoint on first use and returns the same
// instance afterwards.
func (s *Service) Materialize() (*BoundEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endpoint != nil {
		return s.endpoint, nil
	}

	ep, err := s.materializeLocked()
	if err != nil {
		s.logger().Warn("endpoint assembly failed", "error", err)
		return nil, err
	}
	s.endpoint = ep
	s.logger().Info("endpoint materialized",
		"id", ep.ID(),
		"service", ep.ServiceName().String(),
		"port", ep.PortName().String(),
		"binding", string(ep.Binding().ID()),
		"metadata", len(ep.metadata),
	)
	return ep, nil
}

// Materialized reports whether the endpoint has been built.
func (s *Service) Materialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint != nil
}

func (s *Service) materializeLocked() (*BoundEndpoint, error) {
	if s.impl == nil {
		return nil, &InvalidConfigurationError{Field: "impl", Reason: "an implementation is required"}
	}
	if s.impl.Name == "" {
		return nil, &InvalidConfigurationError{Field: "impl", Reason: "implementation name is empty"}
	}

	if !s.finalized {
		if err := s.finalizeLocked(); err != nil {
			return nil, err
		}
	} else if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}

	binding, err := s.resolveBinding()
	if err != nil {
		return nil, err
	}

	primary := s.primary
	if primary == nil && s.impl.WSDLLocation != "" {
		primary, err = s.contentResolver().ResolveDirect(s.impl.WSDLLocation)
		if err != nil {
			return nil, err
		}
	}

	resolver := s.resolver
	if resolver == nil {
		resolver, err = s.defaultEntityResolver()
		if err != nil {
			return nil, err
		}
	}

	serviceName, portName := s.names()
	if primary != nil {
		if err := verifyPrimary(primary, serviceName, portName); err != nil {
			return nil, err
		}
	}

	invoker := s.invoker
	if invoker == nil {
		if len(s.impl.Operations) == 0 {
			return nil, &InvalidConfigurationError{Field: "invoker", Reason: "no invoker and no operations"}
		}
		invoker = NewTableInvoker(s.impl.Operations)
	}

	module := s.module
	if module == nil {
		module = NewModule()
	}

	// Handlers join the binding only once the build is certain to run, and
	// are taken back out if it fails.
	previous := binding.HandlerChain()
	if len(s.handlers) > 0 {
		binding.SetHandlerChain(append(binding.HandlerChain(), s.handlers...))
	}

	ep, err := s.factory(EndpointParams{
		Impl:        s.impl,
		Binding:     binding,
		ServiceName: serviceName,
		PortName:    portName,
		Primary:     primary,
		Metadata:    s.metadata,
		Resolver:    resolver,
		Invoker:     invoker,
		Container:   &containerWrapper{web: s.web, delegate: s.container, module: module},
	})
	if err != nil {
		binding.SetHandlerChain(previous)
		return nil, err
	}
	return ep, nil
}

func (s *Service) resolveBinding() (*Binding, error) {
	if s.binding != nil {
		if s.bindingID != "" {
			return nil, &ConflictingConfigurationError{First: "binding", Second: "bindingID"}
		}
		if s.features != nil {
			return nil, &ConflictingConfigurationError{First: "binding", Second: "features"}
		}
		return s.binding, nil
	}

	id := s.bindingID
	if id == "" && s.impl.BindingType != "" {
		declared, err := ParseBindingID(s.impl.BindingType)
		if err != nil {
			return nil, err
		}
		id = declared
	}
	if id == "" {
		id = SOAP11HTTP
	}
	return NewBinding(id, s.features...), nil
}

// defaultEntityResolver probes the web context catalog, then the library
// catalog. No catalog at either place yields an empty one.
func (s *Service) defaultEntityResolver() (EntityResolver, error) {
	var candidates []descriptor.Locator
	if s.web != nil {
		if loc, ok := s.web.Resource(WebCatalogPath); ok {
			candidates = append(candidates, loc)
		}
	}
	if s.impl.Loader != nil {
		if loc, ok := s.impl.Loader.Resource(LibraryCatalogPath); ok {
			candidates = append(candidates, loc)
		}
	}
	if len(candidates) == 0 {
		return EmptyCatalog(), nil
	}

	loc := candidates[0]
	catalog, err := ParseCatalog(descriptor.NewDocument(loc))
	if err != nil {
		return nil, &InvalidConfigurationError{Field: "catalog", Reason: "unreadable catalog", Value: loc.String(), Err: err}
	}
	s.logger().Debug("using entity catalog", "location", loc.String(), "entries", catalog.Len())
	return catalog, nil
}

func (s *Service) names() (QName, QName) {
	ns := s.impl.Namespace
	if ns == "" {
		ns = "urn:" + s.impl.Name
	}

	serviceName := s.serviceName
	if serviceName.IsZero() {
		serviceName = s.impl.ServiceName
	}
	if serviceName.IsZero() {
		serviceName = QName{Space: ns, Local: s.impl.Name + "Service"}
	}

	portName := s.portName
	if portName.IsZero() {
		portName = s.impl.PortName
	}
	if portName.IsZero() {
		portName = QName{Space: ns, Local: s.impl.Name + "Port"}
	}
	return serviceName, portName
}

// verifyPrimary checks that a concrete primary WSDL declares the endpoint's
// service and port. Abstract WSDLs without services are accepted.
func verifyPrimary(doc *descriptor.Document, service, port QName) error {
	meta, err := descriptor.Sniff(doc)
	if err != nil {
		return &InvalidConfigurationError{Field: "primaryWsdl", Reason: "unreadable descriptor", Value: doc.String(), Err: err}
	}
	if meta.Kind != descriptor.KindWSDL {
		return &InvalidConfigurationError{Field: "primaryWsdl", Reason: "not a WSDL document", Value: doc.String()}
	}
	if len(meta.Services) == 0 {
		return nil
	}
	if meta.TargetNamespace != "" && service.Space != "" && meta.TargetNamespace != service.Space {
		return &InvalidConfigurationError{Field: "serviceName", Reason: "namespace differs from WSDL target namespace", Value: service.String()}
	}
	if !meta.HasPort(service.Local, "") {
		return &InvalidConfigurationError{Field: "serviceName", Reason: "service not declared in WSDL", Value: service.String()}
	}
	if !meta.HasPort(service.Local, port.Local) {
		return &InvalidConfigurationError{Field: "portName", Reason: "port not declared in WSDL service", Value: port.String()}
	}
	return nil
}

// IsConfigurationError reports whether err came from invalid or
// conflicting configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) || errors.Is(err, ErrResourceNotFound)
}
