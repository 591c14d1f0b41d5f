package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/logging"
)

// ImplLookup finds a registered implementation by name.
type ImplLookup func(name string) (endpoint.Bean, bool)

// ErrUnknownImpl is returned when a service names an implementation that is not registered.
var ErrUnknownImpl = errors.New("unknown implementation")

// ServiceEntry is a configured, not yet materialized, endpoint.
type ServiceEntry struct {
	Name    string
	URL     string
	Service *endpoint.Service
}

// Assembly holds everything Build derived from a ProjectConfig.
type Assembly struct {
	Classpath  *descriptor.Classpath
	Web        endpoint.WebContext
	Module     *endpoint.Module
	Discovered map[string]descriptor.Result
	Services   []ServiceEntry
}

// Build validates cfg and configures one endpoint.Service per service entry.
// Discovery sets are evaluated eagerly so that services can draw their
// documents from them. The services are returned unmaterialized.
func Build(cfg *ProjectConfig, lookup ImplLookup, log *slog.Logger) (*Assembly, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if log == nil {
		log = logging.Nop()
	}
	if result := ValidateProjectConfig(cfg); !result.IsValid() {
		return nil, result
	}

	a := &Assembly{
		Classpath:  descriptor.NewClasspath(cfg.Classpath...),
		Module:     endpoint.NewModule(),
		Discovered: make(map[string]descriptor.Result, len(cfg.Discovery)),
	}
	if cfg.WebRoot != "" {
		a.Web = endpoint.NewDocRoot(cfg.WebRoot)
	}

	discoverer := &descriptor.Discoverer{Logger: log.With("component", "discovery")}
	for _, set := range cfg.Discovery {
		res, err := discoverer.Discover(set.Base, a.Classpath).Filter(set.Include, set.Exclude)
		if err != nil {
			return nil, fmt.Errorf("discovery set %s: %w", set.Name, err)
		}
		log.Debug("discovery set evaluated", "set", set.Name, "base", set.Base, "documents", len(res))
		a.Discovered[set.Name] = res
	}

	for i := range cfg.Services {
		sc := &cfg.Services[i]
		svc, err := a.buildService(sc, lookup, log.With("service", sc.Name))
		if err != nil {
			return nil, fmt.Errorf("services[%d] %s: %w", i, sc.Name, err)
		}
		a.Services = append(a.Services, ServiceEntry{Name: sc.Name, URL: sc.URL, Service: svc})
	}

	return a, nil
}

func (a *Assembly) buildService(sc *ServiceConfig, lookup ImplLookup, log *slog.Logger) (*endpoint.Service, error) {
	if lookup == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImpl, sc.Impl)
	}
	bean, ok := lookup(sc.Impl)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImpl, sc.Impl)
	}

	impl := *bean.Impl()
	if impl.Loader == nil {
		impl.Loader = a.Classpath
	}

	svc := endpoint.NewService()
	svc.SetLogger(log)
	svc.SetImpl(&impl)
	svc.SetModule(a.Module)
	if a.Web != nil {
		svc.SetWebContext(a.Web)
	}

	if sc.ServiceName != "" {
		name, err := endpoint.ParseQName(sc.ServiceName)
		if err != nil {
			return nil, err
		}
		svc.SetServiceName(name)
	}
	if sc.PortName != "" {
		name, err := endpoint.ParseQName(sc.PortName)
		if err != nil {
			return nil, err
		}
		svc.SetPortName(name)
	}

	if err := applyBinding(svc, sc); err != nil {
		return nil, err
	}

	if len(sc.Handlers) > 0 {
		handlers := make([]endpoint.Handler, 0, len(sc.Handlers))
		for _, hc := range sc.Handlers {
			h, err := endpoint.NewGuardHandler(hc.Name, hc.Guard)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, h)
		}
		svc.SetHandlers(handlers)
	}

	a.applyDocuments(svc, sc, &impl)

	if sc.Catalog != "" {
		resolver := &endpoint.Resolver{Web: a.Web, Loader: impl.Loader}
		doc, err := resolver.ResolveText(sc.Catalog)
		if err != nil {
			return nil, err
		}
		catalog, err := endpoint.ParseCatalog(doc)
		if err != nil {
			return nil, err
		}
		svc.SetResolver(catalog)
	}

	return svc, nil
}

func applyBinding(svc *endpoint.Service, sc *ServiceConfig) error {
	if sc.Binding != nil {
		id, err := endpoint.ParseBindingID(sc.Binding.ID)
		if err != nil {
			return err
		}
		features, err := toFeatures(sc.Binding.Features)
		if err != nil {
			return err
		}
		svc.SetBinding(endpoint.NewBinding(id, features...))
	}
	if sc.BindingID != "" {
		if err := svc.SetBindingID(sc.BindingID); err != nil {
			return err
		}
	}
	if sc.Features != nil {
		features, err := toFeatures(sc.Features)
		if err != nil {
			return err
		}
		svc.SetFeatures(features)
	}
	return nil
}

func toFeatures(configs []FeatureConfig) ([]endpoint.Feature, error) {
	out := make([]endpoint.Feature, 0, len(configs))
	for _, fc := range configs {
		f, err := featureOf(fc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// applyDocuments sets the primary WSDL and metadata. With metadataFrom, the
// primary is taken from the discovery set when the set contains it, and
// every other document of the set becomes metadata after the explicit entries.
func (a *Assembly) applyDocuments(svc *endpoint.Service, sc *ServiceConfig, impl *endpoint.Impl) {
	var set descriptor.Result
	if sc.MetadataFrom != "" {
		set = a.Discovered[sc.MetadataFrom]
	}

	var primary *descriptor.Document
	if sc.PrimaryWSDL != "" {
		if doc, ok := set.Lookup(impl.Loader, sc.PrimaryWSDL); ok {
			primary = doc
			svc.SetPrimaryWSDL(doc)
		} else {
			svc.SetPrimaryWSDL(sc.PrimaryWSDL)
		}
	}

	var metadata []any
	for _, m := range sc.Metadata {
		metadata = append(metadata, m)
	}
	for _, doc := range set.Documents() {
		if primary != nil && doc.Locator() == primary.Locator() {
			continue
		}
		metadata = append(metadata, doc)
	}
	if len(metadata) > 0 {
		svc.SetMetadata(metadata)
	}
}
