package endpoint

import (
	"fmt"
	"sync"
)

// SPI names understood by the endpoint container.
const (
	SPIWebContext = "webcontext"
	SPIModule     = "module"
)

// Container gives an endpoint access to services of its hosting
// environment, looked up by SPI name.
type Container interface {
	SPI(name string) (any, bool)
}

// ContainerFunc adapts a function to the Container interface.
type ContainerFunc func(name string) (any, bool)

// SPI implements Container.
func (f ContainerFunc) SPI(name string) (any, bool) {
	return f(name)
}

// Module tracks the endpoints bound in one hosting environment.
type Module struct {
	mu        sync.RWMutex
	endpoints []*BoundEndpoint
	byURL     map[string]*BoundEndpoint
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{byURL: make(map[string]*BoundEndpoint)}
}

// Register records ep as bound at url.
func (m *Module) Register(url string, ep *BoundEndpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byURL[url]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, url)
	}
	m.byURL[url] = ep
	m.endpoints = append(m.endpoints, ep)
	return nil
}

// BoundEndpoints returns the registered endpoints in registration order.
func (m *Module) BoundEndpoints() []*BoundEndpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*BoundEndpoint, len(m.endpoints))
	copy(out, m.endpoints)
	return out
}

// Endpoint returns the endpoint registered at url.
func (m *Module) Endpoint(url string) (*BoundEndpoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ep, ok := m.byURL[url]
	return ep, ok
}

// Reset forgets all registrations.
func (m *Module) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endpoints = nil
	m.byURL = make(map[string]*BoundEndpoint)
}

// containerWrapper answers SPI lookups for a bound endpoint: the web
// context first, then the configured container, then the module.
type containerWrapper struct {
	web      WebContext
	delegate Container
	module   *Module
}

func (c *containerWrapper) SPI(name string) (any, bool) {
	if name == SPIWebContext && c.web != nil {
		return c.web, true
	}
	if c.delegate != nil {
		if v, ok := c.delegate.SPI(name); ok {
			return v, true
		}
	}
	if name == SPIModule {
		return c.module, true
	}
	return nil, false
}
