package soap

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/logging"
)

// Servlet routes requests to bound endpoints by URL path.
type Servlet struct {
	mu      sync.RWMutex
	routes  map[string]*Handler
	modules map[*endpoint.Module]struct{}
	log     *slog.Logger
	metrics *Metrics
}

// NewServlet creates an empty servlet. A nil logger discards output.
func NewServlet(log *slog.Logger) *Servlet {
	if log == nil {
		log = logging.Nop()
	}
	return &Servlet{
		routes:  make(map[string]*Handler),
		modules: make(map[*endpoint.Module]struct{}),
		log:     log,
	}
}

// SetMetrics records request and binding metrics in m. A nil m disables them.
func (s *Servlet) SetMetrics(m *Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
	m.setBound(len(s.routes))
}

// Bind serves ep at url and registers it in the endpoint's container
// module. Binding the same url twice fails with endpoint.ErrAlreadyBound.
func (s *Servlet) Bind(url string, ep *endpoint.BoundEndpoint) error {
	if ep == nil {
		return fmt.Errorf("binding %s: endpoint is nil", url)
	}
	url = normalizePath(url)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.routes[url]; ok {
		return fmt.Errorf("%w: %s", endpoint.ErrAlreadyBound, url)
	}

	if v, ok := ep.Container().SPI(endpoint.SPIModule); ok {
		if module, ok := v.(*endpoint.Module); ok && module != nil {
			if err := module.Register(url, ep); err != nil {
				return err
			}
			s.modules[module] = struct{}{}
		}
	}

	h := NewHandler(ep)
	h.SetLogger(s.log.With("url", url))
	s.routes[url] = h
	s.metrics.setBound(len(s.routes))

	s.log.Info("endpoint bound",
		"url", url,
		"service", ep.ServiceName().String(),
		"port", ep.PortName().String(),
	)
	return nil
}

// URLs returns the bound URLs in sorted order.
func (s *Servlet) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := make([]string, 0, len(s.routes))
	for url := range s.routes {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Handler returns the handler bound at url.
func (s *Servlet) Handler(url string) (*Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.routes[normalizePath(url)]
	return h, ok
}

// ServeHTTP dispatches to the endpoint bound at the request path. A plain
// GET on an endpoint returns a short HTML page describing it.
func (s *Servlet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := normalizePath(r.URL.Path)
	h, ok := s.Handler(url)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	m := s.metrics
	s.mu.RUnlock()
	if m != nil {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		defer func() {
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			m.observe(url, r.Method, rec.status, time.Since(start))
		}()
		w = rec
	}

	if r.Method == http.MethodGet && r.URL.RawQuery == "" {
		s.writeInfo(w, r, h.Endpoint())
		return
	}
	h.ServeHTTP(w, r)
}

// Destroy unbinds every endpoint and clears the modules it registered in.
func (s *Servlet) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for module := range s.modules {
		module.Reset()
	}
	s.routes = make(map[string]*Handler)
	s.modules = make(map[*endpoint.Module]struct{})
	s.metrics.setBound(0)
	s.log.Info("servlet destroyed")
}

func (s *Servlet) writeInfo(w http.ResponseWriter, r *http.Request, ep *endpoint.BoundEndpoint) {
	var b strings.Builder
	b.WriteString("<html><head><title>Web Services</title></head><body><table>")
	fmt.Fprintf(&b, "<tr><td>Service Name:</td><td>%s</td></tr>", html.EscapeString(ep.ServiceName().String()))
	fmt.Fprintf(&b, "<tr><td>Port Name:</td><td>%s</td></tr>", html.EscapeString(ep.PortName().String()))
	fmt.Fprintf(&b, "<tr><td>Address:</td><td>%s</td></tr>", html.EscapeString(r.URL.Path))
	fmt.Fprintf(&b, "<tr><td>Implementation:</td><td>%s</td></tr>", html.EscapeString(ep.Impl().Name))
	if ep.PrimaryWSDL() != nil {
		fmt.Fprintf(&b, `<tr><td>WSDL:</td><td><a href="%s?wsdl">%s?wsdl</a></td></tr>`,
			html.EscapeString(r.URL.Path), html.EscapeString(r.URL.Path))
	}
	b.WriteString("</table></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
