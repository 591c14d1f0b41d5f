package soap

import (
	"net/http"

	"github.com/getmockd/wsbind/pkg/httputil"
)

// EndpointStatus describes one bound endpoint.
type EndpointStatus struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Service  string   `json:"service"`
	Port     string   `json:"port"`
	Binding  string   `json:"binding"`
	Impl     string   `json:"impl"`
	WSDL     string   `json:"wsdl,omitempty"`
	Metadata []string `json:"metadata,omitempty"`
}

// Endpoints describes the bound endpoints in URL order.
func (s *Servlet) Endpoints() []EndpointStatus {
	urls := s.URLs()
	out := make([]EndpointStatus, 0, len(urls))
	for _, url := range urls {
		h, ok := s.Handler(url)
		if !ok {
			continue
		}
		out = append(out, describe(url, h))
	}
	return out
}

func describe(url string, h *Handler) EndpointStatus {
	ep := h.Endpoint()
	st := EndpointStatus{
		ID:      ep.ID(),
		URL:     url,
		Service: ep.ServiceName().String(),
		Port:    ep.PortName().String(),
		Binding: string(ep.Binding().ID()),
		Impl:    ep.Impl().Name,
	}
	if doc := ep.PrimaryWSDL(); doc != nil {
		st.WSDL = doc.String()
	}
	for _, doc := range ep.Metadata() {
		st.Metadata = append(st.Metadata, doc.String())
	}
	return st
}

// StatusHandler serves the bound endpoints as JSON. A url query parameter
// selects a single endpoint.
func (s *Servlet) StatusHandler() http.Handler {
	return httputil.AllowMethods(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			httputil.WriteJSON(w, http.StatusOK, s.Endpoints())
			return
		}
		url = normalizePath(url)
		h, ok := s.Handler(url)
		if !ok {
			httputil.WriteError(w, http.StatusNotFound, "not_found", "no endpoint is bound at "+url)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, describe(url, h))
	}), http.MethodGet)
}
