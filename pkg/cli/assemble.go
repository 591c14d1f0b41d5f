package cli

import (
	"fmt"
	"log/slog"

	"github.com/getmockd/wsbind/pkg/config"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/soap"
)

// serviceStatus is the assembly outcome of one configured service.
type serviceStatus struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Service  string `json:"service,omitempty"`
	Port     string `json:"port,omitempty"`
	Binding  string `json:"binding,omitempty"`
	Primary  string `json:"primaryWsdl,omitempty"`
	Metadata int    `json:"metadata"`
	Error    string `json:"error,omitempty"`

	endpoint *endpoint.BoundEndpoint
}

// materializeAll builds every service of the assembly. It does not stop at
// the first failure so that all problems can be reported together.
func materializeAll(a *config.Assembly) ([]serviceStatus, error) {
	statuses := make([]serviceStatus, 0, len(a.Services))
	failed := 0
	for _, entry := range a.Services {
		st := serviceStatus{Name: entry.Name, URL: entry.URL}
		ep, err := entry.Service.Materialize()
		if err != nil {
			st.Error = err.Error()
			failed++
		} else {
			st.endpoint = ep
			st.Service = ep.ServiceName().String()
			st.Port = ep.PortName().String()
			st.Binding = string(ep.Binding().ID())
			st.Metadata = len(ep.Metadata())
			if doc := ep.PrimaryWSDL(); doc != nil {
				st.Primary = doc.String()
			}
		}
		statuses = append(statuses, st)
	}
	if failed > 0 {
		return statuses, fmt.Errorf("%d of %d service(s) failed to assemble", failed, len(a.Services))
	}
	return statuses, nil
}

// newServlet assembles cfg and binds every endpoint to a new servlet.
func newServlet(cfg *config.ProjectConfig, log *slog.Logger) (*soap.Servlet, []serviceStatus, error) {
	a, err := config.Build(cfg, implLookup, log)
	if err != nil {
		return nil, nil, err
	}
	if len(a.Services) == 0 {
		return nil, nil, ErrNoServices
	}

	statuses, err := materializeAll(a)
	if err != nil {
		for _, st := range statuses {
			if st.Error != "" {
				log.Error("service assembly failed", "service", st.Name, "error", st.Error)
			}
		}
		return nil, statuses, err
	}

	servlet := soap.NewServlet(log)
	for _, st := range statuses {
		if err := servlet.Bind(st.URL, st.endpoint); err != nil {
			servlet.Destroy()
			return nil, statuses, fmt.Errorf("service %s: %w", st.Name, err)
		}
	}
	return servlet, statuses, nil
}
