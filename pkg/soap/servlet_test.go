package soap

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/sample"
)

func TestServlet_BindAndServe(t *testing.T) {
	module := endpoint.NewModule()
	fib := mustEndpoint(t, func(s *endpoint.Service) { s.SetModule(module) })

	factorial := endpoint.NewService()
	factorial.SetBean(&sample.FactorialPort{})
	factorial.SetModule(module)
	fact, err := factorial.Materialize()
	if err != nil {
		t.Fatal(err)
	}

	servlet := NewServlet(nil)
	if err := servlet.Bind("/service/fibonacci", fib); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := servlet.Bind("service/factorial/", fact); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if got := servlet.URLs(); len(got) != 2 || got[0] != "/service/factorial" || got[1] != "/service/fibonacci" {
		t.Errorf("unexpected URLs: %v", got)
	}
	if got := module.BoundEndpoints(); len(got) != 2 || got[0] != fib || got[1] != fact {
		t.Errorf("expected both endpoints in the module, got %d", len(got))
	}

	srv := httptest.NewServer(servlet)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/service/factorial", SOAP11ContentType,
		strings.NewReader(soap11(`<factorial><number>5</number></factorial>`)))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<return>120</return>") {
		t.Errorf("unexpected factorial response %d: %s", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/service/fibonacci?wsdl")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected WSDL, got status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/service/fibonacci")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "FibonacciPort") || !strings.Contains(string(body), "?wsdl") {
		t.Errorf("expected endpoint info page, got %s", body)
	}

	resp, err = http.Get(srv.URL + "/service/unknown")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServlet_DuplicateURL(t *testing.T) {
	servlet := NewServlet(nil)
	ep := mustEndpoint(t)

	if err := servlet.Bind("/service/fibonacci", ep); err != nil {
		t.Fatal(err)
	}
	err := servlet.Bind("/service/fibonacci/", mustEndpoint(t))
	if !errors.Is(err, endpoint.ErrAlreadyBound) {
		t.Errorf("expected ErrAlreadyBound, got %v", err)
	}
	if err := servlet.Bind("/x", nil); err == nil {
		t.Error("expected error for nil endpoint")
	}
}

func TestServlet_Destroy(t *testing.T) {
	module := endpoint.NewModule()
	servlet := NewServlet(nil)
	if err := servlet.Bind("/service/fibonacci", mustEndpoint(t, func(s *endpoint.Service) { s.SetModule(module) })); err != nil {
		t.Fatal(err)
	}

	servlet.Destroy()

	if len(servlet.URLs()) != 0 {
		t.Error("expected no routes after Destroy")
	}
	if len(module.BoundEndpoints()) != 0 {
		t.Error("expected module to be cleared after Destroy")
	}
	if _, ok := servlet.Handler("/service/fibonacci"); ok {
		t.Error("expected handler to be gone")
	}
}
