package soap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServlet_StatusHandler(t *testing.T) {
	servlet := NewServlet(nil)
	ep := mustEndpoint(t)
	if err := servlet.Bind("/service/fibonacci", ep); err != nil {
		t.Fatal(err)
	}
	h := servlet.StatusHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []EndpointStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(all))
	}
	got := all[0]
	if got.ID != ep.ID() || got.URL != "/service/fibonacci" || got.Impl != ep.Impl().Name {
		t.Errorf("unexpected status %+v", got)
	}
	if got.WSDL != "file:/mem/SampleService.wsdl" {
		t.Errorf("wsdl = %q", got.WSDL)
	}
	if len(got.Metadata) != 1 || got.Metadata[0] != "file:/mem/Types.xsd" {
		t.Errorf("metadata = %v", got.Metadata)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_status?url=service/fibonacci/", nil))
	var one EndpointStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &one); err != nil {
		t.Fatal(err)
	}
	if one.URL != "/service/fibonacci" {
		t.Errorf("single lookup returned %+v", one)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_status?url=/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing endpoint status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/_status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}
