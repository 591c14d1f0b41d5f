package soap

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/logging"
	"github.com/getmockd/wsbind/pkg/sample"
)

const testWSDL = `<?xml version="1.0"?>
<definitions xmlns="http://schemas.xmlsoap.org/wsdl/" xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
             name="SampleService" targetNamespace="http://www.example.com/sample">
  <service name="SampleService">
    <port name="FibonacciPort" binding="tns:FibonacciBinding"><soap:address location="REPLACE"/></port>
    <port name="FactorialPort" binding="tns:FactorialBinding"><soap:address location="REPLACE"/></port>
  </service>
</definitions>`

const testXSD = `<schema xmlns="http://www.w3.org/2001/XMLSchema" targetNamespace="http://www.example.com/sample/types"/>`

// mustEndpoint materializes the fibonacci sample, optionally adjusting the service first.
func mustEndpoint(t testing.TB, configure ...func(*endpoint.Service)) *endpoint.BoundEndpoint {
	t.Helper()
	svc := endpoint.NewService()
	svc.SetBean(&sample.FibonacciPort{})
	svc.SetPrimaryWSDL(descriptor.NewBytesDocument(descriptor.FileLocator("/mem/SampleService.wsdl"), []byte(testWSDL)))
	svc.SetMetadata([]any{descriptor.NewBytesDocument(descriptor.FileLocator("/mem/Types.xsd"), []byte(testXSD))})
	for _, fn := range configure {
		fn(svc)
	}
	ep, err := svc.Materialize()
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	return ep
}

func post(t *testing.T, h http.Handler, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/service/fibonacci", strings.NewReader(body))
	req.Header.Set("Content-Type", SOAP11ContentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func soap11(payload string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>` + payload + `</soap:Body>
</soap:Envelope>`
}

func TestHandler_ServeHTTP_WSDL(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	req := httptest.NewRequest(http.MethodGet, "/service/fibonacci?WSDL", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != testWSDL {
		t.Errorf("expected WSDL content, got %s", string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/xml") {
		t.Errorf("expected Content-Type text/xml, got %s", ct)
	}
}

func TestHandler_ServeHTTP_XSD(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	tests := []struct {
		query  string
		status int
	}{
		{"xsd=Types.xsd", http.StatusOK},
		{"xsd=Missing.xsd", http.StatusNotFound},
		{"xsd", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/service/fibonacci?"+tt.query, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.query, tt.status, w.Code)
		}
	}
}

func TestHandler_ServeHTTP_NoWSDL(t *testing.T) {
	svc := endpoint.NewService()
	svc.SetBean(&sample.FibonacciPort{})
	ep, err := svc.Materialize()
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/service/fibonacci?wsdl", nil)
	w := httptest.NewRecorder()
	NewHandler(ep).ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandler_ServeHTTP_MethodNotAllowed(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	for _, target := range []string{"/service/fibonacci", "/service/fibonacci?wsdl"} {
		method := http.MethodGet
		if strings.Contains(target, "wsdl") {
			method = http.MethodPut
		}
		req := httptest.NewRequest(method, target, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status 405, got %d", method, target, w.Code)
		}
	}
}

func TestHandler_ServeHTTP_SOAP11Request(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	resp, body := post(t, handler, soap11(`<tns:fibonacci xmlns:tns="http://www.example.com/sample"><index>10</index></tns:fibonacci>`), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "<return>55</return>") {
		t.Errorf("expected response to contain result, got %s", body)
	}
	if !strings.Contains(body, SOAP11Namespace) {
		t.Errorf("expected SOAP 1.1 envelope, got %s", body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/xml") {
		t.Errorf("expected Content-Type text/xml, got %s", ct)
	}
}

func TestHandler_ServeHTTP_SOAP12Request(t *testing.T) {
	handler := NewHandler(mustEndpoint(t, func(s *endpoint.Service) {
		if err := s.SetBindingID("##SOAP12_HTTP"); err != nil {
			t.Fatal(err)
		}
	}))

	soapRequest := `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body><fibonacci><index>7</index></fibonacci></soap:Body>
</soap:Envelope>`

	resp, body := post(t, handler, soapRequest, map[string]string{"Content-Type": SOAP12ContentType})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "<return>13</return>") {
		t.Errorf("expected response to contain result, got %s", body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/soap+xml") {
		t.Errorf("expected Content-Type application/soap+xml, got %s", ct)
	}

	// A SOAP 1.1 envelope is rejected by a SOAP 1.2 binding.
	resp, body = post(t, handler, soap11(`<fibonacci><index>7</index></fibonacci>`), nil)
	if resp.StatusCode != http.StatusInternalServerError || !strings.Contains(body, "VersionMismatch") {
		t.Errorf("expected VersionMismatch fault, got %d: %s", resp.StatusCode, body)
	}
}

func TestHandler_ServeHTTP_OperationFault(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	resp, body := post(t, handler, soap11(`<fibonacci><index>-1</index></fibonacci>`), nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	for _, want := range []string{
		"<faultcode>soap:Server</faultcode>",
		"<faultstring>Index cannot be negative.</faultstring>",
		"<detail>Index: -1</detail>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected fault to contain %q, got %s", want, body)
		}
	}
}

func TestHandler_ServeHTTP_SOAP12Fault(t *testing.T) {
	handler := NewHandler(mustEndpoint(t, func(s *endpoint.Service) {
		_ = s.SetBindingID("##SOAP12_HTTP")
	}))

	soapRequest := `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body><fibonacci><index>x</index></fibonacci></soap:Body>
</soap:Envelope>`

	_, body := post(t, handler, soapRequest, nil)
	if !strings.Contains(body, "<soap:Value>soap:Sender</soap:Value>") {
		t.Errorf("expected Sender code, got %s", body)
	}
	if !strings.Contains(body, `<soap:Text xml:lang="en">invalid index</soap:Text>`) {
		t.Errorf("expected reason text, got %s", body)
	}
}

func TestHandler_ServeHTTP_UnknownOperation(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	resp, body := post(t, handler, soap11(`<divide><a>1</a></divide>`), nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Unknown operation: divide") || !strings.Contains(body, "soap:Client") {
		t.Errorf("expected unknown operation client fault, got %s", body)
	}
}

func TestHandler_ServeHTTP_InvalidRequests(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid xml", `<not valid xml`, "Failed to parse SOAP envelope"},
		{"not an envelope", `<fibonacci/>`, "root element must be Envelope"},
		{"no body", `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"/>`, "SOAP Body not found"},
		{"empty body", soap11(``), "no operation element found in Body"},
		{"must understand", `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Header><sec:Security xmlns:sec="urn:sec" soap:mustUnderstand="1"/></soap:Header>
  <soap:Body><fibonacci><index>1</index></fibonacci></soap:Body>
</soap:Envelope>`, "soap:MustUnderstand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, handler, tt.body, nil)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("expected %q in fault, got %s", tt.want, body)
			}
		})
	}
}

func TestHandler_ServeHTTP_BodyTooLarge(t *testing.T) {
	handler := NewHandler(mustEndpoint(t))

	padding := strings.Repeat(" ", maxSOAPBodySize)
	resp, body := post(t, handler, soap11(`<fibonacci><index>1</index></fibonacci>`)+padding, nil)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Request body exceeds") || !strings.Contains(body, "soap:Client") {
		t.Errorf("expected size limit client fault, got %s", body)
	}
	if strings.Contains(body, "Failed to parse SOAP envelope") {
		t.Errorf("oversized body must not be reported as invalid XML: %s", body)
	}

	exact := soap11(`<fibonacci><index>1</index></fibonacci>`)
	exact += strings.Repeat(" ", maxSOAPBodySize-len(exact))
	resp, body = post(t, handler, exact, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for a body at the limit, got %d: %s", resp.StatusCode, body)
	}
}

func TestHandler_HandlerChain(t *testing.T) {
	var seen []*endpoint.Message
	record := endpoint.HandlerFunc(func(_ context.Context, msg *endpoint.Message) error {
		seen = append(seen, msg)
		return nil
	})
	guard, err := endpoint.NewGuardHandler("limit", `operation != "fibonacci" || int(xpath("//index")) <= 30`)
	if err != nil {
		t.Fatal(err)
	}

	handler := NewHandler(mustEndpoint(t, func(s *endpoint.Service) {
		s.SetHandlers([]endpoint.Handler{record, guard})
	}))

	_, body := post(t, handler, soap11(`<fibonacci><index>5</index></fibonacci>`), map[string]string{"SOAPAction": `"urn:fibonacci"`})
	if !strings.Contains(body, "<return>5</return>") {
		t.Fatalf("expected success, got %s", body)
	}
	if len(seen) != 1 || seen[0].Operation != "fibonacci" || seen[0].Action != "urn:fibonacci" || seen[0].Version != "1.1" {
		t.Errorf("unexpected message seen by handler: %+v", seen)
	}

	_, body = post(t, handler, soap11(`<fibonacci><index>31</index></fibonacci>`), nil)
	if !strings.Contains(body, "rejected by handler limit") {
		t.Errorf("expected guard rejection, got %s", body)
	}
	if len(seen) != 2 {
		t.Errorf("expected handlers to run in order before the guard, saw %d", len(seen))
	}
}

func TestGetSOAPAction(t *testing.T) {
	addressed := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:wsa="http://www.w3.org/2005/08/addressing">
  <soap:Header><wsa:Action>urn:from-header</wsa:Action></soap:Header>
  <soap:Body/>
</soap:Envelope>`
	doc := etree.NewDocument()
	if err := doc.ReadFromString(addressed); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		version SOAPVersion
		headers map[string]string
		want    string
	}{
		{"soap 1.1 header", SOAP11, map[string]string{"SOAPAction": `"urn:a"`}, "urn:a"},
		{"soap 1.2 content type", SOAP12, map[string]string{"Content-Type": `application/soap+xml; charset=utf-8; action="urn:b"`}, "urn:b"},
		{"addressing fallback", SOAP11, nil, "urn:from-header"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		if got := getSOAPAction(req, tt.version, doc); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`a<b>&"c"'d'`); got != "a&lt;b&gt;&amp;&quot;c&quot;&apos;d&apos;" {
		t.Errorf("unexpected escape result: %s", got)
	}
}

func TestHandler_RequestLogging(t *testing.T) {
	var buf bytes.Buffer
	handler := NewHandler(mustEndpoint(t))
	handler.SetLogger(logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON, Output: &buf}))

	post(t, handler, soap11(`<fibonacci><index>3</index></fibonacci>`), nil)
	post(t, handler, soap11(`<fibonacci><index>-3</index></fibonacci>`), nil)

	out := buf.String()
	if strings.Count(out, `"msg":"soap request"`) != 2 {
		t.Errorf("expected two request log lines, got %s", out)
	}
	if !strings.Contains(out, `"faultMessage":"Index cannot be negative."`) {
		t.Errorf("expected fault to be logged, got %s", out)
	}
}
