package soap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/getmockd/wsbind/pkg/descriptor"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/logging"
	"github.com/getmockd/wsbind/pkg/util"
)

// Handler serves one bound endpoint over HTTP.
type Handler struct {
	ep *endpoint.BoundEndpoint

	loggerMu sync.RWMutex
	log      *slog.Logger
}

// NewHandler creates a handler for ep.
func NewHandler(ep *endpoint.BoundEndpoint) *Handler {
	return &Handler{ep: ep, log: logging.Nop()}
}

// Endpoint returns the served endpoint.
func (h *Handler) Endpoint() *endpoint.BoundEndpoint {
	return h.ep
}

// SetLogger sets the logger used for request logging.
func (h *Handler) SetLogger(log *slog.Logger) {
	h.loggerMu.Lock()
	defer h.loggerMu.Unlock()
	h.log = log
}

func (h *Handler) logger() *slog.Logger {
	h.loggerMu.RLock()
	defer h.loggerMu.RUnlock()
	if h.log == nil {
		return logging.Nop()
	}
	return h.log
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Metadata requests: ?wsdl (case-insensitive) and ?xsd=<name>
	for key, values := range r.URL.Query() {
		switch {
		case strings.EqualFold(key, "wsdl"):
			h.serveDocument(w, r, h.ep.PrimaryWSDL())
			return
		case strings.EqualFold(key, "xsd"):
			var doc *descriptor.Document
			if len(values) > 0 {
				doc, _ = h.ep.Document(values[0])
			}
			h.serveDocument(w, r, doc)
			return
		}
	}

	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	startTime := time.Now()
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSOAPBodySize+1))
	if err != nil {
		h.writeFault(w, r, startTime, "", body, SOAP11, &endpoint.Fault{
			Code:    endpoint.FaultClient,
			Message: "Failed to read request body",
		})
		return
	}
	if len(body) > maxSOAPBodySize {
		h.writeFaultStatus(w, r, startTime, "", nil, SOAP11, http.StatusRequestEntityTooLarge, &endpoint.Fault{
			Code:    endpoint.FaultClient,
			Message: fmt.Sprintf("Request body exceeds %d bytes", maxSOAPBodySize),
		})
		return
	}

	doc, err := parseEnvelope(body)
	if err != nil {
		h.writeFault(w, r, startTime, "", body, SOAP11, &endpoint.Fault{
			Code:    endpoint.FaultClient,
			Message: "Failed to parse SOAP envelope: " + err.Error(),
		})
		return
	}

	version := detectSOAPVersion(doc)
	if want := h.ep.Binding().ID().SOAPVersion(); want != "" && want != string(version) {
		h.writeFault(w, r, startTime, "", body, version, &endpoint.Fault{
			Code:    faultVersionMismatch,
			Message: fmt.Sprintf("Endpoint expects SOAP %s, got SOAP %s", want, version),
		})
		return
	}

	if name := notUnderstood(doc); name != "" {
		h.writeFault(w, r, startTime, "", body, version, &endpoint.Fault{
			Code:    faultMustUnderstand,
			Message: "Header not understood: " + name,
		})
		return
	}

	payload, err := extractPayload(doc)
	if err != nil {
		h.writeFault(w, r, startTime, "", body, version, &endpoint.Fault{
			Code:    endpoint.FaultClient,
			Message: "Failed to determine operation: " + err.Error(),
		})
		return
	}

	msg := &endpoint.Message{
		Operation: payload.Tag,
		Action:    getSOAPAction(r, version, doc),
		Version:   string(version),
		Header:    r.Header,
		Envelope:  doc,
		Payload:   payload,
	}

	for _, handler := range h.ep.Binding().HandlerChain() {
		if err := handler.HandleMessage(r.Context(), msg); err != nil {
			h.writeFault(w, r, startTime, msg.Operation, body, version, toFault(err, msg.Operation))
			return
		}
	}

	resp, err := h.ep.Invoker().Invoke(r.Context(), msg.Operation, msg.Payload)
	if err != nil {
		h.writeFault(w, r, startTime, msg.Operation, body, version, toFault(err, msg.Operation))
		return
	}

	out, err := buildEnvelope(version, resp)
	if err != nil {
		h.writeFault(w, r, startTime, msg.Operation, body, version, &endpoint.Fault{
			Code:    endpoint.FaultServer,
			Message: "Failed to build response: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", version.contentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
	h.logRequest(r, startTime, msg.Operation, body, out, http.StatusOK)
}

// serveDocument serves a descriptor document.
func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request, doc *descriptor.Document) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if doc == nil {
		h.writeError(w, http.StatusNotFound, "Document not available")
		return
	}

	data, err := doc.ReadAll()
	if err != nil {
		h.logger().Warn("failed to read descriptor", "document", doc.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Document not readable")
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseEnvelope parses a SOAP envelope from the request body.
func parseEnvelope(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty document")
	}

	if root.Tag != "Envelope" {
		return nil, fmt.Errorf("root element must be Envelope, got %s", root.Tag)
	}

	return doc, nil
}

// detectSOAPVersion detects the SOAP version from the envelope namespace.
func detectSOAPVersion(doc *etree.Document) SOAPVersion {
	root := doc.Root()
	if root == nil {
		return SOAP11
	}

	if root.NamespaceURI() == SOAP12Namespace {
		return SOAP12
	}

	return SOAP11
}

// getSOAPAction extracts the action from the request: the Content-Type
// action parameter for SOAP 1.2, the SOAPAction header for SOAP 1.1, and the
// WS-Addressing Action header as a fallback.
func getSOAPAction(r *http.Request, version SOAPVersion, doc *etree.Document) string {
	if version == SOAP12 {
		for _, part := range strings.Split(r.Header.Get("Content-Type"), ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "action=") {
				return strings.Trim(strings.TrimPrefix(part, "action="), "\"")
			}
		}
	}

	if action := strings.Trim(r.Header.Get("SOAPAction"), "\""); action != "" {
		return action
	}

	header := childByLocalName(doc.Root(), "Header")
	if action := childByLocalName(header, "Action"); action != nil && action.NamespaceURI() == AddressingNamespace {
		return strings.TrimSpace(action.Text())
	}
	return ""
}

// notUnderstood returns the name of the first header block that must be
// understood but is not. Only WS-Addressing headers are understood.
func notUnderstood(doc *etree.Document) string {
	header := childByLocalName(doc.Root(), "Header")
	if header == nil {
		return ""
	}
	for _, block := range header.ChildElements() {
		if block.NamespaceURI() == AddressingNamespace {
			continue
		}
		for _, attr := range block.Attr {
			if attr.Key == "mustUnderstand" && (attr.Value == "1" || attr.Value == "true") {
				return block.Tag
			}
		}
	}
	return ""
}

// extractPayload returns the first child of the SOAP Body.
func extractPayload(doc *etree.Document) (*etree.Element, error) {
	body := childByLocalName(doc.Root(), "Body")
	if body == nil {
		return nil, errors.New("SOAP Body not found")
	}

	children := body.ChildElements()
	if len(children) == 0 {
		return nil, errors.New("no operation element found in Body")
	}
	return children[0], nil
}

// toFault maps an error from a handler or the invoker to a fault.
func toFault(err error, operation string) *endpoint.Fault {
	var fault *endpoint.Fault
	if errors.As(err, &fault) {
		return fault
	}
	if errors.Is(err, endpoint.ErrUnknownOperation) {
		return &endpoint.Fault{Code: endpoint.FaultClient, Message: "Unknown operation: " + operation}
	}
	return &endpoint.Fault{Code: endpoint.FaultServer, Message: err.Error()}
}

// buildEnvelope wraps the response payload in a SOAP envelope.
func buildEnvelope(version SOAPVersion, payload *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", version.namespace())
	body := env.CreateElement("soap:Body")
	if payload != nil {
		body.AddChild(payload.Copy())
	}
	return doc.WriteToBytes()
}

// writeFault writes a SOAP fault response and logs the request.
func (h *Handler) writeFault(w http.ResponseWriter, r *http.Request, startTime time.Time, operation string, requestBody []byte, version SOAPVersion, fault *endpoint.Fault) {
	h.writeFaultStatus(w, r, startTime, operation, requestBody, version, http.StatusInternalServerError, fault)
}

func (h *Handler) writeFaultStatus(w http.ResponseWriter, r *http.Request, startTime time.Time, operation string, requestBody []byte, version SOAPVersion, status int, fault *endpoint.Fault) {
	var faultXML []byte
	if version == SOAP12 {
		faultXML = buildFault12(fault)
	} else {
		faultXML = buildFault11(fault)
	}

	w.Header().Set("Content-Type", version.contentType())
	w.WriteHeader(status)
	_, _ = w.Write(faultXML)

	h.logRequest(r, startTime, operation, requestBody, faultXML, status,
		"faultCode", fault.Code,
		"faultMessage", fault.Message,
	)
}

// buildFault11 builds a SOAP 1.1 fault response.
func buildFault11(fault *endpoint.Fault) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString(`<soap:Envelope xmlns:soap="` + SOAP11Namespace + `">`)
	buf.WriteString(`<soap:Body>`)
	buf.WriteString(`<soap:Fault>`)
	buf.WriteString(`<faultcode>` + escapeXML(fault.Code) + `</faultcode>`)
	buf.WriteString(`<faultstring>` + escapeXML(fault.Message) + `</faultstring>`)
	if fault.Detail != "" {
		buf.WriteString(`<detail>` + escapeXML(fault.Detail) + `</detail>`)
	}
	buf.WriteString(`</soap:Fault>`)
	buf.WriteString(`</soap:Body>`)
	buf.WriteString(`</soap:Envelope>`)
	return buf.Bytes()
}

// buildFault12 builds a SOAP 1.2 fault response.
func buildFault12(fault *endpoint.Fault) []byte {
	// Map common fault codes to SOAP 1.2 codes
	code := fault.Code
	switch code {
	case endpoint.FaultClient, "Client":
		code = "soap:Sender"
	case endpoint.FaultServer, "Server":
		code = "soap:Receiver"
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString(`<soap:Envelope xmlns:soap="` + SOAP12Namespace + `">`)
	buf.WriteString(`<soap:Body>`)
	buf.WriteString(`<soap:Fault>`)
	buf.WriteString(`<soap:Code><soap:Value>` + escapeXML(code) + `</soap:Value></soap:Code>`)
	buf.WriteString(`<soap:Reason><soap:Text xml:lang="en">` + escapeXML(fault.Message) + `</soap:Text></soap:Reason>`)
	if fault.Detail != "" {
		buf.WriteString(`<soap:Detail>` + escapeXML(fault.Detail) + `</soap:Detail>`)
	}
	buf.WriteString(`</soap:Fault>`)
	buf.WriteString(`</soap:Body>`)
	buf.WriteString(`</soap:Envelope>`)
	return buf.Bytes()
}

// logRequest logs one dispatched request at debug level.
func (h *Handler) logRequest(r *http.Request, startTime time.Time, operation string, requestBody, responseBody []byte, status int, extra ...any) {
	log := h.logger()
	if !log.Enabled(r.Context(), slog.LevelDebug) {
		return
	}
	args := []any{
		"endpoint", h.ep.ID(),
		"path", r.URL.Path,
		"operation", operation,
		"status", status,
		"durationMs", time.Since(startTime).Milliseconds(),
		"remoteAddr", r.RemoteAddr,
		"requestBody", util.TruncateBody(string(requestBody), 0),
		"responseBody", util.TruncateBody(string(responseBody), 0),
	}
	log.Debug("soap request", append(args, extra...)...)
}

// writeError writes an HTTP error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// escapeXML escapes special XML characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

// childByLocalName returns the first child element of parent with the given
// local name, whatever its prefix.
func childByLocalName(parent *etree.Element, local string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if child.Tag == local {
			return child
		}
	}
	return nil
}
