package endpoint

import (
	"strings"
	"sync"
)

// BindingID identifies the protocol binding of an endpoint.
type BindingID string

// Standard binding IDs.
const (
	SOAP11HTTP     BindingID = "http://schemas.xmlsoap.org/wsdl/soap/http"
	SOAP12HTTP     BindingID = "http://www.w3.org/2003/05/soap/bindings/HTTP/"
	SOAP11HTTPMTOM BindingID = SOAP11HTTP + "?mtom=true"
	SOAP12HTTPMTOM BindingID = SOAP12HTTP + "?mtom=true"
	HTTP           BindingID = "http://www.w3.org/2004/08/wsdl/http"
)

var bindingTokens = map[string]BindingID{
	"##SOAP11_HTTP":      SOAP11HTTP,
	"##SOAP12_HTTP":      SOAP12HTTP,
	"##SOAP11_HTTP_MTOM": SOAP11HTTPMTOM,
	"##SOAP12_HTTP_MTOM": SOAP12HTTPMTOM,
	"##XML_HTTP":         HTTP,
}

// ParseBindingID parses a binding URI or one of the ##SOAP11_HTTP style tokens.
func ParseBindingID(s string) (BindingID, error) {
	s = strings.TrimSpace(s)
	if id, ok := bindingTokens[s]; ok {
		return id, nil
	}
	switch id := BindingID(s); id {
	case SOAP11HTTP, SOAP12HTTP, SOAP11HTTPMTOM, SOAP12HTTPMTOM, HTTP:
		return id, nil
	}
	return "", &InvalidConfigurationError{Field: "bindingID", Reason: "unknown binding", Value: s}
}

// SOAPVersion returns "1.1" or "1.2" for SOAP bindings and "" otherwise.
func (b BindingID) SOAPVersion() string {
	switch {
	case strings.HasPrefix(string(b), string(SOAP11HTTP)):
		return "1.1"
	case strings.HasPrefix(string(b), string(SOAP12HTTP)):
		return "1.2"
	default:
		return ""
	}
}

// MTOM reports whether the binding ID enables MTOM.
func (b BindingID) MTOM() bool {
	return strings.HasSuffix(string(b), "?mtom=true")
}

// Well-known feature IDs.
const (
	FeatureMTOM       = "http://www.w3.org/2004/08/soap/features/http-optimization"
	FeatureAddressing = "http://www.w3.org/2005/08/addressing/module"
)

// Feature is a binding feature switched on or off.
type Feature struct {
	ID      string
	Enabled bool
}

// MTOM returns the MTOM feature.
func MTOM(enabled bool) Feature {
	return Feature{ID: FeatureMTOM, Enabled: enabled}
}

// Addressing returns the WS-Addressing feature.
func Addressing(enabled bool) Feature {
	return Feature{ID: FeatureAddressing, Enabled: enabled}
}

// Binding is the protocol configuration attached to an endpoint: binding
// ID, features and the handler chain.
type Binding struct {
	id       BindingID
	features []Feature

	mu    sync.RWMutex
	chain []Handler
}

// NewBinding creates a binding. An MTOM binding ID implies an enabled MTOM
// feature unless features say otherwise.
func NewBinding(id BindingID, features ...Feature) *Binding {
	b := &Binding{id: id}
	if id.MTOM() {
		b.features = append(b.features, MTOM(true))
	}
	for _, f := range features {
		b.setFeature(f)
	}
	return b
}

func (b *Binding) setFeature(f Feature) {
	for i := range b.features {
		if b.features[i].ID == f.ID {
			b.features[i] = f
			return
		}
	}
	b.features = append(b.features, f)
}

// ID returns the binding ID.
func (b *Binding) ID() BindingID {
	return b.id
}

// Features returns a copy of the binding features.
func (b *Binding) Features() []Feature {
	out := make([]Feature, len(b.features))
	copy(out, b.features)
	return out
}

// Feature returns the feature with the given ID.
func (b *Binding) Feature(id string) (Feature, bool) {
	for _, f := range b.features {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// HandlerChain returns a copy of the handler chain.
func (b *Binding) HandlerChain() []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, len(b.chain))
	copy(out, b.chain)
	return out
}

// SetHandlerChain replaces the handler chain.
func (b *Binding) SetHandlerChain(chain []Handler) {
	cp := make([]Handler, len(chain))
	copy(cp, chain)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chain = cp
}
