package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Namespaces of the SOAP address extensibility elements in a WSDL port.
const (
	WSDLSOAP11Namespace = "http://schemas.xmlsoap.org/wsdl/soap/"
	WSDLSOAP12Namespace = "http://schemas.xmlsoap.org/wsdl/soap12/"
)

// ErrNotDescriptor is returned by Sniff when the root element is neither a
// WSDL definitions nor an XML Schema.
var ErrNotDescriptor = errors.New("not a WSDL or XML Schema document")

// Metadata summarizes a descriptor document.
type Metadata struct {
	Kind            Kind
	Name            string
	TargetNamespace string
	Services        []ServiceInfo
}

// ServiceInfo is a wsdl:service declaration.
type ServiceInfo struct {
	Name  string
	Ports []PortInfo
}

// PortInfo is a wsdl:port declaration.
type PortInfo struct {
	Name        string
	Binding     string
	Address     string
	SOAPVersion string // "1.1", "1.2" or "" for non-SOAP ports
}

// HasPort reports whether the metadata declares port inside service, both
// matched by local name within the document's target namespace.
func (m *Metadata) HasPort(service, port string) bool {
	for _, s := range m.Services {
		if s.Name != service {
			continue
		}
		if port == "" {
			return true
		}
		for _, p := range s.Ports {
			if p.Name == port {
				return true
			}
		}
	}
	return false
}

// Sniff parses doc and extracts its descriptor metadata.
func Sniff(doc *Document) (*Metadata, error) {
	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	x := etree.NewDocument()
	if _, err := x.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", doc.Locator(), err)
	}

	root := x.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotDescriptor, doc.Locator())
	}

	meta := &Metadata{
		Name:            root.SelectAttrValue("name", ""),
		TargetNamespace: root.SelectAttrValue("targetNamespace", ""),
	}
	switch root.Tag {
	case "definitions":
		meta.Kind = KindWSDL
		meta.Services = parseServices(root)
	case "schema":
		meta.Kind = KindSchema
	default:
		return nil, fmt.Errorf("%w: root element <%s>", ErrNotDescriptor, root.Tag)
	}
	return meta, nil
}

func parseServices(root *etree.Element) []ServiceInfo {
	var services []ServiceInfo
	for _, svcEl := range childElements(root, "service") {
		svc := ServiceInfo{Name: svcEl.SelectAttrValue("name", "")}
		for _, portEl := range childElements(svcEl, "port") {
			port := PortInfo{
				Name:    portEl.SelectAttrValue("name", ""),
				Binding: stripPrefix(portEl.SelectAttrValue("binding", "")),
			}
			for _, addr := range childElements(portEl, "address") {
				port.Address = addr.SelectAttrValue("location", "")
				switch addr.NamespaceURI() {
				case WSDLSOAP11Namespace:
					port.SOAPVersion = "1.1"
				case WSDLSOAP12Namespace:
					port.SOAPVersion = "1.2"
				}
			}
			svc.Ports = append(svc.Ports, port)
		}
		services = append(services, svc)
	}
	return services
}

// childElements returns direct children matching a local name, regardless of prefix.
func childElements(parent *etree.Element, localName string) []*etree.Element {
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == localName {
			out = append(out, child)
		}
	}
	return out
}

func stripPrefix(qname string) string {
	if idx := strings.LastIndex(qname, ":"); idx >= 0 {
		return qname[idx+1:]
	}
	return qname
}
