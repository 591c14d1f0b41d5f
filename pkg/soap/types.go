package soap

// SOAPVersion represents the SOAP protocol version.
type SOAPVersion string

const (
	// SOAP11 represents SOAP 1.1 protocol.
	SOAP11 SOAPVersion = "1.1"
	// SOAP12 represents SOAP 1.2 protocol.
	SOAP12 SOAPVersion = "1.2"
)

// SOAP namespace URIs
const (
	SOAP11Namespace = "http://schemas.xmlsoap.org/soap/envelope/"
	SOAP12Namespace = "http://www.w3.org/2003/05/soap-envelope"
)

// WS-Addressing namespace, used to read the action from the SOAP header.
const AddressingNamespace = "http://www.w3.org/2005/08/addressing"

// ContentTypes for SOAP versions
const (
	SOAP11ContentType = "text/xml; charset=utf-8"
	SOAP12ContentType = "application/soap+xml; charset=utf-8"
)

// Fault codes that exist in both versions but are spelled differently.
const (
	faultVersionMismatch = "soap:VersionMismatch"
	faultMustUnderstand  = "soap:MustUnderstand"
)

// maxSOAPBodySize bounds request bodies to prevent memory exhaustion.
const maxSOAPBodySize = 10 << 20 // 10MB

// contentType returns the response content type for v.
func (v SOAPVersion) contentType() string {
	if v == SOAP12 {
		return SOAP12ContentType
	}
	return SOAP11ContentType
}

// namespace returns the envelope namespace for v.
func (v SOAPVersion) namespace() string {
	if v == SOAP12 {
		return SOAP12Namespace
	}
	return SOAP11Namespace
}
