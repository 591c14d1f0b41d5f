// Package soap serves bound endpoints over HTTP.
//
// A Handler serves a single endpoint:
//
//   - GET ?wsdl returns the primary WSDL
//   - GET ?xsd=<name> returns a metadata document by file name
//   - POST dispatches a SOAP 1.1 or 1.2 request
//
// A request runs through the binding's handler chain in order and then the
// endpoint's invoker. The first child of the SOAP Body names the operation.
// Any error becomes a SOAP fault; an *endpoint.Fault keeps its code, message
// and detail.
//
// Fault codes are translated between SOAP versions:
//   - soap:Client -> soap:Sender (SOAP 1.2)
//   - soap:Server -> soap:Receiver (SOAP 1.2)
//
// A Servlet routes many endpoints by URL path:
//
//	servlet := soap.NewServlet(log)
//	if err := servlet.Bind("/service/fibonacci", ep); err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", servlet)
//
// SetMetrics records per-endpoint request counts and latencies, and
// StatusHandler lists the bound endpoints as JSON.
package soap
