// Package endpoint assembles SOAP service endpoints from loosely typed
// configuration.
//
// A Service gathers the implementation, names, binding, handlers and
// descriptor documents of one endpoint:
//
//	svc := endpoint.NewService()
//	svc.SetImpl(sample.Fibonacci())
//	svc.SetServiceName(endpoint.QName{Space: ns, Local: "SampleService"})
//	svc.SetPortName(endpoint.QName{Space: ns, Local: "FibonacciPort"})
//	svc.SetPrimaryWSDL("sample/wsdl/SampleService.wsdl")
//	ep, err := svc.Materialize()
//
// Descriptor values may be text paths, locators, URLs or documents. Text
// paths are looked up in the web context, then through the implementation's
// loader, then parsed as absolute locators.
//
// Materialize validates and fills in defaults the first time it is called
// and returns the same *BoundEndpoint on every later call, including calls
// racing with the first one.
package endpoint
