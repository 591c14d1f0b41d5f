// Package config loads wsbind project configuration and assembles the
// configured endpoints.
//
// A project file (wsbind.yaml) names the classpath and web root that
// descriptor documents are resolved against, sets of discovered documents,
// and the services to bind:
//
//	version: "1"
//	classpath:
//	  - ./classes
//	  - ./lib/contracts.jar
//	discovery:
//	  - name: contracts
//	    base: sample
//	    include: ["**/*.xsd", "**/*.wsdl"]
//	services:
//	  - name: fibonacci
//	    impl: fibonacci
//	    url: /service/fibonacci
//	    primaryWsdl: sample/wsdl/SampleService.wsdl
//	    metadataFrom: contracts
//
// Loading applies ${VAR} and ${VAR:-default} substitution, then checks the
// document against an embedded JSON Schema. ValidateProjectConfig adds the
// checks a schema cannot express, and Build turns a valid config into
// unmaterialized endpoint.Service values.
package config
