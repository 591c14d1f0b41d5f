// Package descriptor discovers and reads service descriptor documents (WSDL
// and XML Schema files).
//
// Documents are identified by a Locator, either a plain file or an entry inside
// a possibly nested archive:
//
//	file:/srv/app/sample/wsdl/SampleService.wsdl
//	jar:file:/srv/app.jar!/BOOT-INF/lib/contracts.jar!/sample/xsd/Types.xsd
//
// # Discovery
//
// Discover resolves a base name through a Loader (usually a Classpath) and
// walks everything below it:
//
//	cp := descriptor.NewClasspath("build/classes", "lib/contracts.jar")
//	docs := descriptor.Discover("sample", cp)
//	primary, _ := docs.Lookup(cp, "sample/wsdl/SampleService.wsdl")
//
// Only files ending in ".wsdl" or ".xsd" are collected. Discovery never fails:
// a missing base, an unreadable directory or a corrupt archive simply leaves
// the corresponding documents out of the Result.
//
// # Archives
//
// Archive locators may reach into archives stored inside other archives. Each
// level is separated by "!". When traversing, the first entry matching a
// nested archive name wins; duplicates later in the same archive are ignored.
package descriptor
