// Package cli provides the command-line interface for wsbind.
//
// Commands:
//   - serve: Assemble the configured endpoints and serve them over HTTP
//   - validate: Check a project file and, optionally, assemble every endpoint
//   - discover: List the descriptor documents found below a classpath base
//   - impls: List the registered service implementations
//   - version: Show wsbind version
//
// Every command that reads a project file accepts --config (repeatable, later
// files override earlier ones). Without it, wsbind.yaml is discovered in the
// current directory or taken from WSBIND_CONFIG.
package cli
