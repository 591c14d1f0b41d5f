package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/wsbind/pkg/endpoint"
)

// SchemaValidationError represents a single config validation error.
type SchemaValidationError struct {
	Path    string `json:"path,omitempty"` // Config path, e.g., "services[0].portName"
	Message string `json:"message"`
}

func (e SchemaValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// SchemaValidationResult contains all validation errors for a ProjectConfig.
type SchemaValidationResult struct {
	Errors []SchemaValidationError
}

// IsValid returns true if there are no validation errors.
func (r *SchemaValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message.
func (r *SchemaValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// AddError adds a validation error.
func (r *SchemaValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, SchemaValidationError{Path: path, Message: message})
}

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func projectSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidateSchema checks a decoded YAML document against the embedded JSON Schema.
func ValidateSchema(doc any) *SchemaValidationResult {
	result := &SchemaValidationResult{}

	schema, err := projectSchema()
	if err != nil {
		result.AddError("", err.Error())
		return result
	}

	// Round-trip through JSON so YAML ints and maps become the types the
	// validator expects.
	data, err := json.Marshal(doc)
	if err != nil {
		result.AddError("", fmt.Sprintf("config is not representable as JSON: %v", err))
		return result
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		result.AddError("", err.Error())
		return result
	}

	if err := schema.Validate(normalized); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			collectSchemaErrors(validationErr, result)
		} else {
			result.AddError("", err.Error())
		}
	}
	return result
}

func collectSchemaErrors(err *jsonschema.ValidationError, result *SchemaValidationResult) {
	if len(err.Causes) == 0 {
		result.AddError(pointerToPath(err.InstanceLocation), err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// pointerToPath turns /services/0/url into services[0].url.
func pointerToPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ValidateProjectConfig validates a ProjectConfig structure and returns any errors found.
// It checks the rules a schema cannot express: references between sections,
// qualified names, binding IDs, guard expressions and conflicting binding settings.
func ValidateProjectConfig(cfg *ProjectConfig) *SchemaValidationResult {
	result := &SchemaValidationResult{}

	// Version is required
	if cfg.Version == "" {
		result.AddError("version", "required")
	} else if cfg.Version != "1" {
		result.AddError("version", fmt.Sprintf("unsupported version %q, expected \"1\"", cfg.Version))
	}

	validateServer(&cfg.Server, result)

	validateServerPaths(cfg, result)
	validateTLS(cfg.Server.TLS, result)

	for i, entry := range cfg.Classpath {
		if strings.TrimSpace(entry) == "" {
			result.AddError(fmt.Sprintf("classpath[%d]", i), "must not be empty")
		}
	}

	setNames := make(map[string]bool)
	for i, set := range cfg.Discovery {
		validateDiscoverySet(&set, fmt.Sprintf("discovery[%d]", i), setNames, result)
	}

	serviceNames := make(map[string]bool)
	urls := make(map[string]string)
	for i, svc := range cfg.Services {
		validateService(&svc, fmt.Sprintf("services[%d]", i), serviceNames, urls, setNames, result)
	}

	return result
}

func validateTLS(t *TLSConfig, result *SchemaValidationResult) {
	if t == nil {
		return
	}
	if strings.TrimSpace(t.CertFile) == "" {
		result.AddError("server.tls.certFile", "is required")
	}
	if strings.TrimSpace(t.KeyFile) == "" {
		result.AddError("server.tls.keyFile", "is required")
	}
	if t.CertFile != "" && t.CertFile == t.KeyFile {
		result.AddError("server.tls.keyFile", "must differ from certFile")
	}
}

// validateServerPaths checks that the metrics and status paths are absolute
// and do not collide with each other or with a service url.
func validateServerPaths(cfg *ProjectConfig, result *SchemaValidationResult) {
	taken := make(map[string]string, len(cfg.Services)+2)
	for _, svc := range cfg.Services {
		taken[svc.URL] = "a service url"
	}
	for _, p := range []struct{ field, value string }{
		{"server.metricsPath", cfg.Server.MetricsPath},
		{"server.statusPath", cfg.Server.StatusPath},
	} {
		if p.value == "" {
			continue
		}
		if !strings.HasPrefix(p.value, "/") {
			result.AddError(p.field, "must start with /")
			continue
		}
		if owner, ok := taken[p.value]; ok {
			result.AddError(p.field, fmt.Sprintf("%q is also %s", p.value, owner))
			continue
		}
		taken[p.value] = "the " + p.field + " value"
	}
}

func validateServer(s *ServerConfig, result *SchemaValidationResult) {
	checkDuration("server.readTimeout", s.ReadTimeout, result)
	checkDuration("server.shutdownTimeout", s.ShutdownTimeout, result)
}

func checkDuration(field, value string, result *SchemaValidationResult) {
	if value == "" {
		return
	}
	if d, err := time.ParseDuration(value); err != nil || d < 0 {
		result.AddError(field, fmt.Sprintf("invalid duration %q", value))
	}
}

func validateDiscoverySet(set *DiscoverySet, path string, names map[string]bool, result *SchemaValidationResult) {
	if set.Name == "" {
		result.AddError(path+".name", "required")
	} else if names[set.Name] {
		result.AddError(path+".name", fmt.Sprintf("duplicate discovery set name %q", set.Name))
	} else {
		names[set.Name] = true
	}

	for j, p := range set.Include {
		if !doublestar.ValidatePattern(p) {
			result.AddError(fmt.Sprintf("%s.include[%d]", path, j), fmt.Sprintf("invalid pattern %q", p))
		}
	}
	for j, p := range set.Exclude {
		if !doublestar.ValidatePattern(p) {
			result.AddError(fmt.Sprintf("%s.exclude[%d]", path, j), fmt.Sprintf("invalid pattern %q", p))
		}
	}
}

func validateService(svc *ServiceConfig, path string, names map[string]bool, urls map[string]string, sets map[string]bool, result *SchemaValidationResult) {
	if svc.Name == "" {
		result.AddError(path+".name", "required")
	} else if names[svc.Name] {
		result.AddError(path+".name", fmt.Sprintf("duplicate service name %q", svc.Name))
	} else {
		names[svc.Name] = true
	}

	if svc.Impl == "" {
		result.AddError(path+".impl", "required")
	}

	switch {
	case svc.URL == "":
		result.AddError(path+".url", "required")
	case !strings.HasPrefix(svc.URL, "/"):
		result.AddError(path+".url", "must start with /")
	default:
		if other, dup := urls[svc.URL]; dup {
			result.AddError(path+".url", fmt.Sprintf("url %q already used by service %q", svc.URL, other))
		} else {
			urls[svc.URL] = svc.Name
		}
	}

	if svc.ServiceName != "" {
		if _, err := endpoint.ParseQName(svc.ServiceName); err != nil {
			result.AddError(path+".serviceName", err.Error())
		}
	}
	if svc.PortName != "" {
		if _, err := endpoint.ParseQName(svc.PortName); err != nil {
			result.AddError(path+".portName", err.Error())
		}
	}

	if svc.BindingID != "" {
		if _, err := endpoint.ParseBindingID(svc.BindingID); err != nil {
			result.AddError(path+".bindingID", fmt.Sprintf("unknown binding %q", svc.BindingID))
		}
	}
	if svc.Binding != nil {
		if _, err := endpoint.ParseBindingID(svc.Binding.ID); err != nil {
			result.AddError(path+".binding.id", fmt.Sprintf("unknown binding %q", svc.Binding.ID))
		}
		if svc.BindingID != "" {
			result.AddError(path+".binding", "cannot be combined with bindingID")
		}
		if svc.Features != nil {
			result.AddError(path+".binding", "cannot be combined with features")
		}
		validateFeatures(svc.Binding.Features, path+".binding.features", result)
	}
	validateFeatures(svc.Features, path+".features", result)

	for j, h := range svc.Handlers {
		if _, err := endpoint.NewGuardHandler(h.Name, h.Guard); err != nil {
			result.AddError(fmt.Sprintf("%s.handlers[%d].guard", path, j), err.Error())
		}
	}

	if svc.MetadataFrom != "" && !sets[svc.MetadataFrom] {
		result.AddError(path+".metadataFrom", fmt.Sprintf("unknown discovery set %q", svc.MetadataFrom))
	}
}

func validateFeatures(features []FeatureConfig, path string, result *SchemaValidationResult) {
	for j, f := range features {
		if _, err := featureOf(f); err != nil {
			result.AddError(fmt.Sprintf("%s[%d].name", path, j), err.Error())
		}
	}
}

// featureOf maps a configured feature onto an endpoint feature.
func featureOf(f FeatureConfig) (endpoint.Feature, error) {
	switch strings.ToLower(f.Name) {
	case "mtom", strings.ToLower(endpoint.FeatureMTOM):
		return endpoint.MTOM(f.Enabled), nil
	case "addressing", "wsaddressing", strings.ToLower(endpoint.FeatureAddressing):
		return endpoint.Addressing(f.Enabled), nil
	}
	return endpoint.Feature{}, fmt.Errorf("unknown feature %q", f.Name)
}
