package config

// ProjectConfig is the root configuration structure for wsbind.yaml files.
type ProjectConfig struct {
	// Version is the config format version (required, currently "1")
	Version string `json:"version" yaml:"version"`

	// Logging configures the process logger
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`

	// Server configures the HTTP listener
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Classpath lists directories and archives searched for library
	// resources, in order. Nested archives are written app.jar!/lib/inner.jar.
	Classpath []string `json:"classpath,omitempty" yaml:"classpath,omitempty"`

	// WebRoot is the web application directory, if any
	WebRoot string `json:"webRoot,omitempty" yaml:"webRoot,omitempty"`

	// Discovery defines named sets of discovered descriptor documents
	Discovery []DiscoverySet `json:"discovery,omitempty" yaml:"discovery,omitempty"`

	// Services defines the endpoints to assemble
	Services []ServiceConfig `json:"services,omitempty" yaml:"services,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// File receives a copy of every log record
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Listen is the listen address (default ":8080")
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`

	// ReadTimeout and ShutdownTimeout are Go durations, e.g. "30s"
	ReadTimeout     string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// MetricsPath serves Prometheus metrics at this path when set, e.g. "/metrics"
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`

	// StatusPath serves the bound endpoints as JSON when set, e.g. "/_wsbind/endpoints"
	StatusPath string `json:"statusPath,omitempty" yaml:"statusPath,omitempty"`

	// TLS serves HTTPS when set.
	TLS *TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig names the server certificate and key files.
type TLSConfig struct {
	CertFile string `json:"certFile" yaml:"certFile"`
	KeyFile  string `json:"keyFile" yaml:"keyFile"`

	// AutoGenerate creates a self-signed pair at CertFile and KeyFile when
	// neither exists.
	AutoGenerate bool `json:"autoGenerate,omitempty" yaml:"autoGenerate,omitempty"`

	// Hosts the generated certificate is valid for. Defaults to localhost.
	Hosts []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
}

// DiscoverySet collects every descriptor below Base on the classpath,
// optionally narrowed by glob patterns on the document path.
type DiscoverySet struct {
	Name    string   `json:"name" yaml:"name"`
	Base    string   `json:"base" yaml:"base"`
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// ServiceConfig defines one endpoint.
type ServiceConfig struct {
	// Name is the unique identifier for this service (required)
	Name string `json:"name" yaml:"name"`

	// Impl names the registered implementation (required)
	Impl string `json:"impl" yaml:"impl"`

	// URL is the path the endpoint is served at (required)
	URL string `json:"url" yaml:"url"`

	// ServiceName and PortName are qualified names in {namespace}local form
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	PortName    string `json:"portName,omitempty" yaml:"portName,omitempty"`

	// Binding configures a prebuilt binding. It cannot be combined with
	// BindingID or Features.
	Binding *BindingConfig `json:"binding,omitempty" yaml:"binding,omitempty"`

	// BindingID is a binding URI or a ##SOAP11_HTTP style token
	BindingID string `json:"bindingID,omitempty" yaml:"bindingID,omitempty"`

	// Features switches binding features on or off
	Features []FeatureConfig `json:"features,omitempty" yaml:"features,omitempty"`

	// Handlers are appended to the binding's handler chain in order
	Handlers []HandlerConfig `json:"handlers,omitempty" yaml:"handlers,omitempty"`

	// PrimaryWSDL is a classpath path, web path or absolute locator
	PrimaryWSDL string `json:"primaryWsdl,omitempty" yaml:"primaryWsdl,omitempty"`

	// Metadata lists additional documents the same way
	Metadata []string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// MetadataFrom names a discovery set whose documents become metadata
	MetadataFrom string `json:"metadataFrom,omitempty" yaml:"metadataFrom,omitempty"`

	// Catalog overrides the default entity catalog lookup
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
}

// BindingConfig describes a prebuilt binding.
type BindingConfig struct {
	ID       string          `json:"id" yaml:"id"`
	Features []FeatureConfig `json:"features,omitempty" yaml:"features,omitempty"`
}

// FeatureConfig switches a binding feature.
type FeatureConfig struct {
	// Name is mtom, addressing or a feature URI
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// HandlerConfig defines a guard handler.
type HandlerConfig struct {
	Name string `json:"name" yaml:"name"`

	// Guard is a boolean expression; the message is rejected when it is false
	Guard string `json:"guard" yaml:"guard"`
}
