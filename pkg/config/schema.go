package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrEmptyFile    = errors.New("configuration file is empty")
)

// ConfigEnvVar overrides config discovery.
const ConfigEnvVar = "WSBIND_CONFIG"

// ProjectConfigDiscoveryOrder lists the file names tried in the current directory.
var ProjectConfigDiscoveryOrder = []string{"wsbind.yaml", "wsbind.yml", ".wsbind.yaml"}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadProjectConfig loads a config from the given path, applying environment
// variable substitution and schema validation. If path is empty, it tries to
// discover a config file. Relative paths inside the file are resolved
// against the file's directory.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	if path == "" {
		discovered, err := DiscoverProjectConfig()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := LoadProjectConfigFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(abs))
	return cfg, nil
}

// LoadProjectConfigFromBytes loads a config from raw bytes, applying
// environment variable substitution and schema validation.
func LoadProjectConfigFromBytes(data []byte) (*ProjectConfig, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyFile
	}

	expanded := []byte(ExpandEnvVars(string(data)))

	var raw any
	if err := yaml.Unmarshal(expanded, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if result := ValidateSchema(raw); !result.IsValid() {
		return nil, result
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// DiscoverProjectConfig finds a config file in the current directory or via
// WSBIND_CONFIG. Returns the path to the config file, or an error if none is found.
func DiscoverProjectConfig() (string, error) {
	if envPath := os.Getenv(ConfigEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%s points to non-existent file: %s", ConfigEnvVar, envPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	for _, name := range ProjectConfigDiscoveryOrder {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: no wsbind.yaml in %s, specify --config", ErrFileNotFound, cwd)
}

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}

		return defaultVal
	})
}

// MergeProjectConfigs merges multiple configs together.
// Later configs override earlier ones. Services and discovery sets merge by name;
// classpath entries are appended without duplicates.
func MergeProjectConfigs(configs ...*ProjectConfig) *ProjectConfig {
	if len(configs) == 0 {
		return nil
	}

	result := &ProjectConfig{Version: "1"}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		if cfg.Version != "" {
			result.Version = cfg.Version
		}
		if cfg.Logging.Level != "" {
			result.Logging.Level = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" {
			result.Logging.Format = cfg.Logging.Format
		}
		if cfg.Logging.File != "" {
			result.Logging.File = cfg.Logging.File
		}
		if cfg.Server.Listen != "" {
			result.Server.Listen = cfg.Server.Listen
		}
		if cfg.Server.ReadTimeout != "" {
			result.Server.ReadTimeout = cfg.Server.ReadTimeout
		}
		if cfg.Server.ShutdownTimeout != "" {
			result.Server.ShutdownTimeout = cfg.Server.ShutdownTimeout
		}
		if cfg.Server.MetricsPath != "" {
			result.Server.MetricsPath = cfg.Server.MetricsPath
		}
		if cfg.Server.StatusPath != "" {
			result.Server.StatusPath = cfg.Server.StatusPath
		}
		if cfg.Server.TLS != nil {
			result.Server.TLS = cfg.Server.TLS
		}
		if cfg.WebRoot != "" {
			result.WebRoot = cfg.WebRoot
		}

		result.Classpath = mergeClasspath(result.Classpath, cfg.Classpath)
		result.Discovery = mergeByName(result.Discovery, cfg.Discovery, func(d DiscoverySet) string { return d.Name })
		result.Services = mergeByName(result.Services, cfg.Services, func(s ServiceConfig) string { return s.Name })
	}

	return result
}

func mergeClasspath(base, overlay []string) []string {
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		seen[e] = true
	}
	for _, e := range overlay {
		if !seen[e] {
			base = append(base, e)
			seen[e] = true
		}
	}
	return base
}

// mergeByName replaces entries with the same name and appends new ones.
func mergeByName[T any](base, overlay []T, name func(T) string) []T {
	byName := make(map[string]int)
	for i, v := range base {
		byName[name(v)] = i
	}

	for _, v := range overlay {
		if idx, exists := byName[name(v)]; exists {
			base[idx] = v
		} else {
			base = append(base, v)
			byName[name(v)] = len(base) - 1
		}
	}

	return base
}

// LoadAndMergeProjectConfigs loads multiple config files and merges them together.
// Files are loaded in order, with later files overriding earlier ones.
func LoadAndMergeProjectConfigs(paths []string) (*ProjectConfig, error) {
	if len(paths) == 0 {
		return nil, errors.New("no config files specified")
	}

	var configs []*ProjectConfig
	for _, path := range paths {
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		configs = append(configs, cfg)
	}

	return MergeProjectConfigs(configs...), nil
}

// resolvePaths makes file paths relative to dir absolute.
func (c *ProjectConfig) resolvePaths(dir string) {
	for i, entry := range c.Classpath {
		c.Classpath[i] = ResolvePath(dir, entry)
	}
	if c.WebRoot != "" {
		c.WebRoot = ResolvePath(dir, c.WebRoot)
	}
	if c.Logging.File != "" {
		c.Logging.File = ResolvePath(dir, c.Logging.File)
	}
	if t := c.Server.TLS; t != nil {
		t.CertFile = ResolvePath(dir, t.CertFile)
		t.KeyFile = ResolvePath(dir, t.KeyFile)
	}
}

// ResolvePath resolves a potentially relative path against a base directory.
func ResolvePath(basePath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	// Handle ~ expansion
	if strings.HasPrefix(targetPath, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, targetPath[2:])
		}
	}
	return filepath.Join(basePath, targetPath)
}
