// Package config loads the client configuration: the service endpoint
// registry, the current-semester label used as a normalization default, and
// HTTP behavior knobs. Configuration is resolved once at startup
// (defaults, then optional yaml file, then P2P_* environment overrides)
// and is immutable for the lifetime of the process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Hardcoded HTTPS fallbacks used when neither the config file nor the
// environment supplies a service URL.
const (
	DefaultCompositeServiceURL = "https://composite-service-1081353560639.us-central1.run.app"
	DefaultAuthServiceURL      = "https://auth-service-demo.com"
	DefaultRouteServiceURL     = "https://route-service-demo.com"
)

// DefaultSemester is the current-semester label applied when the backend
// omits one.
const DefaultSemester = "Fall 2025"

// Config holds all point2point client configuration.
type Config struct {
	// Services is the logical service name -> base URL registry.
	Services ServicesConfig `yaml:"services"`

	// Semester is the current-semester label for normalization defaults
	// and new subscriptions.
	Semester string `yaml:"semester"`

	// HTTP configures the gateway client transport.
	HTTP HTTPConfig `yaml:"http"`

	// Logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// ServicesConfig maps backend services to their base URLs. The client
// talks only to the composite service; the auth and route service URLs are
// surfaced for the status footer and the OAuth hand-off.
type ServicesConfig struct {
	Composite string `yaml:"composite"`
	Auth      string `yaml:"auth"`
	Route     string `yaml:"route"`
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Services: ServicesConfig{
			Composite: DefaultCompositeServiceURL,
			Auth:      DefaultAuthServiceURL,
			Route:     DefaultRouteServiceURL,
		},
		Semester: DefaultSemester,
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Dir returns the per-user state directory ($HOME/.point2point), creating
// it if needed. Session state and the optional config file live here.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".point2point")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// Load resolves the effective configuration. A missing config file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	return cfg, nil
}

// applyEnv layers P2P_* environment variables over the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv("P2P_COMPOSITE_SERVICE_URL"); v != "" {
		c.Services.Composite = v
	}
	if v := os.Getenv("P2P_AUTH_SERVICE_URL"); v != "" {
		c.Services.Auth = v
	}
	if v := os.Getenv("P2P_ROUTE_SERVICE_URL"); v != "" {
		c.Services.Route = v
	}
	if v := os.Getenv("P2P_SEMESTER"); v != "" {
		c.Semester = v
	}
	if v := os.Getenv("P2P_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("P2P_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}
