// Package config provides configuration loading for the reverse proxy.
//
// The YAML decoding itself is a thin pass-through (the parser is treated as
// an external collaborator); this package owns the shape validation that
// turns a decoded document into a structurally sound, immutable Config.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const defaultMetricsPath = "/metrics"

// metricNameComponent matches a valid Prometheus metric name component, which
// a route's name must be since it becomes the prefix of four metric names.
var metricNameComponent = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config is the immutable, process-lifetime routing configuration.
type Config struct {
	ListenAddress string  `yaml:"listen_address"`
	MetricsPath   string  `yaml:"metrics_path"`
	Routes        []Route `yaml:"routes"`
}

// Route maps an inbound request shape to a pool of interchangeable upstreams.
type Route struct {
	Name        string     `yaml:"name"`
	MatchPath   string     `yaml:"match_path"`
	MatchMethod string     `yaml:"match_method"`
	Upstreams   []Upstream `yaml:"upstreams"`
	RewritePath string     `yaml:"rewrite_path"`
}

// Upstream identifies a single origin server endpoint.
type Upstream struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		MetricsPath: defaultMetricsPath,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.MetricsPath == "" {
		cfg.MetricsPath = defaultMetricsPath
	}

	for i := range cfg.Routes {
		for j := range cfg.Routes[i].Upstreams {
			if cfg.Routes[i].Upstreams[j].Scheme == "" {
				cfg.Routes[i].Upstreams[j].Scheme = "http"
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate performs shape validation on the decoded configuration.
func (c *Config) validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}

	seenNames := make(map[string]struct{}, len(c.Routes))
	for _, route := range c.Routes {
		if route.Name == "" {
			return fmt.Errorf("route name is required")
		}
		if !metricNameComponent.MatchString(route.Name) {
			return fmt.Errorf("route %q is not a valid metric name component", route.Name)
		}
		if _, dup := seenNames[route.Name]; dup {
			return fmt.Errorf("duplicate route name: %q", route.Name)
		}
		seenNames[route.Name] = struct{}{}

		if route.MatchPath == "" {
			return fmt.Errorf("route %q: match_path is required", route.Name)
		}
		if len(route.Upstreams) == 0 {
			return fmt.Errorf("route %q: upstreams must be non-empty", route.Name)
		}
		for _, up := range route.Upstreams {
			if up.Host == "" {
				return fmt.Errorf("route %q: upstream host is required", route.Name)
			}
			if up.Port <= 0 {
				return fmt.Errorf("route %q: upstream port must be positive", route.Name)
			}
		}
	}

	return nil
}
