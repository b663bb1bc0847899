// Package config loads storectl settings from defaults, an optional YAML file
// and STORECTL_* environment variables, strongest last.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-store/layering"
)

// DefaultBaseURL is the catalogue API.
const DefaultBaseURL = "https://api01.f8team.dev/api"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the merged application configuration.
type Config struct {
	BaseURL string        `yaml:"base_url" env:"STORECTL_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"STORECTL_TIMEOUT"`

	Log      LogConfig      `yaml:"log" envPrefix:"STORECTL_LOG_"`
	Selector SelectorConfig `yaml:"selector" envPrefix:"STORECTL_SELECTOR_"`

	Products  ResourceConfig `yaml:"products" envPrefix:"STORECTL_PRODUCTS_"`
	Provinces ResourceConfig `yaml:"provinces" envPrefix:"STORECTL_PROVINCES_"`

	// SuppressStale drops dispatches from activations that were closed or
	// superseded before their fetch returned.
	SuppressStale bool `yaml:"suppress_stale" env:"STORECTL_SUPPRESS_STALE"`
	// Actor is stamped on activity events as the acting identity.
	Actor string `yaml:"actor" env:"STORECTL_ACTOR"`
	// Debug publishes the store on expvar.
	Debug bool `yaml:"debug" env:"STORECTL_DEBUG"`
}

// LogConfig selects level and format for internal/logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// SelectorConfig picks the expression engine for ad-hoc selectors.
type SelectorConfig struct {
	Engine string `yaml:"engine" env:"ENGINE"`
}

// ResourceConfig locates one remote collection and its payload inside the
// response envelope.
type ResourceConfig struct {
	Path   string `yaml:"path" env:"PATH"`
	Unwrap string `yaml:"unwrap" env:"UNWRAP"`
}

// Defaults returns the built-in endpoints and settings.
func Defaults() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Selector: SelectorConfig{Engine: "expr"},
		Products: ResourceConfig{
			Path:   "/products",
			Unwrap: "$.data.items",
		},
		Provinces: ResourceConfig{
			Path:   "/address/provinces",
			Unwrap: "$.data",
		},
	}
}

// Load merges environment over the YAML file at path (skipped when empty)
// over Defaults, then validates the result.
func Load(path string) (Config, error) {
	return load(path, nil)
}

func load(path string, environ map[string]string) (Config, error) {
	var file Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	var fromEnv Config
	if err := env.ParseWithOptions(&fromEnv, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg := layering.MergeLayers(fromEnv, file, Defaults())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute URL", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Selector.Engine) {
	case "expr", "cel", "js":
	default:
		return fmt.Errorf("%w: selector.engine %q must be expr, cel or js", ErrInvalidConfig, c.Selector.Engine)
	}
	for name, resource := range map[string]ResourceConfig{"products": c.Products, "provinces": c.Provinces} {
		if !strings.HasPrefix(resource.Path, "/") {
			return fmt.Errorf("%w: %s.path %q must start with /", ErrInvalidConfig, name, resource.Path)
		}
		if !strings.HasPrefix(resource.Unwrap, "$") {
			return fmt.Errorf("%w: %s.unwrap %q must be a JSONPath starting with $", ErrInvalidConfig, name, resource.Unwrap)
		}
	}
	return nil
}
