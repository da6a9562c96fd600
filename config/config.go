// Package config loads the harness configuration that identifies the
// storage endpoint under test.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config identifies the endpoint under test and carries the connection
// parameters handed through to every test unit.
type Config struct {
	Endpoint     string        `yaml:"endpoint"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	Region       string        `yaml:"region"`
	UsePathStyle bool          `yaml:"use_path_style"`
	TestTimeout  time.Duration `yaml:"test_timeout"`

	// Groups maps group name -> enabled. A group absent from the map is
	// enabled; only an explicit false disables it.
	Groups map[string]bool `yaml:"groups"`
}

// Default returns the built-in configuration used when no config file is
// available. It targets a local endpoint with the conventional development
// credentials.
func Default() *Config {
	return &Config{
		Endpoint:     "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Region:       "us-east-1",
		UsePathStyle: true,
		TestTimeout:  60 * time.Second,
	}
}

// Load reads the configuration from path. A missing file is not an error:
// the built-in defaults are returned and a warning is logged, so the
// harness stays runnable against a local endpoint with zero setup.
func Load(path string, log zerolog.Logger) (*Config, error) {
	cfg := Default()
	if path == "" {
		log.Warn().Msg("no config file specified, using built-in defaults")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("config file not found, using built-in defaults")
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.TestTimeout < 0 {
		return fmt.Errorf("test_timeout must not be negative")
	}
	return nil
}

// GroupEnabled reports whether tests in the named group should run.
func (c *Config) GroupEnabled(name string) bool {
	if c.Groups == nil {
		return true
	}
	enabled, ok := c.Groups[name]
	if !ok {
		return true
	}
	return enabled
}
