// Package config handles the workspace configuration for katalon-recorder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
)

// Config file names looked up by LoadFromDir, in order.
var fileNames = []string{"katalon-recorder.yaml", "katalon-recorder.yml"}

// Config represents the workspace configuration (katalon-recorder.yaml).
type Config struct {
	// Input selection
	Recordings []string `yaml:"recordings"` // Files, directories or glob patterns

	// Conversion settings
	Output            string `yaml:"output"`            // Output directory
	SelectorAttribute string `yaml:"selectorAttribute"` // Overrides the recording's own
	Parallel          int    `yaml:"parallel"`          // Max concurrent files (0 = sequential)
	Dry               bool   `yaml:"dry"`               // Print scripts instead of writing them

	// Upload settings. Credentials are only read from the environment.
	ObjectStore ObjectStore `yaml:"objectStore"`

	// Path of the file the config was loaded from, empty when none was found.
	Path string `yaml:"-"`
}

// ObjectStore configures uploading scripts to an S3-compatible bucket.
type ObjectStore struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	UseSSL   bool   `yaml:"useSSL"`
}

// Enabled returns true if uploads are configured.
func (o ObjectStore) Enabled() bool {
	return o.Endpoint != "" || o.Bucket != ""
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid config " + path).WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid config " + path).WithCause(err)
	}
	cfg.Path = path

	return &cfg, nil
}

// LoadFromDir looks for katalon-recorder.yaml or katalon-recorder.yml in
// the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range fileNames {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// Validate checks values that cannot be used.
func (c *Config) Validate() error {
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative: %d", c.Parallel)
	}
	if strings.Contains(c.ObjectStore.Endpoint, "://") {
		return fmt.Errorf("objectStore.endpoint must not include scheme: %q", c.ObjectStore.Endpoint)
	}
	if c.ObjectStore.Enabled() && c.ObjectStore.Bucket == "" {
		return fmt.Errorf("objectStore.bucket is required when objectStore.endpoint is set")
	}
	if c.ObjectStore.Enabled() && c.ObjectStore.Endpoint == "" {
		return fmt.Errorf("objectStore.endpoint is required when objectStore.bucket is set")
	}
	return nil
}

// ResolveRecordings expands the configured recordings relative to baseDir.
// Glob patterns are matched; entries without glob characters are returned
// as-is so that missing paths are reported by the caller.
func (c *Config) ResolveRecordings(baseDir string) ([]string, error) {
	var paths []string
	for _, pattern := range c.Recordings {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		if !strings.ContainsAny(pattern, "*?[") {
			paths = append(paths, pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, core.ErrInvalidConfig.WithMessage("invalid recordings pattern " + pattern).WithCause(err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
