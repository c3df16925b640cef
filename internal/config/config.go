// Package config loads the optional run configuration file. Everything in
// it has a sensible default; a missing file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

// CategoryRule is a user-supplied categorization override. Rules from the
// config file are evaluated ahead of the built-in table.
type CategoryRule struct {
	Pattern    string  `yaml:"pattern"`
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence"`
}

// Config is the full run configuration file.
type Config struct {
	Sanitize struct {
		CustomTerms   []string `yaml:"custom_terms"`
		MaskPII       *bool    `yaml:"mask_pii"`
		ScrubNames    *bool    `yaml:"scrub_names"`
		FuzzLocations *bool    `yaml:"fuzz_locations"`
	} `yaml:"sanitize"`

	Categories []CategoryRule `yaml:"categories"`

	Output struct {
		Encoding string `yaml:"encoding"`
		Detail   string `yaml:"detail"`
		MaxRows  int    `yaml:"max_rows"`
	} `yaml:"output"`

	Preflight struct {
		SampleSize int `yaml:"sample_size"`
	} `yaml:"preflight"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Encoding == "" {
		c.Output.Encoding = "tabular"
	}
	if c.Output.Detail == "" {
		c.Output.Detail = "standard"
	}
	if c.Preflight.SampleSize <= 0 {
		c.Preflight.SampleSize = models.DefaultSampleSize
	}
}

func (c *Config) validate() error {
	switch c.Output.Encoding {
	case "tabular", "delimited", "markdown", "narrative":
	default:
		return fmt.Errorf("unknown output encoding %q", c.Output.Encoding)
	}
	switch c.Output.Detail {
	case "minimal", "standard", "detailed", "debug":
	default:
		return fmt.Errorf("unknown detail level %q", c.Output.Detail)
	}
	for i, r := range c.Categories {
		if r.Pattern == "" || r.Category == "" {
			return fmt.Errorf("category rule %d: pattern and category are required", i)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("category rule %d: confidence %v outside [0,1]", i, r.Confidence)
		}
	}
	return nil
}

// SanitizeOptions converts the config into engine options.
func (c *Config) SanitizeOptions() models.Options {
	opts := models.DefaultOptions()
	opts.CustomTerms = append(opts.CustomTerms, c.Sanitize.CustomTerms...)
	if c.Sanitize.MaskPII != nil {
		opts.MaskPII = *c.Sanitize.MaskPII
	}
	if c.Sanitize.ScrubNames != nil {
		opts.ScrubNames = *c.Sanitize.ScrubNames
	}
	if c.Sanitize.FuzzLocations != nil {
		opts.FuzzLocations = *c.Sanitize.FuzzLocations
	}
	return opts
}
