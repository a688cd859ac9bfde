package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file looked up in the working directory.
const FileName = "rdtrends.yaml"

// EnvPrefix prefixes every environment override, e.g. RDTRENDS_DPI.
const EnvPrefix = "RDTRENDS"

// Config represents the rdtrends.yaml configuration.
type Config struct {
	DataPath string `yaml:"data_path" split_words:"true" validate:"required"`
	PlotsDir string `yaml:"plots_dir" split_words:"true" validate:"required"`
	DPI      int    `yaml:"dpi" split_words:"true" validate:"min=50,max=1200"`
	TopN     int    `yaml:"top_n" split_words:"true" validate:"min=1"`
	LogLevel string `yaml:"log_level" split_words:"true" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads an rdtrends.yaml file from disk. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		DataPath: "data/rds2011_12_Table_17.csv",
		PlotsDir: "plots",
		DPI:      300,
		TopN:     10,
		LogLevel: "info",
	}
}

// Resolve loads path when it exists, falls back to Default otherwise, and
// applies RDTRENDS_* environment overrides on top.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	case err != nil:
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from RDTRENDS_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
