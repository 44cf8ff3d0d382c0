// Package config loads the chordshow configuration from a YAML file with
// environment variable overrides. A .env file in the working directory is
// honored before the environment is read.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the expected file name inside the search directory.
const ConfigFileName = "chordshow.yaml"

// SourceConfig points at the remote songbook and catalog.
type SourceConfig struct {
	BaseURL    string `yaml:"base_url"`
	CatalogURL string `yaml:"catalog_url"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	CatalogDB  string `yaml:"catalog_db"`
	BundleName string `yaml:"bundle_name,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Source   SourceConfig `yaml:"source"`
	Output   OutputConfig `yaml:"output"`
	Workers  int          `yaml:"workers"`
	LogLevel string       `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:    "https://jemaf.fr/chordpro/",
			CatalogURL: "https://jemaf.fr/ressources/listeJem.csv",
		},
		Output: OutputConfig{
			Dir:       "output",
			CatalogDB: "catalog.db",
		},
		Workers:  4,
		LogLevel: "info",
	}
}

// Load reads the configuration from sourcePath/chordshow.yaml, then applies
// environment overrides. A missing file yields ErrConfigNotFound; callers
// that accept defaults should use LoadOrDefault.
func Load(sourcePath string) (*Config, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadOrDefault loads the configuration, falling back to defaults (still
// with environment overrides) when no file exists.
func LoadOrDefault(sourcePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(sourcePath)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
		cfg = Default()
		applyEnv(cfg)
	}
	return cfg, nil
}

// applyEnv overrides file values from CHORDSHOW_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHORDSHOW_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("CHORDSHOW_CATALOG_URL"); v != "" {
		cfg.Source.CatalogURL = v
	}
	if v := os.Getenv("CHORDSHOW_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("CHORDSHOW_CATALOG_DB"); v != "" {
		cfg.Output.CatalogDB = v
	}
	if v := os.Getenv("CHORDSHOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
