package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL               string `yaml:"base_url"`
	TimeoutSeconds        int    `yaml:"timeout_seconds"`
	StorageDir            string `yaml:"storage_dir"`
	RefreshOnUnauthorized bool   `yaml:"refresh_on_unauthorized"`
	LogFile               string `yaml:"log_file"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:               "http://localhost:8080",
		TimeoutSeconds:        30,
		StorageDir:            DefaultStorageRoot(),
		RefreshOnUnauthorized: true,
	}
}

// DefaultConfigPath resolves the config file location: $XDG_CONFIG_HOME
// first, then ~/.config.
func DefaultConfigPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "postprep", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "postprep", "config.yaml")
	}
	return ""
}

// LoadConfig reads the yaml config at path, falling back to the default
// location and then to built-in defaults when no file exists. Bad values are
// clamped rather than rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.TimeoutSeconds > 300 {
		cfg.TimeoutSeconds = 300
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageRoot()
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
