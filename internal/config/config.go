package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// HistoryCapacity bounds the per-slot input history list.
	HistoryCapacity int `json:"historyCapacity" yaml:"historyCapacity"`
	// DefaultPageSize is used when a page request carries no size.
	DefaultPageSize int `json:"defaultPageSize" yaml:"defaultPageSize"`
	// Limits captures per-record baseline limits.
	Limits Limits `json:"limits" yaml:"limits"`
}

// Limits captures per-record baseline limits.
type Limits struct {
	MaxSlotsPerTemplate int `json:"maxSlotsPerTemplate" yaml:"maxSlotsPerTemplate"`
	MaxValueBytes       int `json:"maxValueBytes" yaml:"maxValueBytes"`
	MaxPageSize         int `json:"maxPageSize" yaml:"maxPageSize"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HistoryCapacity: 8,
		DefaultPageSize: 20,
		Limits: Limits{
			MaxSlotsPerTemplate: 64,
			MaxValueBytes:       16 << 10,
			MaxPageSize:         200,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}
