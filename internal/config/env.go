package config

import (
	"os"
	"strconv"
)

// FromEnv overlays MAJIN_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MAJIN_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryCapacity = n
		}
	}
	if v := os.Getenv("MAJIN_DEFAULT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultPageSize = n
		}
	}
	if v := os.Getenv("MAJIN_MAX_SLOTS_PER_TEMPLATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxSlotsPerTemplate = n
		}
	}
	if v := os.Getenv("MAJIN_MAX_VALUE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxValueBytes = n
		}
	}
	if v := os.Getenv("MAJIN_MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxPageSize = n
		}
	}
}
