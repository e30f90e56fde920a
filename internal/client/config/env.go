package config

import (
	"fmt"
	"strings"
	"time"
)

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("GALLERY_SERVER"); ok {
		cfg.ServerURL = v
	}
	if v, ok := get("GALLERY_OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := get("GALLERY_DATA_FILE"); ok {
		cfg.DataFile = v
	}
	if v, ok := get("GALLERY_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GALLERY_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
