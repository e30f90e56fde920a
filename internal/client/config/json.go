package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/photogallery/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the current values alone.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	OutputDir      *string         `json:"output_dir"`
	DataFile       *string         `json:"data_file"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.OutputDir != nil {
		cfg.OutputDir = *jc.OutputDir
	}
	if jc.DataFile != nil {
		cfg.DataFile = *jc.DataFile
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
