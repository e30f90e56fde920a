package config

import (
	"errors"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the gallery client.
type Config struct {
	// ServerURL is the base URL of the gallery HTTP API.
	ServerURL string
	// OutputDir receives exported images.
	OutputDir string
	// DataFile is the local SQLite file holding the session and export log.
	DataFile       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.OutputDir = "."
	c.DataFile = "gallery.db"
	c.RequestTimeout = 60 * time.Second
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("server url must be an absolute http(s) url"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output dir must not be empty"))
	}
	if c.DataFile == "" {
		errs = append(errs, errors.New("data file must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, the JSON file at path (if any)
// and the environment. Flags are layered on top by the caller.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
