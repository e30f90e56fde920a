package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays environment variables onto config. lookup is
// os.LookupEnv outside tests.
//
// Recognized variables:
//
//	HTTP_ADDR, DATABASE_URL, ADMIN_EMAIL, ADMIN_PASSWORD,
//	SESSION_TTL, SESSION_CLEANUP_INTERVAL (Go durations),
//	STORAGE_BACKEND, UPLOAD_DIR,
//	S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY,
//	MAX_FILE_SIZE (bytes), WATERMARK_TEXT, WORKERS,
//	REQUEST_TIMEOUT (Go duration), LOG_LEVEL
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := map[string]*string{
		"HTTP_ADDR":       &config.HTTPAddr,
		"DATABASE_URL":    &config.DatabaseDSN,
		"ADMIN_EMAIL":     &config.AdminEmail,
		"ADMIN_PASSWORD":  &config.AdminPassword,
		"STORAGE_BACKEND": &config.StorageBackend,
		"UPLOAD_DIR":      &config.UploadDir,
		"S3_BUCKET":       &config.S3Bucket,
		"S3_REGION":       &config.S3Region,
		"S3_ENDPOINT":     &config.S3BaseEndpoint,
		"S3_ACCESS_KEY":   &config.S3AccessKey,
		"S3_SECRET_KEY":   &config.S3SecretKey,
		"WATERMARK_TEXT":  &config.WatermarkText,
		"LOG_LEVEL":       &config.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SESSION_TTL":              &config.SessionTTL,
		"SESSION_CLEANUP_INTERVAL": &config.SessionCleanupInterval,
		"REQUEST_TIMEOUT":          &config.RequestTimeout,
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v, ok := get("MAX_FILE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_FILE_SIZE: %w", err)
		}
		config.MaxFileSize = n
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKERS: %w", err)
		}
		config.Workers = n
	}
	return nil
}
