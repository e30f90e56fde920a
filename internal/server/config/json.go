package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/raster"
	"github.com/dmitrijs2005/photogallery/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only keys present in
// the file override the current values.
type JsonConfig struct {
	HTTPAddr               *string         `json:"http_addr"`
	DatabaseDSN            *string         `json:"database_dsn"`
	AdminEmail             *string         `json:"admin_email"`
	AdminPassword          *string         `json:"admin_password"`
	SessionTTL             *timex.Duration `json:"session_ttl"`
	SessionCleanupInterval *timex.Duration `json:"session_cleanup_interval"`
	StorageBackend         *string         `json:"storage_backend"`
	UploadDir              *string         `json:"upload_dir"`
	S3Bucket               *string         `json:"s3_bucket"`
	S3Region               *string         `json:"s3_region"`
	S3BaseEndpoint         *string         `json:"s3_base_endpoint"`
	S3AccessKey            *string         `json:"s3_access_key"`
	S3SecretKey            *string         `json:"s3_secret_key"`
	MaxFileSize            *int64          `json:"max_file_size"`
	MaxFiles               *int            `json:"max_files"`
	AllowedMimeTypes       []string        `json:"allowed_mime_types"`
	MaxImageWidth          *int            `json:"max_image_width"`
	MaxImageHeight         *int            `json:"max_image_height"`
	ThumbnailSize          *int            `json:"thumbnail_size"`
	UploadQuality          *string         `json:"upload_quality"`
	DisplayWidth           *int            `json:"display_width"`
	WatermarkText          *string         `json:"watermark_text"`
	WatermarkOpacity       *float64        `json:"watermark_opacity"`
	Workers                *int            `json:"workers"`
	RequestTimeout         *timex.Duration `json:"request_timeout"`
	ShutdownTimeout        *timex.Duration `json:"shutdown_timeout"`
	LogLevel               *string         `json:"log_level"`
}

// parseJson overlays the JSON file at path onto config. An empty path is a
// no-op.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setValue(&config.HTTPAddr, c.HTTPAddr)
	setValue(&config.DatabaseDSN, c.DatabaseDSN)
	setValue(&config.AdminEmail, c.AdminEmail)
	setValue(&config.AdminPassword, c.AdminPassword)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.SessionCleanupInterval, c.SessionCleanupInterval)
	setValue(&config.StorageBackend, c.StorageBackend)
	setValue(&config.UploadDir, c.UploadDir)
	setValue(&config.S3Bucket, c.S3Bucket)
	setValue(&config.S3Region, c.S3Region)
	setValue(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setValue(&config.S3AccessKey, c.S3AccessKey)
	setValue(&config.S3SecretKey, c.S3SecretKey)
	setValue(&config.MaxFileSize, c.MaxFileSize)
	setValue(&config.MaxFiles, c.MaxFiles)
	if len(c.AllowedMimeTypes) > 0 {
		config.AllowedMimeTypes = c.AllowedMimeTypes
	}
	setValue(&config.MaxImageWidth, c.MaxImageWidth)
	setValue(&config.MaxImageHeight, c.MaxImageHeight)
	setValue(&config.ThumbnailSize, c.ThumbnailSize)
	if c.UploadQuality != nil {
		config.UploadQuality = raster.Quality(*c.UploadQuality)
	}
	setValue(&config.DisplayWidth, c.DisplayWidth)
	setValue(&config.WatermarkText, c.WatermarkText)
	setValue(&config.WatermarkOpacity, c.WatermarkOpacity)
	setValue(&config.Workers, c.Workers)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setValue(&config.LogLevel, c.LogLevel)

	return nil
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
