package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/featureimage/internal/flagx"
	"github.com/dmitrijs2005/featureimage/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration
// fields accept "10m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	NonceValidityDuration   timex.Duration `json:"nonce_validity_duration"`
	ThumbnailSize           string         `json:"thumbnail_size"`
	SiteURL                 string         `json:"site_url"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	MediaBaseURL            string         `json:"media_base_url"`
	MaxImagePixels          int64          `json:"max_image_pixels"`
	LogLevel                string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c / -config (or
// FIS_CONFIG) onto config. Keys absent from the file keep their current
// value. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.NonceValidityDuration.Duration > 0 {
		config.NonceValidityDuration = c.NonceValidityDuration.Duration
	}
	setString(&config.ThumbnailSize, c.ThumbnailSize)
	setString(&config.SiteURL, c.SiteURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MediaBaseURL, c.MediaBaseURL)
	if c.MaxImagePixels > 0 {
		config.MaxImagePixels = c.MaxImagePixels
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
