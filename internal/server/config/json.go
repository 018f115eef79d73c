package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gopherblog/internal/flagx"
	"github.com/dmitrijs2005/gopherblog/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Optional
// fields are pointers so that a partial file only overrides what it sets.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	StorageBackend              *string         `json:"storage_backend"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	Environment                 *string         `json:"environment"`
	LogLevel                    *string         `json:"log_level"`
	PostsPerPage                *int            `json:"posts_per_page"`
	ImageBackend                *string         `json:"image_backend"`
	ImagesDir                   *string         `json:"images_dir"`
	MaxImageSize                *int64          `json:"max_image_size"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics: the server must not start
// with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	if c.PostsPerPage != nil {
		config.PostsPerPage = *c.PostsPerPage
	}
	setString(&config.ImageBackend, c.ImageBackend)
	setString(&config.ImagesDir, c.ImagesDir)
	if c.MaxImageSize != nil {
		config.MaxImageSize = *c.MaxImageSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
