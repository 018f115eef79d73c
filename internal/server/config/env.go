package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. Malformed numeric
// values are ignored and the previous value is kept.
func parseEnv(config *Config) {
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	lookupString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("STORAGE_BACKEND", &config.StorageBackend)
	lookupString("JWT_SECRET", &config.SecretKey)
	lookupString("APP_ENV", &config.Environment)
	lookupString("LOG_LEVEL", &config.LogLevel)
	lookupString("IMAGE_BACKEND", &config.ImageBackend)
	lookupString("IMAGES_DIR", &config.ImagesDir)
	lookupString("S3_ROOT_USER", &config.S3RootUser)
	lookupString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	lookupString("S3_BUCKET", &config.S3Bucket)
	lookupString("S3_REGION", &config.S3Region)
	lookupString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("ACCESS_TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("POSTS_PER_PAGE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.PostsPerPage = n
		}
	}
	if v, ok := os.LookupEnv("MAX_IMAGE_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxImageSize = n
		}
	}
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
