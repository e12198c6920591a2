package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over the file.
//
// Recognized variables:
//
//	LABELCHECK_ADDR            HTTP bind address
//	LABELCHECK_BACKEND         "sqlite" or "postgres"
//	LABELCHECK_SQLITE_PATH     sqlite database file
//	LABELCHECK_DATABASE_DSN    PostgreSQL DSN
//	LABELCHECK_SECRET_KEY      JWT HMAC secret
//	LABELCHECK_SESSION_TTL     session validity (Go duration, e.g. "8h")
//	LABELCHECK_AUTH_TIMEOUT    credential check timeout (Go duration)
//	LABELCHECK_FLUSH_INTERVAL  record flush interval (integer)
//	LABELCHECK_S3_ARCHIVE      "true" enables the export archive
//	LABELCHECK_S3_USER / _PASSWORD / _BUCKET / _REGION / _ENDPOINT
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("LABELCHECK_ADDR", &config.EndpointAddrHTTP)
	setString("LABELCHECK_BACKEND", &config.StorageBackend)
	setString("LABELCHECK_SQLITE_PATH", &config.SQLitePath)
	setString("LABELCHECK_DATABASE_DSN", &config.DatabaseDSN)
	setString("LABELCHECK_SECRET_KEY", &config.SecretKey)
	setString("LABELCHECK_S3_USER", &config.S3RootUser)
	setString("LABELCHECK_S3_PASSWORD", &config.S3RootPassword)
	setString("LABELCHECK_S3_BUCKET", &config.S3Bucket)
	setString("LABELCHECK_S3_REGION", &config.S3Region)
	setString("LABELCHECK_S3_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("LABELCHECK_SESSION_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("LABELCHECK_AUTH_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AuthTimeout = d
		}
	}
	if v, ok := os.LookupEnv("LABELCHECK_FLUSH_INTERVAL"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.RecordFlushInterval = n
		}
	}
	if v, ok := os.LookupEnv("LABELCHECK_S3_ARCHIVE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.S3ArchiveEnabled = b
		}
	}
}
