package config

import (
	"os"
	"strconv"
	"strings"
)

// StorageConfig selects and configures the blob storage backend.
type StorageConfig struct {
	// Driver is "filesystem" (default) or "minio".
	Driver string
	// Dir is the designated directory for the filesystem driver.
	Dir string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Environment string
	LogLevel    string
	TimeZone    string
	CORSOrigins []string
	Storage     StorageConfig
	MinIO       MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:5000"),
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		TimeZone:    getEnv("APP_TIMEZONE", "UTC"),
		CORSOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5000"}),
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "filesystem"),
			Dir:    getEnv("DOCUMENTS_DIR", "documents"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
