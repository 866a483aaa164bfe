package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NATSConfig holds settings for the async conversion queue.
type NATSConfig struct {
	URL     string
	Subject string
}

// ConvertConfig holds file processing limits and chunking defaults.
type ConvertConfig struct {
	MaxFileSize   int64
	Extensions    []string
	ChunkStrategy string
	ChunkSize     int
	ChunkOverlap  int
}

// AuthConfig holds session and verification settings.
type AuthConfig struct {
	SessionCookieName string
	OTPExpiryHours    int
	BcryptCost        int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	NATS     NATSConfig
	Convert  ConvertConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_SUBJECT", "fileforge.convert"),
		},
		Convert: ConvertConfig{
			MaxFileSize:   getEnvInt64("MAX_FILE_SIZE", 100*1024*1024),
			Extensions:    getEnvList("SUPPORTED_EXTENSIONS", []string{".pdf", ".docx", ".xlsx", ".csv", ".pptx", ".txt", ".md"}),
			ChunkStrategy: getEnv("CHUNK_STRATEGY", "semantic"),
			ChunkSize:     getEnvInt("CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 100),
		},
		Auth: AuthConfig{
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "ff_session"),
			OTPExpiryHours:    getEnvInt("OTP_EXPIRY_HOURS", 24),
			BcryptCost:        getEnvInt("BCRYPT_COST", 12),
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

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
