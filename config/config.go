package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration (tokens are issued by the identity provider,
	// we only hold the shared validation secret)
	JWTSecret string

	// Gemini configuration
	GeminiAPIKey string
	GeminiAPIURL string
	GeminiModel  string

	// ScanTimeout bounds one full scan request (extraction + generation).
	ScanTimeout time.Duration

	// AllowedOrigins for CORS (comma separated in env)
	AllowedOrigins []string
}

// LoadConfig creates a new Config instance from environment variables,
// falling back to Docker secret files for sensitive values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnvOrSecret("DB_USER", "db_user", "postgres"),
		DBPassword: getEnvOrSecret("DB_PASSWORD", "db_password", ""),
		DBName:     getEnv("DB_NAME", "treatyourshelf"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrSecret("REDIS_PASSWORD", "redis_password", ""),
		RedisURL:      getEnv("REDIS_URL", ""),

		JWTSecret: getEnvOrSecret("JWT_SECRET", "jwt_secret", ""),

		GeminiAPIKey: getEnvOrSecret("GEMINI_API_KEY", "gemini_api_key", ""),
		GeminiAPIURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),

		ScanTimeout: getDurationEnv("SCAN_TIMEOUT", 90*time.Second),
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the required settings for the current environment are present.
// Development and test environments tolerate missing secrets so the suite can run
// without external services.
func (c *Config) Validate() error {
	if GetEnvironment() != Production {
		return nil
	}

	missing := []string{}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.DBPassword == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvOrSecret reads an environment variable, then the matching Docker
// secret file, then falls back to the default.
func getEnvOrSecret(key, secretName, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
