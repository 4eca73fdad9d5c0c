package config

import (
	"errors"
	"strings"
	"time"
)

const defaultJWTSecret = "supersecuresecret"

// Store drivers accepted by STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment        string
	Addr               string
	BasePath           string
	DatabaseURL        string
	MigrationsDir      string
	StoreDriver        string
	JWTSecret          string
	TokenTTL           time.Duration
	MaxPostLength      int
	MaxCommentLength   int
	CORSAllowedOrigins []string
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
	RateLimits         RateLimits
	LogLevel           string
	SSEHeartbeat       time.Duration
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	LoadDotEnv()
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		BasePath:           strings.TrimRight(GetString("API_BASE_PATH", ""), "/"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://estate:estate@db:5432/estate?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		StoreDriver:        strings.ToLower(GetString("STORE_DRIVER", StorePostgres)),
		JWTSecret:          GetString("JWT_SECRET", defaultJWTSecret),
		TokenTTL:           hours(GetInt("TOKEN_TTL_HOURS", 7*24)),
		MaxPostLength:      GetInt("MAX_POST_LENGTH", 280),
		MaxCommentLength:   GetInt("MAX_COMMENT_LENGTH", 500),
		CORSAllowedOrigins: GetCSV("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
		RateLimits:         loadRateLimits(),
		LogLevel:           GetString("LOG_LEVEL", "info"),
		SSEHeartbeat:       GetDuration("SSE_HEARTBEAT_SECONDS", 15*time.Second),
	}
}

// Validate rejects settings that must not reach a production deployment.
func (c APIConfig) Validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}
	if c.StoreDriver == StorePostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required for the postgres store")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be overridden in production")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c APIConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}
