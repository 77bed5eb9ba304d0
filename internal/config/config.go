package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "crm.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultMaxUploadBytes  = "10485760"
	defaultTokenStore      = TokenStoreInline
	defaultTokenTTL        = "30m"
	defaultValidateRows    = "true"
	defaultImportBatchSize = "500"
	defaultRedisAddr       = "localhost:6379"
	defaultArchivePrefix   = "lead-imports"
)

const (
	TokenStoreInline = "inline"
	TokenStoreRedis  = "redis"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	Import ImportConfig
	Redis  RedisConfig
}

// ImportConfig controls the lead-import wizard.
type ImportConfig struct {
	MaxUploadBytes int64
	TokenStore     string
	TokenTTL       time.Duration
	ValidateRows   bool
	BatchSize      int
	ArchiveBucket  string
	ArchivePrefix  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.Import.MaxUploadBytes, err = parseInt64Env("IMPORT_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	cfg.Import.TokenStore = strings.ToLower(strings.TrimSpace(getEnv("IMPORT_TOKEN_STORE", defaultTokenStore)))
	cfg.Import.TokenTTL, err = parseDurationEnv("IMPORT_TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		return nil, err
	}
	cfg.Import.ValidateRows = parseBoolEnv("IMPORT_VALIDATE_ROWS", defaultValidateRows)
	batch, err := parseInt64Env("IMPORT_BATCH_SIZE", defaultImportBatchSize)
	if err != nil {
		return nil, err
	}
	cfg.Import.BatchSize = int(batch)
	cfg.Import.ArchiveBucket = strings.TrimSpace(os.Getenv("IMPORT_ARCHIVE_BUCKET"))
	cfg.Import.ArchivePrefix = strings.Trim(strings.TrimSpace(getEnv("IMPORT_ARCHIVE_PREFIX", defaultArchivePrefix)), "/")

	cfg.Redis.Addr = strings.TrimSpace(getEnv("REDIS_ADDR", defaultRedisAddr))
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := parseInt64Env("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = int(redisDB)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"env":          cfg.AppEnv,
		"addr":         cfg.HTTPAddr,
		"token_store":  cfg.Import.TokenStore,
		"validate_row": cfg.Import.ValidateRows,
		"archive":      cfg.Import.ArchiveBucket != "",
	}).Debug("config loaded")

	return cfg, nil
}

// IsProduction reports whether the service runs with production guarantees.
func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, text")
	}
	if cfg.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.Import.TokenStore != TokenStoreInline && cfg.Import.TokenStore != TokenStoreRedis {
		return fmt.Errorf("IMPORT_TOKEN_STORE must be one of: inline, redis")
	}
	if cfg.Import.TokenTTL <= 0 {
		return fmt.Errorf("IMPORT_TOKEN_TTL must be > 0")
	}
	if cfg.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be > 0")
	}
	if cfg.Import.TokenStore == TokenStoreRedis && cfg.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when IMPORT_TOKEN_STORE=redis")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") && !strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
