// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageMedia = "media"
)

// Email delivery modes
const (
	EmailDeliverySMTP  = "smtp"
	EmailDeliveryQueue = "queue"
)

// Rate limit counter stores
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	ProjectName string
	Database    DatabaseConfig
	Redis       RedisConfig
	Server      ServerConfig
	Logging     LoggingConfig
	CORS        CORSConfig
	JWT         JWTConfig
	Password    PasswordConfig
	RateLimit   RateLimitConfig
	SMTP        SMTPConfig
	Email       EmailConfig
	Storage     StorageConfig
	APIKey      string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port pair of the Redis server
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
	File  string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// PasswordConfig holds password hashing settings
type PasswordConfig struct {
	BcryptCost int
}

// RateLimitConfig holds the global per-IP rate limit and its counter store
type RateLimitConfig struct {
	Store    string
	Requests int
	Window   time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailConfig selects how outgoing email is delivered
type EmailConfig struct {
	Delivery string
}

// StorageConfig selects and configures the file store
type StorageConfig struct {
	Backend      string
	UploadDir    string
	UploadURL    string
	MediaBaseURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	cfg.ProjectName = getEnv("PROJECT_NAME", "flask-catalyst-go")

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = getIntEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}

	loadLogging(cfg)

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	if cfg.JWT.AccessTokenExpiry, err = getDurationEnv("JWT_ACCESS_TOKEN_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWT.RefreshTokenExpiry, err = getDurationEnv("JWT_REFRESH_TOKEN_EXPIRY", 30*24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Password.BcryptCost, err = getIntEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	// Redis configuration (rate limit counters and the email queue)
	if err := loadRedis(cfg); err != nil {
		return nil, err
	}

	// Rate limit configuration
	cfg.RateLimit.Store = getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory)
	if cfg.RateLimit.Store != RateLimitStoreMemory && cfg.RateLimit.Store != RateLimitStoreRedis {
		return nil, fmt.Errorf("invalid RATE_LIMIT_STORE: %q", cfg.RateLimit.Store)
	}
	if cfg.RateLimit.Requests, err = getIntEnv("RATE_LIMIT_REQUESTS", 50); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = getDurationEnv("RATE_LIMIT_WINDOW", time.Hour); err != nil {
		return nil, err
	}

	if err := loadSMTP(cfg); err != nil {
		return nil, err
	}

	cfg.Email.Delivery = getEnv("EMAIL_DELIVERY", EmailDeliverySMTP)
	if cfg.Email.Delivery != EmailDeliverySMTP && cfg.Email.Delivery != EmailDeliveryQueue {
		return nil, fmt.Errorf("invalid EMAIL_DELIVERY: %q", cfg.Email.Delivery)
	}

	// File storage configuration
	cfg.Storage.Backend = strings.ToLower(getEnv("FILE_STORAGE", StorageLocal))
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", "instance/uploads")
	cfg.Storage.UploadURL = strings.TrimRight(getEnv("UPLOAD_BASE_URL", "/static/uploads"), "/")
	cfg.Storage.MediaBaseURL = strings.TrimRight(os.Getenv("MEDIA_BASE_URL"), "/")
	switch cfg.Storage.Backend {
	case StorageLocal:
	case StorageMedia:
		if cfg.Storage.MediaBaseURL == "" {
			return nil, fmt.Errorf("MEDIA_BASE_URL is required when FILE_STORAGE=media")
		}
	default:
		return nil, fmt.Errorf("invalid FILE_STORAGE: %q", cfg.Storage.Backend)
	}

	// API Key configuration (optional, for service-to-service calls to the media service)
	cfg.APIKey = os.Getenv("API_KEY")

	return cfg, nil
}

// LoadWorker reads the subset of the configuration the email worker needs.
// Database and JWT settings are not required.
func LoadWorker() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	cfg.ProjectName = getEnv("PROJECT_NAME", "flask-catalyst-go")
	loadLogging(cfg)
	if err := loadRedis(cfg); err != nil {
		return nil, err
	}
	if err := loadSMTP(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadLogging(cfg *Config) {
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = os.Getenv("LOG_FILE")
}

func loadRedis(cfg *Config) error {
	var err error
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = getIntEnv("REDIS_PORT", 6379); err != nil {
		return err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getIntEnv("REDIS_DB", 0); err != nil {
		return err
	}
	return nil
}

func loadSMTP(cfg *Config) error {
	var err error
	cfg.SMTP.Host = getEnv("SMTP_HOST", "localhost")
	if cfg.SMTP.Port, err = getIntEnv("SMTP_PORT", 587); err != nil {
		return err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional
	cfg.SMTP.From = getEnv("SMTP_FROM", "noreply@catalyst.local")
	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to all origins
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
