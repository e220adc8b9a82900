package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OpenAI   OpenAIConfig
	Storage  StorageConfig
	Upload   UploadConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"dropofflens"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled   bool          `envconfig:"REDIS_ENABLED" default:"true"`
	Host      string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port      string        `envconfig:"REDIS_PORT" default:"6379"`
	Password  string        `envconfig:"REDIS_PASSWORD" default:""`
	DB        int           `envconfig:"REDIS_DB" default:"0"`
	ResultTTL time.Duration `envconfig:"REDIS_RESULT_TTL" default:"1h"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"your-refresh-secret-change-in-production"`
	AccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	RefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`
}

// OpenAIConfig holds the external completion provider configuration,
// including the retry policy applied around every analysis call.
type OpenAIConfig struct {
	APIKey         string        `envconfig:"OPENAI_API_KEY"`
	BaseURL        string        `envconfig:"OPENAI_API_URL" default:"https://api.openai.com"`
	Model          string        `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	Temperature    float64       `envconfig:"OPENAI_TEMPERATURE" default:"0.3"`
	RequestTimeout time.Duration `envconfig:"OPENAI_REQUEST_TIMEOUT" default:"60s"`

	// Retry policy (exponential backoff with jitter, bounded).
	RetryInitialInterval time.Duration `envconfig:"OPENAI_RETRY_INITIAL_INTERVAL" default:"2s"`
	RetryMaxInterval     time.Duration `envconfig:"OPENAI_RETRY_MAX_INTERVAL" default:"10s"`
	RetryMaxElapsed      time.Duration `envconfig:"OPENAI_RETRY_MAX_ELAPSED" default:"30s"`

	// Circuit breaker: after BreakerThreshold consecutive provider failures
	// calls fail fast until BreakerCooldown elapses.
	BreakerThreshold int           `envconfig:"OPENAI_BREAKER_THRESHOLD" default:"5"`
	BreakerCooldown  time.Duration `envconfig:"OPENAI_BREAKER_COOLDOWN" default:"1m"`
}

// StorageConfig holds object storage configuration for CSV archival
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"dropofflens-uploads"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
}

// UploadConfig holds CSV upload limits
type UploadConfig struct {
	MaxFileBytes int64 `envconfig:"UPLOAD_MAX_FILE_BYTES" default:"5242880"` // 5MB
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" {
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
		if c.JWT.AccessSecret == "your-access-secret-change-in-production" {
			return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
		}
	}
	if c.OpenAI.BreakerThreshold < 1 {
		return fmt.Errorf("OPENAI_BREAKER_THRESHOLD must be >= 1")
	}
	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_BYTES must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
