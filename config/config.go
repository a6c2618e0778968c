package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	DBDriver           string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	UploadDir          string
	LogLevel           string
	CommissionRate     float64
	AdminPassword      string
	KafkaBrokers       []string
	KafkaTopic         string
	CORSOrigins        []string
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	rate, err := strconv.ParseFloat(getEnv("COMMISSION_RATE", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("COMMISSION_RATE must be a number: %w", err)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CommissionRate:     rate,
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "artvoid.orders"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	if config.DBDriver == "sqlite" && config.DatabaseURL == "" {
		config.DatabaseURL = "artvoid.db"
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	current = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.CommissionRate < 0 || c.CommissionRate > 100 {
		return fmt.Errorf("COMMISSION_RATE must be between 0 and 100, got %v", c.CommissionRate)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesS3 reports whether uploaded assets go to S3 rather than local disk
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// UsesKafka reports whether order events are also published to Kafka
func (c *Config) UsesKafka() bool {
	return len(c.KafkaBrokers) > 0
}

// GetConfig returns the most recently loaded configuration
func GetConfig() *Config {
	return current
}

// SetConfig replaces the current configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
