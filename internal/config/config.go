package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port        string
	DBPath      string
	FrontendURL string
	LogLevel    string

	StripeSecretKey string
	JWTSecret       string
	TokenTTL        time.Duration

	PostmarkToken string
	FromEmail     string

	BackupBucket    string
	BackupRegion    string
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. JWT_SECRET is required; everything else has a default
// or degrades a feature (no Stripe key disables checkout, no Postmark token
// disables email, no bucket disables backups).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "sleephaven.db"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        30 * 24 * time.Hour,

		PostmarkToken: os.Getenv("POSTMARK_TOKEN"),
		FromEmail:     getEnv("FROM_EMAIL", "support@sleephaven.ai"),

		BackupBucket:    os.Getenv("BACKUP_S3_BUCKET"),
		BackupRegion:    getEnv("BACKUP_S3_REGION", "auto"),
		BackupEndpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
		BackupAccessKey: os.Getenv("BACKUP_S3_ACCESS_KEY"),
		BackupSecretKey: os.Getenv("BACKUP_S3_SECRET_KEY"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
