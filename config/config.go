package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Paystack PaystackConfig
	Revenue  RevenueConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// PaystackConfig covers both the inbound webhook (signature secret) and the
// outbound API (verification, transfers).
type PaystackConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string // defaults to SecretKey; Paystack signs with the secret key
	Timeout       time.Duration
}

type RevenueConfig struct {
	// MatchWindow bounds how far back the checkout flow looks for an
	// unclaimed payment when the client supplies no reference.
	MatchWindow               time.Duration
	DefaultDealerPercentage   int
	DefaultPlatformPercentage int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file, using environment")
	}
	cfg := &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "magari:magari@tcp(localhost:3306)/magari?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "magari",
		},
		Paystack: PaystackConfig{
			BaseURL:       getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:     os.Getenv("PAYSTACK_SECRET_KEY"),
			WebhookSecret: os.Getenv("PAYSTACK_WEBHOOK_SECRET"),
			Timeout:       15 * time.Second,
		},
		Revenue: RevenueConfig{
			MatchWindow:               getduration("REVENUE_MATCH_WINDOW", 5*time.Minute),
			DefaultDealerPercentage:   getint("REVENUE_DEALER_PERCENTAGE", 60),
			DefaultPlatformPercentage: getint("REVENUE_PLATFORM_PERCENTAGE", 40),
		},
	}
	if cfg.Paystack.WebhookSecret == "" {
		cfg.Paystack.WebhookSecret = cfg.Paystack.SecretKey
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
