package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL      string
	AdminPathPrefix string
	TokenFile       string

	MinFundingAmount    float64
	MaxFundingAmount    float64
	MinWithdrawalAmount float64

	// GatewayDelay is the artificial pause between creating a payment order
	// and confirming it, standing in for gateway processing time.
	GatewayDelay time.Duration

	RequestTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	return &Config{
		APIBaseURL:          getEnvOrDefault("SUNYIELD_API_URL", "http://localhost:8080"),
		AdminPathPrefix:     getEnvOrDefault("SUNYIELD_ADMIN_PREFIX", "/admin"),
		TokenFile:           getEnvOrDefault("SUNYIELD_TOKEN_FILE", ".sunyield-tokens.json"),
		MinFundingAmount:    getEnvFloat("SUNYIELD_MIN_FUNDING", 100),
		MaxFundingAmount:    getEnvFloat("SUNYIELD_MAX_FUNDING", 100000),
		MinWithdrawalAmount: getEnvFloat("SUNYIELD_MIN_WITHDRAWAL", 100),
		GatewayDelay:        getEnvDuration("SUNYIELD_GATEWAY_DELAY", 3*time.Second),
		RequestTimeout:      getEnvDuration("SUNYIELD_REQUEST_TIMEOUT", 30*time.Second),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
