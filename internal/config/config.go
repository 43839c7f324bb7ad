package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string // public base URL, used for checkout return URLs when no Origin header

	// Database
	DatabaseURL string

	// JWT
	JWTSecretKey              string
	JWTAccessTokenExpireMin   int
	JWTRefreshTokenExpireDays int

	// ATTOM property data
	AttomAPIKey  string
	AttomBaseURL string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string

	// Stripe
	StripeSecretKey string
	StripePriceID   string

	// SigNoz
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "http://localhost:3000"),

		// Database - DATABASE_URL wins, otherwise built from POSTGRES_* pieces
		DatabaseURL: getDatabaseURL(),

		// JWT
		JWTSecretKey:              getEnv("JWT_SECRET_KEY", ""),
		JWTAccessTokenExpireMin:   getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 15),
		JWTRefreshTokenExpireDays: getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7),

		// ATTOM
		AttomAPIKey:  getEnv("ATTOM_API_KEY", ""),
		AttomBaseURL: getEnv("ATTOM_BASE_URL", ""),

		// OpenAI
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Stripe
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripePriceID:   getEnv("STRIPE_PRICE_ID", ""),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

// MissingProviderKeys reports which external-provider credentials are absent.
// The server still boots without them; affected endpoints return a typed
// "not configured" error per request.
func (c *Config) MissingProviderKeys() []string {
	var missing []string
	if c.AttomAPIKey == "" {
		missing = append(missing, "ATTOM_API_KEY")
	}
	if c.AttomBaseURL == "" {
		missing = append(missing, "ATTOM_BASE_URL")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.StripePriceID == "" {
		missing = append(missing, "STRIPE_PRICE_ID")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "kreitscore")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
