package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := Load()

	require.Equal(t, "3000", cfg.ServerPort)
	require.Equal(t, "development", cfg.ServerEnv)
	require.Equal(t, 15, cfg.JWTAccessTokenExpireMin)
	require.Equal(t, 7, cfg.JWTRefreshTokenExpireDays)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, "postgres://postgres:@localhost:5432/kreitscore?sslmode=disable", cfg.DatabaseURL)
}

func TestDatabaseURLPrecedence(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://direct:pw@db:5432/app")
	t.Setenv("POSTGRES_HOST", "ignored-host")

	cfg := Load()
	require.Equal(t, "postgres://direct:pw@db:5432/app", cfg.DatabaseURL)
}

func TestDatabaseURLAssembly(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "kreit")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "scores")
	t.Setenv("POSTGRES_SSLMODE", "require")

	cfg := Load()
	require.Equal(t, "postgres://kreit:pw@db.internal:5433/scores?sslmode=require", cfg.DatabaseURL)
}

func TestMissingProviderKeys(t *testing.T) {
	cfg := &Config{}
	require.ElementsMatch(t, []string{
		"ATTOM_API_KEY", "ATTOM_BASE_URL", "OPENAI_API_KEY",
		"STRIPE_SECRET_KEY", "STRIPE_PRICE_ID",
	}, cfg.MissingProviderKeys())

	cfg = &Config{
		AttomAPIKey:     "a",
		AttomBaseURL:    "https://api.example.com",
		OpenAIAPIKey:    "b",
		StripeSecretKey: "c",
		StripePriceID:   "d",
	}
	require.Empty(t, cfg.MissingProviderKeys())
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", "not-a-number")
	cfg := Load()
	require.Equal(t, 15, cfg.JWTAccessTokenExpireMin)
}
