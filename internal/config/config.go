package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Auth configuration
	AuthSecret    string // HMAC secret for locally issued tokens
	AuthJWKSURL   string // optional external IdP JWKS endpoint; empty = local tokens only
	TokenIssuer   string
	TokenTTLHours int
	// Attachment storage
	AttachmentDir string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:   tablePrefix,
		AuthSecret:    getEnv("AUTH_SECRET", ""),
		AuthJWKSURL:   getEnv("AUTH_JWKS_URL", ""),
		TokenIssuer:   getEnv("TOKEN_ISSUER", "testdeck"),
		TokenTTLHours: 24,
		AttachmentDir: getEnv("ATTACHMENT_DIR", "./data/attachments"),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
