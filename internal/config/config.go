package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned by Load when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Config holds the application configuration.
type Config struct {
	ServerPort         int
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	KeepLoggedInTTL    time.Duration // token lifetime when the client asks to stay logged in
	BcryptCost         int
	SlugMaxLength      int
	LogLevel           string
	Environment        string
	CORSAllowedOrigins []string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present.
// The signing secret has no default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	keepTTL, err := time.ParseDuration(getEnv("KEEP_LOGGED_IN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid KEEP_LOGGED_IN_TTL: %w", err)
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	slugMax, err := strconv.Atoi(getEnv("SLUG_MAX_LENGTH", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLUG_MAX_LENGTH: %w", err)
	}

	return &Config{
		ServerPort:         port,
		DatabaseURL:        getEnv("DATABASE_URL", "./postgate.db"),
		JWTSecret:          secret,
		TokenTTL:           tokenTTL,
		KeepLoggedInTTL:    keepTTL,
		BcryptCost:         cost,
		SlugMaxLength:      slugMax,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        getEnv("APP_ENV", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
