package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	GeminiAPIKey        string
	GeminiModel         string
	AIRateLimit         int
	AIRateWindowSeconds int
	TokenTTLHours       int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:memodeck.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		GeminiAPIKey:        envOr("GEMINI_API_KEY", ""),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		AIRateLimit:         envIntOr("AI_RATE_LIMIT", 10),
		AIRateWindowSeconds: envIntOr("AI_RATE_WINDOW_SECONDS", 60),
		TokenTTLHours:       envIntOr("TOKEN_TTL_HOURS", 24 * 7),
	}
}

// Validate checks the configuration for values that would prevent the
// server from operating. All problems are reported at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.AIRateLimit <= 0 {
		problems = append(problems, "AI_RATE_LIMIT must be positive")
	}
	if c.AIRateWindowSeconds <= 0 {
		problems = append(problems, "AI_RATE_WINDOW_SECONDS must be positive")
	}
	if c.TokenTTLHours <= 0 {
		problems = append(problems, "TOKEN_TTL_HOURS must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
