// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Identity providers accepted in AUTH_PROVIDER.
const (
	AuthJWT      = "jwt"
	AuthSupabase = "supabase"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level: debug, info, warn or error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// AutoMigrate applies pending goose migrations on startup.
	AutoMigrate bool

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	AI   AIConfig
	Auth AuthConfig
}

// AIConfig configures the chat completion gateway.
type AIConfig struct {
	GatewayURL  string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// AuthConfig selects and configures the identity provider.
type AuthConfig struct {
	Provider string

	// JWTSecret verifies HS256 access tokens. Required when Provider is jwt.
	JWTSecret string
	// JWTAudience, when set, must appear in the token's aud claim.
	JWTAudience string

	// SupabaseURL and SupabaseServiceKey are required when Provider is supabase.
	SupabaseURL        string
	SupabaseServiceKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set and every
// value that could not be parsed.
func Load() (Config, error) {
	var problems []string
	p := parser{problems: &problems}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AutoMigrate:  p.boolean("AUTO_MIGRATE", false),
		MaxBodyBytes: int64(p.integer("MAX_BODY_BYTES", 64<<10)),
		AI: AIConfig{
			Model:       getEnv("AI_MODEL", "google/gemini-2.5-flash"),
			MaxTokens:   p.integer("AI_MAX_TOKENS", 8000),
			Temperature: p.float("AI_TEMPERATURE", 0.3),
			Timeout:     p.dur("AI_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Provider:    strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
			JWTAudience: os.Getenv("JWT_AUDIENCE"),
		},
	}

	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = require("DATABASE_URL")
	cfg.AI.GatewayURL = require("AI_GATEWAY_URL")
	cfg.AI.APIKey = require("AI_GATEWAY_API_KEY")

	switch cfg.Auth.Provider {
	case AuthJWT:
		cfg.Auth.JWTSecret = require("JWT_SECRET")
	case AuthSupabase:
		cfg.Auth.SupabaseURL = require("SUPABASE_URL")
		cfg.Auth.SupabaseServiceKey = require("SUPABASE_SERVICE_ROLE_KEY")
	default:
		problems = append(problems, fmt.Sprintf("AUTH_PROVIDER must be %q or %q, got %q", AuthJWT, AuthSupabase, cfg.Auth.Provider))
	}

	if len(missing) > 0 {
		problems = append([]string{"required environment variables not set: " + strings.Join(missing, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed optional variables and collects parse failures.
type parser struct {
	problems *[]string
}

func (p parser) fail(key, v string) {
	*p.problems = append(*p.problems, fmt.Sprintf("invalid value for %s: %q", key, v))
}

func (p parser) integer(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		p.fail(key, v)
		return fallback
	}
	return n
}

func (p parser) float(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil || f < 0 || f > 2 {
		p.fail(key, v)
		return fallback
	}
	return float32(f)
}

func (p parser) dur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.fail(key, v)
		return fallback
	}
	return d
}

func (p parser) boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return b
}
