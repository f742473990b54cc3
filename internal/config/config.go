// Package config loads server configuration from environment variables.
//
// WHY ENV VARS (AND NOT A CONFIG FILE)?
// The whole surface is a handful of values, and env vars are what every
// deployment target (systemd, containers, PaaS) speaks natively. A config
// library would add a file format nothing here needs.
//
// The two identity-provider values are REQUIRED: without them the server
// cannot verify a single request, so a missing value is a startup-fatal
// configuration error, not something to discover per request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the server needs at process start.
type Config struct {
	Port   int    // HTTP listen port
	DBPath string // SQLite database file

	IdentityBaseURL   string // identity provider base URL (required)
	IdentityJWTSecret string // service credential used to verify access tokens (required)

	// OAuth login flow credentials. Optional — when unset, the /auth/login
	// redirect flow is not registered and clients must obtain tokens from
	// the provider themselves.
	IdentityClientID     string
	IdentityClientSecret string
	IdentityCallbackURL  string

	AllowedOrigins []string // CORS origins for the browser frontend
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 8080,
		DBPath:               getEnv("DB_PATH", "data/memoboard.db"),
		IdentityBaseURL:      strings.TrimRight(os.Getenv("IDENTITY_BASE_URL"), "/"),
		IdentityJWTSecret:    os.Getenv("IDENTITY_JWT_SECRET"),
		IdentityClientID:     os.Getenv("IDENTITY_CLIENT_ID"),
		IdentityClientSecret: os.Getenv("IDENTITY_CLIENT_SECRET"),
		IdentityCallbackURL:  os.Getenv("IDENTITY_CALLBACK_URL"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.IdentityBaseURL == "" {
		return nil, errors.New("config: IDENTITY_BASE_URL is required")
	}
	if cfg.IdentityJWTSecret == "" {
		return nil, errors.New("config: IDENTITY_JWT_SECRET is required")
	}

	if cfg.IdentityCallbackURL == "" {
		cfg.IdentityCallbackURL = fmt.Sprintf("http://localhost:%d/auth/callback", cfg.Port)
	}

	// CORS: comma-separated list, defaulting to the usual local frontend.
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// LoginFlowEnabled reports whether the OAuth login redirect flow can be
// registered (both client credentials are present).
func (c *Config) LoginFlowEnabled() bool {
	return c.IdentityClientID != "" && c.IdentityClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
