// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"ACMS_DB_PATH" envDefault:"./data/acms.db"`
	SessionSecret string `env:"ACMS_SESSION_SECRET,required"`
	ServerHost    string `env:"ACMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ACMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ACMS_ENV" envDefault:"development"`
	LogLevel      string `env:"ACMS_LOG_LEVEL" envDefault:"info"`

	// AdminEmail is the designated administrator account. Logging in with this
	// email when no account exists triggers the bootstrap path (account
	// creation plus admin registration).
	AdminEmail string `env:"ACMS_ADMIN_EMAIL" envDefault:"admin@acmeinc.com"`

	// Cache configuration
	RedisURL    string `env:"ACMS_REDIS_URL"`                       // Optional Redis URL for the content cache
	CachePrefix string `env:"ACMS_CACHE_PREFIX" envDefault:"acms:"` // Redis key prefix
	CacheTTL    int    `env:"ACMS_CACHE_TTL" envDefault:"3600"`     // Default cache TTL in seconds

	// Seeding configuration
	DoSeed bool `env:"ACMS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ACMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ACMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ACMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.AdminEmail == "" || !strings.Contains(cfg.AdminEmail, "@") {
		return nil, fmt.Errorf("ACMS_ADMIN_EMAIL must be a valid email address, got %q", cfg.AdminEmail)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
