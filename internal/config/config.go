// Package config loads engine configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the engine configuration loaded from environment variables.
type Config struct {
	// ServiceHost and ServicePort locate the running workflow service.
	ServiceHost string
	ServicePort string

	// OwnerEmail and OwnerPassword are the fixed administrative credentials
	// used for login and, on a fresh instance, the one-time owner setup.
	OwnerEmail    string
	OwnerPassword string

	// TokenIssuer, TokenAudience and TokenSecret shape the minted API-key
	// token. The secret is shared with the service; the claims must match
	// what the service's own verifier expects.
	TokenIssuer   string
	TokenAudience string
	TokenSecret   string

	// DataDir is the source-of-truth directory holding workflows/ and
	// credentials/ subdirectories of artifact JSON files.
	DataDir string

	// StorePath is the service's embedded SQLite database file.
	StorePath string

	// ServiceBin is the service's native CLI executable used for bulk
	// import and single-artifact export.
	ServiceBin string
}

// BaseURL returns the HTTP origin of the workflow service.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.ServiceHost, c.ServicePort)
}

// Load reads configuration from environment variables and returns a validated
// Config. Required: N8NSYNC_OWNER_EMAIL, N8NSYNC_OWNER_PASSWORD,
// N8NSYNC_TOKEN_SECRET, N8NSYNC_DATA_DIR (must be an existing directory).
// Optional with defaults: N8NSYNC_SERVICE_HOST (localhost),
// N8NSYNC_SERVICE_PORT (5678), N8NSYNC_TOKEN_ISSUER (n8n),
// N8NSYNC_TOKEN_AUDIENCE (public-api), N8NSYNC_STORE_PATH
// (~/.n8n/database.sqlite), N8NSYNC_SERVICE_BIN (n8n).
func Load() (*Config, error) {
	cfg := &Config{
		ServiceHost:   envOrDefault("N8NSYNC_SERVICE_HOST", "localhost"),
		ServicePort:   envOrDefault("N8NSYNC_SERVICE_PORT", "5678"),
		TokenIssuer:   envOrDefault("N8NSYNC_TOKEN_ISSUER", "n8n"),
		TokenAudience: envOrDefault("N8NSYNC_TOKEN_AUDIENCE", "public-api"),
		ServiceBin:    envOrDefault("N8NSYNC_SERVICE_BIN", "n8n"),
	}

	var err error
	if cfg.OwnerEmail, err = requireEnv("N8NSYNC_OWNER_EMAIL"); err != nil {
		return nil, err
	}
	if cfg.OwnerPassword, err = requireEnv("N8NSYNC_OWNER_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.TokenSecret, err = requireEnv("N8NSYNC_TOKEN_SECRET"); err != nil {
		return nil, err
	}
	if cfg.DataDir, err = requireEnv("N8NSYNC_DATA_DIR"); err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("N8NSYNC_DATA_DIR %q: %w", cfg.DataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("N8NSYNC_DATA_DIR %q is not a directory", cfg.DataDir)
	}

	cfg.StorePath = os.Getenv("N8NSYNC_STORE_PATH")
	if cfg.StorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home for default store path: %w", err)
		}
		cfg.StorePath = filepath.Join(home, ".n8n", "database.sqlite")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}
