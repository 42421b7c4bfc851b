package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"GO_ENV"`

	// Catalog/Progress backend: "postgres" or "firestore"
	CatalogBackend string `mapstructure:"CATALOG_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Firebase Admin (verify ID tokens from the frontend) + Drive API
	FirebaseProjectID  string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleCredentials  string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	ServiceAccountJSON string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Comma-separated Firebase UIDs or emails allowed to call admin sync
	AdminUIDs string `mapstructure:"ADMIN_UIDS"`

	// Base URL the stream proxy links are built from (e.g. https://api.example.com)
	PublicAPIURL string `mapstructure:"PUBLIC_API_URL"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
}

// Load reads .env (when present) plus the environment into a Config.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Missing .env is fine; the environment alone may carry everything
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GO_ENV", "development")
	viper.SetDefault("CATALOG_BACKEND", BackendPostgres)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.CatalogBackend != BackendPostgres && cfg.CatalogBackend != BackendFirestore {
		return nil, fmt.Errorf("invalid CATALOG_BACKEND %q (want %q or %q)",
			cfg.CatalogBackend, BackendPostgres, BackendFirestore)
	}
	if cfg.CatalogBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL (or set CATALOG_BACKEND=%s)", BackendFirestore)
	}

	return &cfg, nil
}

// AdminList splits the configured allow-list into trimmed, non-empty entries
func (c *Config) AdminList() []string {
	parts := strings.Split(c.AdminUIDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
