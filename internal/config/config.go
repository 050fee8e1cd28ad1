package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

type Config struct {
	// Server
	Port            string        `env:"PORT" envDefault:"5000"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Database
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Redis, only needed when SessionStore is "redis"
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Session
	SessionStore         string        `env:"SESSION_STORE" envDefault:"postgres"`
	SessionSecret        string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionCookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"qr_session"`
	SessionCookieDomain  string        `env:"SESSION_COOKIE_DOMAIN"`
	SessionCookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionSameSite      string        `env:"SESSION_SAME_SITE" envDefault:"lax"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionSliding       bool          `env:"SESSION_SLIDING" envDefault:"false"`
	SessionMaxLifetime   time.Duration `env:"SESSION_MAX_LIFETIME" envDefault:"0s"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// QR codes
	QRCodeSize       int  `env:"QRCODE_SIZE" envDefault:"256"`
	AutoSaveRendered bool `env:"AUTO_SAVE_RENDERED" envDefault:"true"`
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("SESSION_STORE must be one of %q, %q or %q, got %q",
			SessionStorePostgres, SessionStoreRedis, SessionStoreMemory, c.SessionStore)
	}

	if _, err := parseSameSite(c.SessionSameSite); err != nil {
		return err
	}
	if strings.EqualFold(c.SessionSameSite, "none") && !c.SessionCookieSecure {
		return fmt.Errorf("SESSION_SAME_SITE=none requires SESSION_COOKIE_SECURE=true")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionMaxLifetime < 0 {
		return fmt.Errorf("SESSION_MAX_LIFETIME must not be negative")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SameSite returns the cookie SameSite mode. Validate has already rejected bad values.
func (c *Config) SameSite() http.SameSite {
	mode, _ := parseSameSite(c.SessionSameSite)
	return mode
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax", "":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("SESSION_SAME_SITE must be lax, strict or none, got %q", value)
	}
}
