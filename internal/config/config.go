package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// DriverNone turns the conversion history off.
const DriverNone = "none"

// DevAuthSecret is the AUTH_HMAC_SECRET default. It is refused online.
const DevAuthSecret = "supersecret-dev-key"

type Config struct {
	Mode      Mode   `env:"MODE" envDefault:"offline"`
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	PublicURL string `env:"PUBLIC_URL"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"` // sqlite|postgres|none
	DBDSN    string `env:"DB_DSN"`

	EnableHistory bool `env:"ENABLE_HISTORY" envDefault:"true"`

	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassHash string `env:"ADMIN_PASS_HASH"` // bcrypt; empty disables login
	AuthSecret    string `env:"AUTH_HMAC_SECRET" envDefault:"supersecret-dev-key"`

	CORSOriginsOnline  []string `env:"CORS_ORIGINS_ONLINE" envSeparator:"," envDefault:"https://cgpa.mindengage.ai"`
	CORSOriginsOffline []string `env:"CORS_ORIGINS_OFFLINE" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3010"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// DefaultDirection is used when a request does not name one.
	DefaultDirection string `env:"DEFAULT_DIRECTION" envDefault:"nsu-aiub"`
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Parse(env.Options{})
}

// Parse is FromEnv with explicit options; tests pass Environment to avoid
// touching the real process environment.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOriginsOnline = trimAll(cfg.CORSOriginsOnline)
	cfg.CORSOriginsOffline = trimAll(cfg.CORSOriginsOffline)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		return fmt.Errorf("MODE must be offline or online, got %q", c.Mode)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", DriverNone:
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite, postgres or none, got %q", c.DBDriver)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.Mode == ModeOnline && c.HistoryEnabled() {
		if s := strings.TrimSpace(c.AuthSecret); s == "" || s == DevAuthSecret {
			return fmt.Errorf("AUTH_HMAC_SECRET must be set to a non-default value in online mode")
		}
	}
	return nil
}

// HistoryEnabled reports whether conversions should be logged to the DB.
func (c Config) HistoryEnabled() bool {
	return c.EnableHistory && c.DBDriver != DriverNone
}

// CORSOrigins returns the allowed origins for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
