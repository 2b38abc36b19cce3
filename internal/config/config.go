package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvProduction = "production"

	// used only outside production when SESSION_SECRET is unset
	devSessionSecret = "signin-service-development-secret"

	authorityBase = "https://login.microsoftonline.com/"
)

type Config struct {
	AppPort     string `env:"PORT" envDefault:"3000"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	// proxies whose X-Forwarded-For is honoured; empty means the peer
	// address is the client address
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	ClientID     string   `env:"CLIENT_ID,required,notEmpty"`
	TenantID     string   `env:"TENANT_ID,required,notEmpty"`
	ClientSecret string   `env:"CLIENT_SECRET,required,notEmpty"`
	RedirectURI  string   `env:"REDIRECT_URI,required,notEmpty"`
	Authority    string   `env:"AUTHORITY_URL"`
	Scopes       []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile,User.Read"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	LogDir   string `env:"LOG_DIR" envDefault:"."`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return Config{}, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	return cfg, nil
}

// IsProduction reports whether secure cookies and file-only logging apply.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// AuthorityURL returns the OIDC issuer the provider client discovers from.
func (c Config) AuthorityURL() string {
	if c.Authority != "" {
		return strings.TrimRight(c.Authority, "/")
	}
	return authorityBase + c.TenantID + "/v2.0"
}

// MultiTenant reports whether TENANT_ID is one of the Entra aliases whose
// tokens are issued by the signing-in user's own tenant.
func (c Config) MultiTenant() bool {
	switch strings.ToLower(c.TenantID) {
	case "common", "organizations", "consumers":
		return c.Authority == ""
	}
	return false
}
