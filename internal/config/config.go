// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, parsed from environment
// variables with sensible defaults for local development.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// DBPath is the SQLite database file.
	DBPath string `env:"DB_PATH" envDefault:"./data/coopledger.db"`

	// JWTSecret signs and verifies session tokens. Must match the
	// external identity provider's secret.
	JWTSecret string `env:"JWT_SECRET,required"`

	// TokenDuration is how long issued admin tokens stay valid.
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"24h"`

	// AdminPasswordHash is the bcrypt hash of the admin credential.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// SupportFee is the fixed recurring support fee, in smallest units.
	SupportFee int64 `env:"SUPPORT_FEE" envDefault:"500"`

	// BonusReserve is the fee portion routed to the reserve fund.
	BonusReserve int64 `env:"BONUS_RESERVE" envDefault:"200"`

	// BonusMaxDepth is how many ancestor levels share the bonus pool.
	BonusMaxDepth int `env:"BONUS_MAX_DEPTH" envDefault:"10"`

	// TreeMaxDepth bounds the referral spillover search below a referrer.
	TreeMaxDepth int `env:"TREE_MAX_DEPTH" envDefault:"12"`

	// ActingAmount is the fixed contribution for acting members.
	ActingAmount int64 `env:"ACTING_AMOUNT" envDefault:"10000"`

	// MetricsEnabled exposes /metrics when set.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.BonusReserve >= cfg.SupportFee {
		return nil, fmt.Errorf("bonus reserve %d must be below support fee %d", cfg.BonusReserve, cfg.SupportFee)
	}
	return cfg, nil
}
