package custody

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/xraph/custody/types"
)

// Config is the environment-driven configuration of a Ledger. Zero fields
// keep the defaults of New.
type Config struct {
	// MinimumUSD is the minimum contribution as a decimal USD amount.
	MinimumUSD string `env:"CUSTODY_MINIMUM_USD" envDefault:"50"`

	// Owner overrides the deployer as owner when set.
	Owner string `env:"CUSTODY_OWNER"`

	// Policy is "rollback" or "halt".
	Policy string `env:"CUSTODY_POLICY" envDefault:"rollback"`

	MaxPriceAge    time.Duration `env:"CUSTODY_MAX_PRICE_AGE"`
	PluginTimeout  time.Duration `env:"CUSTODY_PLUGIN_TIMEOUT"`
	DisableMigrate bool          `env:"CUSTODY_DISABLE_MIGRATE"`
}

// ConfigFromEnv loads Config from the process environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs MultiError

	if c.MinimumUSD != "" {
		d, err := decimal.NewFromString(c.MinimumUSD)
		switch {
		case err != nil:
			errs.Add(ValidationError{Field: "minimum_usd", Message: err.Error()})
		case d.IsNegative():
			errs.Add(ValidationError{Field: "minimum_usd", Message: "must not be negative"})
		}
	}
	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		errs.Add(ValidationError{Field: "owner", Message: fmt.Sprintf("%q is not an address", c.Owner)})
	}
	if _, err := ParsePolicy(c.Policy); err != nil {
		errs.Add(err)
	}
	if c.MaxPriceAge < 0 {
		errs.Add(ValidationError{Field: "max_price_age", Message: "must not be negative"})
	}
	if c.PluginTimeout < 0 {
		errs.Add(ValidationError{Field: "plugin_timeout", Message: "must not be negative"})
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Options converts c into Ledger options.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []Option
	if c.MinimumUSD != "" {
		minimum, err := types.USD(c.MinimumUSD)
		if err != nil {
			return nil, ValidationError{Field: "minimum_usd", Message: err.Error()}
		}
		opts = append(opts, WithMinimum(minimum))
	}
	if c.Owner != "" {
		opts = append(opts, WithOwner(common.HexToAddress(c.Owner)))
	}

	policy, _ := ParsePolicy(c.Policy) //nolint:errcheck // validated above
	opts = append(opts, WithPolicy(policy))

	if c.MaxPriceAge > 0 {
		opts = append(opts, WithMaxPriceAge(c.MaxPriceAge))
	}
	if c.PluginTimeout > 0 {
		opts = append(opts, WithPluginTimeout(c.PluginTimeout))
	}
	if c.DisableMigrate {
		opts = append(opts, WithAutoMigrate(false))
	}
	return opts, nil
}
