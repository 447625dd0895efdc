package extension

import "time"

// Config holds the Custody extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.custody" or "custody" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// MinimumUSD is the minimum contribution as a decimal USD amount
	// (default: "50").
	MinimumUSD string `json:"minimum_usd" mapstructure:"minimum_usd" yaml:"minimum_usd"`

	// Owner overrides the deployer address as owner.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// Policy is the transfer failure policy: "rollback" (default) or "halt".
	Policy string `json:"policy" mapstructure:"policy" yaml:"policy"`

	// MaxPriceAge rejects price readings older than this. Zero disables
	// the check.
	MaxPriceAge time.Duration `json:"max_price_age" mapstructure:"max_price_age" yaml:"max_price_age"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinimumUSD:    "50",
		Policy:        "rollback",
		PluginTimeout: 5 * time.Second,
	}
}
