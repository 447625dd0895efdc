// Package extension provides the Forge extension adapter for Custody.
//
// It implements the forge.Extension interface to integrate Custody
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.custody" or "custody" keys.
package extension

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	custody "github.com/xraph/custody"
	"github.com/xraph/custody/oracle"
	"github.com/xraph/custody/store"
	"github.com/xraph/custody/store/memory"
	"github.com/xraph/custody/transfer"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "custody"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Funds-custody ledger with oracle-priced contributions"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Custody as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *custody.Ledger
	store      store.Store
	deployer   common.Address
	feed       oracle.Feed
	transferer transfer.Transferer
	ledgerOpts []custody.Option
}

// New creates a new Custody Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *custody.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the custody engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}

	eng, err := custody.New(e.deployer, e.feed, e.transferer, opts...)
	if err != nil {
		return err
	}
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*custody.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("custody: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(ctx context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(ctx); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension]. A halted ledger is unhealthy.
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("custody: store not initialized")
	}
	if e.engine != nil {
		if err := e.engine.Halted(ctx); err != nil {
			return err
		}
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs custody.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() ([]custody.Option, error) {
	cfg := custody.Config{
		MinimumUSD:     e.config.MinimumUSD,
		Owner:          e.config.Owner,
		Policy:         e.config.Policy,
		MaxPriceAge:    e.config.MaxPriceAge,
		PluginTimeout:  e.config.PluginTimeout,
		DisableMigrate: e.config.DisableMigrate,
	}
	configured, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	opts := make([]custody.Option, 0, len(configured)+len(e.ledgerOpts)+1)
	opts = append(opts, custody.WithStore(e.store))
	opts = append(opts, configured...)

	// Append any pass-through custody options.
	opts = append(opts, e.ledgerOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("custody: configuration is required but not found in config files; " +
				"ensure 'extensions.custody' or 'custody' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("custody: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("minimum_usd", e.config.MinimumUSD),
		forge.F("owner", e.config.Owner),
		forge.F("policy", e.config.Policy),
		forge.F("max_price_age", e.config.MaxPriceAge),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.custody" first (namespaced pattern).
	if cm.IsSet("extensions.custody") {
		if err := cm.Bind("extensions.custody", &cfg); err == nil {
			e.Logger().Debug("custody: loaded config from file",
				forge.F("key", "extensions.custody"),
			)
			return cfg, true
		}
		e.Logger().Warn("custody: failed to bind extensions.custody config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "custody" key.
	if cm.IsSet("custody") {
		if err := cm.Bind("custody", &cfg); err == nil {
			e.Logger().Debug("custody: loaded config from file",
				forge.F("key", "custody"),
			)
			return cfg, true
		}
		e.Logger().Warn("custody: failed to bind custody config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.MinimumUSD == "" {
		cfg.MinimumUSD = defaults.MinimumUSD
	}
	if cfg.Policy == "" {
		cfg.Policy = defaults.Policy
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.MinimumUSD == "" {
		yamlConfig.MinimumUSD = programmaticConfig.MinimumUSD
	}
	if yamlConfig.Owner == "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}
	if yamlConfig.Policy == "" {
		yamlConfig.Policy = programmaticConfig.Policy
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.MaxPriceAge == 0 {
		yamlConfig.MaxPriceAge = programmaticConfig.MaxPriceAge
	}
	if yamlConfig.PluginTimeout == 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
