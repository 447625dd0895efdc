package extension

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	custody "github.com/xraph/custody"
	"github.com/xraph/custody/oracle"
	"github.com/xraph/custody/plugin"
	"github.com/xraph/custody/store"
	"github.com/xraph/custody/transfer"
)

// Option configures the Custody Forge extension.
type Option func(*Extension)

// WithDeployer sets the deployer, who owns the ledger unless Config.Owner
// says otherwise.
func WithDeployer(addr common.Address) Option {
	return func(e *Extension) { e.deployer = addr }
}

// WithFeed sets the price feed.
func WithFeed(f oracle.Feed) Option {
	return func(e *Extension) { e.feed = f }
}

// WithTransferer sets the transfer primitive used by withdrawals.
func WithTransferer(t transfer.Transferer) Option {
	return func(e *Extension) { e.transferer = t }
}

// WithStore sets the store for the custody engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a custody.Option through to the underlying engine.
func WithLedgerOption(opt custody.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a custody plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, custody.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithMinimumUSD sets the minimum contribution.
func WithMinimumUSD(amount string) Option {
	return func(e *Extension) { e.config.MinimumUSD = amount }
}

// WithPolicy sets the transfer failure policy.
func WithPolicy(p custody.Policy) Option {
	return func(e *Extension) { e.config.Policy = string(p) }
}

// WithMaxPriceAge sets the maximum accepted age of a price reading.
func WithMaxPriceAge(d time.Duration) Option {
	return func(e *Extension) { e.config.MaxPriceAge = d }
}
