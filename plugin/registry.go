package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/custody/funding"
	"github.com/xraph/custody/types"
	"github.com/xraph/custody/withdrawal"
)

// DefaultTimeout bounds each plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onFunded           []OnFunded
	onFundingRejected  []OnFundingRejected
	onDeposited        []OnDeposited
	onWithdrawn        []OnWithdrawn
	onWithdrawalFailed []OnWithdrawalFailed
	onUnauthorized     []OnUnauthorized
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout. Non-positive values are ignored.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnFunded); ok {
		r.onFunded = append(r.onFunded, v)
	}
	if v, ok := p.(OnFundingRejected); ok {
		r.onFundingRejected = append(r.onFundingRejected, v)
	}
	if v, ok := p.(OnDeposited); ok {
		r.onDeposited = append(r.onDeposited, v)
	}
	if v, ok := p.(OnWithdrawn); ok {
		r.onWithdrawn = append(r.onWithdrawn, v)
	}
	if v, ok := p.(OnWithdrawalFailed); ok {
		r.onWithdrawalFailed = append(r.onWithdrawalFailed, v)
	}
	if v, ok := p.(OnUnauthorized); ok {
		r.onUnauthorized = append(r.onUnauthorized, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnFunded", reflect.TypeOf((*OnFunded)(nil)).Elem()},
	{"OnFundingRejected", reflect.TypeOf((*OnFundingRejected)(nil)).Elem()},
	{"OnDeposited", reflect.TypeOf((*OnDeposited)(nil)).Elem()},
	{"OnWithdrawn", reflect.TypeOf((*OnWithdrawn)(nil)).Elem()},
	{"OnWithdrawalFailed", reflect.TypeOf((*OnWithdrawalFailed)(nil)).Elem()},
	{"OnUnauthorized", reflect.TypeOf((*OnUnauthorized)(nil)).Elem()},
}

// implementedInterfaces returns the hook names implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			interfaces = append(interfaces, h.name)
		}
	}
	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, l interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, l)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFunded emits a contribution recorded event.
func (r *Registry) EmitFunded(ctx context.Context, e *funding.Event) {
	r.mu.RLock()
	plugins := r.onFunded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFunded(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnFunded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFundingRejected emits a contribution rejected event.
func (r *Registry) EmitFundingRejected(ctx context.Context, funder common.Address, amount types.Value, reason error) {
	r.mu.RLock()
	plugins := r.onFundingRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFundingRejected(ctx, funder, amount, reason)
		}); err != nil {
			r.logger.Warn("plugin OnFundingRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDeposited emits a deposit accepted event.
func (r *Registry) EmitDeposited(ctx context.Context, e *funding.Event) {
	r.mu.RLock()
	plugins := r.onDeposited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDeposited(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnDeposited failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWithdrawn emits a withdrawal completed event.
func (r *Registry) EmitWithdrawn(ctx context.Context, w *withdrawal.Withdrawal) {
	r.mu.RLock()
	plugins := r.onWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawn(ctx, w)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWithdrawalFailed emits a withdrawal failed event.
func (r *Registry) EmitWithdrawalFailed(ctx context.Context, w *withdrawal.Withdrawal, reason error) {
	r.mu.RLock()
	plugins := r.onWithdrawalFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawalFailed(ctx, w, reason)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawalFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUnauthorized emits an access denied event.
func (r *Registry) EmitUnauthorized(ctx context.Context, caller common.Address, action string) {
	r.mu.RLock()
	plugins := r.onUnauthorized
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnauthorized(ctx, caller, action)
		}); err != nil {
			r.logger.Warn("plugin OnUnauthorized failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the custody pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
