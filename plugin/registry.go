package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onConfigInitialized []OnConfigInitialized
	onConfigUpdated     []OnConfigUpdated
	onInvoiceCreated    []OnInvoiceCreated
	onInvoiceFunded     []OnInvoiceFunded
	onInvoiceSettled    []OnInvoiceSettled
	onInvoiceCancelled  []OnInvoiceCancelled
	onReputationUpdated []OnReputationUpdated
	riskAssessors       map[string]RiskAssessor
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:        slog.Default(),
		riskAssessors: make(map[string]RiskAssessor),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
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
	if v, ok := p.(OnConfigInitialized); ok {
		r.onConfigInitialized = append(r.onConfigInitialized, v)
	}
	if v, ok := p.(OnConfigUpdated); ok {
		r.onConfigUpdated = append(r.onConfigUpdated, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoiceFunded); ok {
		r.onInvoiceFunded = append(r.onInvoiceFunded, v)
	}
	if v, ok := p.(OnInvoiceSettled); ok {
		r.onInvoiceSettled = append(r.onInvoiceSettled, v)
	}
	if v, ok := p.(OnInvoiceCancelled); ok {
		r.onInvoiceCancelled = append(r.onInvoiceCancelled, v)
	}
	if v, ok := p.(OnReputationUpdated); ok {
		r.onReputationUpdated = append(r.onReputationUpdated, v)
	}
	if v, ok := p.(RiskAssessor); ok {
		r.riskAssessors[v.AssessorName()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnConfigInitialized)(nil)).Elem(), "OnConfigInitialized")
	checkInterface(reflect.TypeOf((*OnConfigUpdated)(nil)).Elem(), "OnConfigUpdated")
	checkInterface(reflect.TypeOf((*OnInvoiceCreated)(nil)).Elem(), "OnInvoiceCreated")
	checkInterface(reflect.TypeOf((*OnInvoiceFunded)(nil)).Elem(), "OnInvoiceFunded")
	checkInterface(reflect.TypeOf((*OnInvoiceSettled)(nil)).Elem(), "OnInvoiceSettled")
	checkInterface(reflect.TypeOf((*OnInvoiceCancelled)(nil)).Elem(), "OnInvoiceCancelled")
	checkInterface(reflect.TypeOf((*OnReputationUpdated)(nil)).Elem(), "OnReputationUpdated")
	checkInterface(reflect.TypeOf((*RiskAssessor)(nil)).Elem(), "RiskAssessor")

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
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
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

// EmitConfigInitialized emits a config initialized event.
func (r *Registry) EmitConfigInitialized(ctx context.Context, cfg interface{}) {
	r.mu.RLock()
	plugins := r.onConfigInitialized
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConfigInitialized(ctx, cfg)
		}); err != nil {
			r.logger.Warn("plugin OnConfigInitialized failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitConfigUpdated emits a config updated event.
func (r *Registry) EmitConfigUpdated(ctx context.Context, oldCfg, newCfg interface{}) {
	r.mu.RLock()
	plugins := r.onConfigUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConfigUpdated(ctx, oldCfg, newCfg)
		}); err != nil {
			r.logger.Warn("plugin OnConfigUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceCreated(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceFunded emits an invoice funded event.
func (r *Registry) EmitInvoiceFunded(ctx context.Context, inv, receipt interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceFunded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceFunded(ctx, inv, receipt)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceFunded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceSettled emits an invoice settled event.
func (r *Registry) EmitInvoiceSettled(ctx context.Context, inv, result interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceSettled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceSettled(ctx, inv, result)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceSettled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceCancelled emits an invoice cancelled event.
func (r *Registry) EmitInvoiceCancelled(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceCancelled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceCancelled(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceCancelled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReputationUpdated emits a reputation updated event.
func (r *Registry) EmitReputationUpdated(ctx context.Context, rep interface{}) {
	r.mu.RLock()
	plugins := r.onReputationUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReputationUpdated(ctx, rep)
		}); err != nil {
			r.logger.Warn("plugin OnReputationUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetRiskAssessor returns a risk assessor by name.
func (r *Registry) GetRiskAssessor(name string) RiskAssessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.riskAssessors[name]
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the factoring pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
