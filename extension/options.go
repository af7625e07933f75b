package extension

import (
	"time"

	factoring "github.com/xraph/factoring"
	"github.com/xraph/factoring/ledger"
	"github.com/xraph/factoring/plugin"
	"github.com/xraph/factoring/store"
)

// Option configures the factoring Forge extension.
type Option func(*Extension)

// WithStore sets the store for the factoring engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedger sets the settlement ledger for the factoring engine.
func WithLedger(l ledger.Ledger) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, factoring.WithLedger(l))
	}
}

// WithEngineOption passes a factoring.Option through to the underlying engine.
func WithEngineOption(opt factoring.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a factoring plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, factoring.WithPlugin(p))
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

// WithKeepAliveInterval sets how frequently record lifetimes are renewed.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.KeepAliveInterval = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
