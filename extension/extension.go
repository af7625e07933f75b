// Package extension provides the Forge extension adapter for the
// factoring engine.
//
// It implements the forge.Extension interface to integrate the engine
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.factoring" or
// "factoring" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	factoring "github.com/xraph/factoring"
	"github.com/xraph/factoring/store"
	"github.com/xraph/factoring/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "factoring"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Programmable invoice factoring engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the factoring engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *factoring.Engine
	store      store.Store
	engineOpts []factoring.Option
}

// New creates a new factoring Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying factoring engine.
// This is nil until Register is called.
func (e *Extension) Engine() *factoring.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
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

	opts := e.buildEngineOpts()

	e.engine = factoring.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*factoring.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("factoring: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("factoring: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs factoring.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []factoring.Option {
	opts := make([]factoring.Option, 0, len(e.engineOpts)+1)

	if e.config.KeepAliveInterval > 0 {
		opts = append(opts, factoring.WithKeepAliveInterval(e.config.KeepAliveInterval))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("factoring: configuration is required but not found in config files; " +
				"ensure 'extensions.factoring' or 'factoring' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("factoring: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("keep_alive_interval", e.config.KeepAliveInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.factoring" first (namespaced pattern).
	if cm.IsSet("extensions.factoring") {
		if err := cm.Bind("extensions.factoring", &cfg); err == nil {
			e.Logger().Debug("factoring: loaded config from file",
				forge.F("key", "extensions.factoring"),
			)
			return cfg, true
		}
		e.Logger().Warn("factoring: failed to bind extensions.factoring config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "factoring" key.
	if cm.IsSet("factoring") {
		if err := cm.Bind("factoring", &cfg); err == nil {
			e.Logger().Debug("factoring: loaded config from file",
				forge.F("key", "factoring"),
			)
			return cfg, true
		}
		e.Logger().Warn("factoring: failed to bind factoring config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.KeepAliveInterval == 0 {
		cfg.KeepAliveInterval = defaults.KeepAliveInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.KeepAliveInterval == 0 && programmaticConfig.KeepAliveInterval != 0 {
		yamlConfig.KeepAliveInterval = programmaticConfig.KeepAliveInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
