package extension

import "time"

// Config holds the factoring extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.factoring" or "factoring" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// KeepAliveInterval is how frequently the engine renews record
	// lifetimes on stores that expire idle records (default: 1h).
	KeepAliveInterval time.Duration `json:"keep_alive_interval" mapstructure:"keep_alive_interval" yaml:"keep_alive_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeepAliveInterval: time.Hour,
	}
}
