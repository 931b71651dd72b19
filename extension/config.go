package extension

import "time"

// Config holds the Paygate extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.paygate" or "paygate" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration. Paygate registers no
	// routes today; the flag is honored for forward compatibility.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for paygate routes (default: "/paygate").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// BillingOperator is the address the background billing worker invokes
	// subscription charges as. When empty the worker is disabled and billing
	// must be triggered externally.
	BillingOperator string `json:"billing_operator" mapstructure:"billing_operator" yaml:"billing_operator"`

	// BillingInterval is how often the billing worker scans for due
	// subscriptions (default: 1m).
	BillingInterval time.Duration `json:"billing_interval" mapstructure:"billing_interval" yaml:"billing_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BillingInterval: time.Minute,
	}
}
