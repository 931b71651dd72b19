package extension

import (
	"time"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/plugin"
	"github.com/xraph/paygate/store"
)

// Option configures the Paygate Forge extension.
type Option func(*Extension)

// WithStore sets the store for the gateway engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGatewayOption passes a paygate.Option through to the underlying engine.
func WithGatewayOption(opt paygate.Option) Option {
	return func(e *Extension) {
		e.gatewayOpts = append(e.gatewayOpts, opt)
	}
}

// WithPlugin registers a paygate plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.gatewayOpts = append(e.gatewayOpts, paygate.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for paygate routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithBillingOperator sets the address the billing worker charges as.
func WithBillingOperator(operator string) Option {
	return func(e *Extension) { e.config.BillingOperator = operator }
}

// WithBillingInterval sets how often the billing worker scans for due
// subscriptions.
func WithBillingInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.BillingInterval = d }
}
