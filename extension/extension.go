// Package extension provides the Forge extension adapter for Paygate.
//
// It implements the forge.Extension interface to integrate Paygate
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.paygate" or "paygate" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/store"
	"github.com/xraph/paygate/store/memory"
	"github.com/xraph/paygate/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "paygate"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Embeddable payment gateway engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Paygate as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	engine      *paygate.Gateway
	store       store.Store
	gatewayOpts []paygate.Option
}

// New creates a new Paygate Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Gateway instance.
// This is nil until Register is called.
func (e *Extension) Engine() *paygate.Gateway { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the gateway engine, and registers it in the DI container.
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

	// Build gateway options from resolved config.
	opts := e.buildGatewayOpts()

	eng := paygate.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*paygate.Gateway, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("paygate: extension not initialized")
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
		return errors.New("paygate: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildGatewayOpts constructs paygate.Option values from the resolved config.
func (e *Extension) buildGatewayOpts() []paygate.Option {
	opts := make([]paygate.Option, 0, len(e.gatewayOpts)+2)

	if e.config.BillingOperator != "" {
		if operator, err := types.ParseAddress(e.config.BillingOperator); err == nil {
			opts = append(opts, paygate.WithBillingOperator(operator))
		}
	}
	if e.config.BillingInterval > 0 {
		opts = append(opts, paygate.WithBillingInterval(e.config.BillingInterval))
	}

	// Append any pass-through gateway options.
	opts = append(opts, e.gatewayOpts...)

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
			return errors.New("paygate: configuration is required but not found in config files; " +
				"ensure 'extensions.paygate' or 'paygate' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("paygate: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("billing_operator", e.config.BillingOperator),
		forge.F("billing_interval", e.config.BillingInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.paygate" first (namespaced pattern).
	if cm.IsSet("extensions.paygate") {
		if err := cm.Bind("extensions.paygate", &cfg); err == nil {
			e.Logger().Debug("paygate: loaded config from file",
				forge.F("key", "extensions.paygate"),
			)
			return cfg, true
		}
		e.Logger().Warn("paygate: failed to bind extensions.paygate config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "paygate" key.
	if cm.IsSet("paygate") {
		if err := cm.Bind("paygate", &cfg); err == nil {
			e.Logger().Debug("paygate: loaded config from file",
				forge.F("key", "paygate"),
			)
			return cfg, true
		}
		e.Logger().Warn("paygate: failed to bind paygate config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BillingInterval == 0 {
		cfg.BillingInterval = defaults.BillingInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.BillingOperator == "" && programmaticConfig.BillingOperator != "" {
		yamlConfig.BillingOperator = programmaticConfig.BillingOperator
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.BillingInterval == 0 && programmaticConfig.BillingInterval != 0 {
		yamlConfig.BillingInterval = programmaticConfig.BillingInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
