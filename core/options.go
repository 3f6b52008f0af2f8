package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// MapConfigLoader serves a fixed raw configuration map.
type MapConfigLoader struct {
	Values map[string]any
}

func (l MapConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = MapConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			ConfigToMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			ConfigToMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			ConfigToMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// ResolveConfig loads the configuration through provider and layers the
// runtime overrides on top with resolver. Nil collaborators use the cfgx
// and go-options defaults.
func ResolveConfig(ctx context.Context, runtime Config, provider ConfigProvider, resolver OptionsResolver) (Config, error) {
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	defaults := DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return Config{}, err
	}
	return resolver.Resolve(defaults, loaded, runtime)
}

// ConfigToMap renders cfg as a layer map. Zero values are skipped unless
// includeZero is set, so sparse runtime overrides do not clobber loaded
// values.
func ConfigToMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Debug {
		layer["debug"] = cfg.Debug
	}

	api := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.API.Endpoint) != "" {
		api["endpoint"] = cfg.API.Endpoint
	}
	if includeZero || strings.TrimSpace(cfg.API.Key) != "" {
		api["key"] = cfg.API.Key
	}
	if includeZero || strings.TrimSpace(cfg.API.ListID) != "" {
		api["list_id"] = cfg.API.ListID
	}
	if includeZero || cfg.API.Timeout > 0 {
		api["timeout"] = cfg.API.Timeout
	}
	if includeZero || cfg.API.DebugTimeout > 0 {
		api["debug_timeout"] = cfg.API.DebugTimeout
	}
	if len(api) > 0 {
		layer["api"] = api
	}

	webhooks := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.WebHooks.CallbackURL) != "" {
		webhooks["callback_url"] = cfg.WebHooks.CallbackURL
	}
	if includeZero || strings.TrimSpace(cfg.WebHooks.Token) != "" {
		webhooks["token"] = cfg.WebHooks.Token
	}
	if includeZero || strings.TrimSpace(cfg.WebHooks.Description) != "" {
		webhooks["description"] = cfg.WebHooks.Description
	}
	if includeZero || cfg.WebHooks.Extended {
		webhooks["extended"] = cfg.WebHooks.Extended
	}
	if includeZero || cfg.WebHooks.VerifyMembership {
		webhooks["verify_membership"] = cfg.WebHooks.VerifyMembership
	}
	if includeZero || strings.TrimSpace(cfg.WebHooks.BurstMode) != "" {
		webhooks["burst_mode"] = cfg.WebHooks.BurstMode
	}
	if includeZero || cfg.WebHooks.BurstWindow > 0 {
		webhooks["burst_window"] = cfg.WebHooks.BurstWindow
	}
	if len(webhooks) > 0 {
		layer["webhooks"] = webhooks
	}
	return layer
}
