package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIEndpoint        = "https://api.brevo.com/v3/"
	DefaultWebHookDescription = "Splash Sync WebHook"
	defaultAPITimeout         = 3 * time.Second
	defaultAPIDebugTimeout    = 15 * time.Second
	defaultWebHookBurstWindow = 2 * time.Second
	defaultServiceName        = "brevo"
)

const (
	WebHookBurstModeNone     = "none"
	WebHookBurstModeCoalesce = "coalesce"
	WebHookBurstModeDebounce = "debounce"
)

type APIConfig struct {
	Endpoint     string        `koanf:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`
	Key          string        `koanf:"key" mapstructure:"key" yaml:"key"`
	ListID       string        `koanf:"list_id" mapstructure:"list_id" yaml:"list_id"`
	Timeout      time.Duration `koanf:"timeout" mapstructure:"timeout" yaml:"timeout"`
	DebugTimeout time.Duration `koanf:"debug_timeout" mapstructure:"debug_timeout" yaml:"debug_timeout"`
}

type WebHooksConfig struct {
	CallbackURL      string        `koanf:"callback_url" mapstructure:"callback_url" yaml:"callback_url"`
	Token            string        `koanf:"token" mapstructure:"token" yaml:"token"`
	Description      string        `koanf:"description" mapstructure:"description" yaml:"description"`
	Extended         bool          `koanf:"extended" mapstructure:"extended" yaml:"extended"`
	VerifyMembership bool          `koanf:"verify_membership" mapstructure:"verify_membership" yaml:"verify_membership"`
	BurstMode        string        `koanf:"burst_mode" mapstructure:"burst_mode" yaml:"burst_mode"`
	BurstWindow      time.Duration `koanf:"burst_window" mapstructure:"burst_window" yaml:"burst_window"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name" yaml:"service_name"`
	Debug       bool           `koanf:"debug" mapstructure:"debug" yaml:"debug"`
	API         APIConfig      `koanf:"api" mapstructure:"api" yaml:"api"`
	WebHooks    WebHooksConfig `koanf:"webhooks" mapstructure:"webhooks" yaml:"webhooks"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		API: APIConfig{
			Endpoint:     DefaultAPIEndpoint,
			Timeout:      defaultAPITimeout,
			DebugTimeout: defaultAPIDebugTimeout,
		},
		WebHooks: WebHooksConfig{
			Description: DefaultWebHookDescription,
			BurstMode:   WebHookBurstModeNone,
			BurstWindow: defaultWebHookBurstWindow,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if endpoint := strings.TrimSpace(c.API.Endpoint); endpoint != "" {
		parsed, err := url.Parse(endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: api.endpoint is invalid")
		}
	}
	if c.API.Timeout < 0 || c.API.DebugTimeout < 0 {
		return fmt.Errorf("core: api timeouts must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.WebHooks.BurstMode)) {
	case "", WebHookBurstModeNone, WebHookBurstModeCoalesce, WebHookBurstModeDebounce:
	default:
		return fmt.Errorf("core: webhooks.burst_mode %q is invalid", c.WebHooks.BurstMode)
	}
	if callback := strings.TrimSpace(c.WebHooks.CallbackURL); callback != "" {
		parsed, err := url.Parse(callback)
		if err != nil || parsed.Host == "" {
			return fmt.Errorf("core: webhooks.callback_url is invalid")
		}
	}
	return nil
}

// Connectable reports whether the configuration carries what a remote
// session needs: an api key and a default mailing list.
func (c Config) Connectable() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return fmt.Errorf("core: api.key is required")
	}
	if strings.TrimSpace(c.API.ListID) == "" {
		return fmt.Errorf("core: api.list_id is required")
	}
	return nil
}

// RequestTimeout is the fixed per-request deadline, longer in debug mode.
func (c Config) RequestTimeout() time.Duration {
	if c.Debug {
		if c.API.DebugTimeout > 0 {
			return c.API.DebugTimeout
		}
		return defaultAPIDebugTimeout
	}
	if c.API.Timeout > 0 {
		return c.API.Timeout
	}
	return defaultAPITimeout
}

// ExtendedWebHooks enables webhook updates and the extended event set.
func (c Config) ExtendedWebHooks() bool {
	return c.Debug || c.WebHooks.Extended
}

func (c Config) CallbackHost() string {
	parsed, err := url.Parse(strings.TrimSpace(c.WebHooks.CallbackURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
