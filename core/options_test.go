package core

import (
	"context"
	"testing"
	"time"
)

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := ResolveConfig(context.Background(), Config{}, nil, nil)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.ServiceName != "brevo" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.API.Endpoint != DefaultAPIEndpoint {
		t.Fatalf("expected default endpoint, got %q", cfg.API.Endpoint)
	}
	if cfg.WebHooks.Description != DefaultWebHookDescription {
		t.Fatalf("expected default webhook description, got %q", cfg.WebHooks.Description)
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Fatalf("expected production timeout 3s, got %s", cfg.RequestTimeout())
	}
}

func TestResolveConfig_LayersLoadedAndRuntime(t *testing.T) {
	provider := NewCfgxConfigProvider(MapConfigLoader{Values: map[string]any{
		"service_name": "brevo-main",
		"api": map[string]any{
			"key":     "loaded-key",
			"list_id": "7",
		},
	}})

	cfg, err := ResolveConfig(context.Background(), Config{Debug: true, API: APIConfig{ListID: "9"}}, provider, GoOptionsResolver{})
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.ServiceName != "brevo-main" {
		t.Fatalf("expected loaded service name, got %q", cfg.ServiceName)
	}
	if cfg.API.Key != "loaded-key" {
		t.Fatalf("expected loaded api key, got %q", cfg.API.Key)
	}
	if cfg.API.ListID != "9" {
		t.Fatalf("expected runtime list id to win, got %q", cfg.API.ListID)
	}
	if !cfg.Debug {
		t.Fatalf("expected runtime debug flag")
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Fatalf("expected debug timeout 15s, got %s", cfg.RequestTimeout())
	}
	if !cfg.ExtendedWebHooks() {
		t.Fatalf("expected debug mode to enable extended webhooks")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebHooks.BurstMode = "storm"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid burst mode to fail validation")
	}

	cfg = DefaultConfig()
	cfg.ServiceName = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected empty service name to fail validation")
	}

	cfg = DefaultConfig()
	if err := cfg.Connectable(); err == nil {
		t.Fatalf("expected missing api key to fail connectable check")
	}
	cfg.API.Key = "k"
	cfg.API.ListID = "3"
	if err := cfg.Connectable(); err != nil {
		t.Fatalf("expected connectable config, got %v", err)
	}
}

func TestConfigCallbackHost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebHooks.CallbackURL = "https://Hooks.Example.com/webhooks/brevo"
	if got := cfg.CallbackHost(); got != "hooks.example.com" {
		t.Fatalf("expected lower-cased callback host, got %q", got)
	}
}
