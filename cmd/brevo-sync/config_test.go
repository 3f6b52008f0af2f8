package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
connector:
  service_name: brevo-test
  api:
    endpoint: https://api.example.test/v3/
    key: from-file
    list_id: "7"
  webhooks:
    callback_url: https://crm.example.com/webhooks/brevo
server:
  addr: 127.0.0.1:9090
  shutdown_timeout: 3s
database:
  driver: SQLite
  dsn: file:brevo-cli?mode=memory&cache=shared
logging:
  level: debug
  encoding: console
`

func TestParseFileConfig_AppliesDefaults(t *testing.T) {
	cfg, err := parseFileConfig([]byte("connector: {}\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.WebhookPath != "/webhooks/brevo" {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Driver != driverMemory {
		t.Fatalf("expected memory driver by default, got %q", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Encoding != "json" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestParseFileConfig_ReadsSections(t *testing.T) {
	cfg, err := parseFileConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
	if cfg.Database.Driver != driverSQLite || cfg.Database.GetDriver() != "sqlite3" {
		t.Fatalf("unexpected database %+v", cfg.Database)
	}
	if cfg.Logging.Encoding != "console" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if _, ok := cfg.Connector["api"]; !ok {
		t.Fatalf("expected raw connector section, got %+v", cfg.Connector)
	}
}

func TestParseFileConfig_RejectsInvalidDatabase(t *testing.T) {
	cases := map[string]string{
		"unknown driver": "database:\n  driver: mongo\n",
		"missing dsn":    "database:\n  driver: postgres\n",
		"relative path":  "server:\n  webhook_path: hooks\n",
		"broken yaml":    "server: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseFileConfig([]byte(raw)); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestConnectorConfig_EnvironmentKeyWins(t *testing.T) {
	cfg, err := parseFileConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	t.Setenv(envAPIKey, "")
	resolved, err := cfg.connectorConfig(context.Background())
	if err != nil {
		t.Fatalf("resolve connector config: %v", err)
	}
	if resolved.API.Key != "from-file" || resolved.ServiceName != "brevo-test" || resolved.API.ListID != "7" {
		t.Fatalf("unexpected resolved config %+v", resolved)
	}

	t.Setenv(envAPIKey, "from-env")
	resolved, err = cfg.connectorConfig(context.Background())
	if err != nil {
		t.Fatalf("resolve connector config: %v", err)
	}
	if resolved.API.Key != "from-env" {
		t.Fatalf("expected environment key, got %q", resolved.API.Key)
	}
}

func TestConfigValidateCommand_PrintsSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brevo.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envAPIKey, "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "validate", "--config", path})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	for _, fragment := range []string{"Configuration is valid", "Service name: brevo-test", "Api key set: true", "Database: sqlite"} {
		if !strings.Contains(out.String(), fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out.String())
		}
	}
}
