package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/adapters/gologger"
	"github.com/goliatone/go-brevo/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const envAPIKey = "BREVO_API_KEY"

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// fileConfig is the YAML configuration of the command. The connector
// section is handed raw to cfgx.
type fileConfig struct {
	Connector map[string]any  `yaml:"connector"`
	Server    serverConfig    `yaml:"server"`
	Database  databaseConfig  `yaml:"database"`
	Logging   gologger.Config `yaml:"logging"`
}

type serverConfig struct {
	Addr            string        `yaml:"addr"`
	WebhookPath     string        `yaml:"webhook_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type databaseConfig struct {
	Driver      string        `yaml:"driver"`
	DSN         string        `yaml:"dsn"`
	Debug       bool          `yaml:"debug"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

func (c databaseConfig) GetDebug() bool { return c.Debug }

func (c databaseConfig) GetDriver() string {
	if c.Driver == driverSQLite {
		return "sqlite3"
	}
	return c.Driver
}

func (c databaseConfig) GetServer() string { return c.DSN }

func (c databaseConfig) GetPingTimeout() time.Duration { return c.PingTimeout }

func (c databaseConfig) GetOtelIdentifier() string { return "brevo-sync" }

func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseFileConfig(data)
}

func parseFileConfig(data []byte) (fileConfig, error) {
	cfg := fileConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	setDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *fileConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.WebhookPath == "" {
		cfg.Server.WebhookPath = "/webhooks/brevo"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = driverMemory
	}
	if cfg.Database.PingTimeout == 0 {
		cfg.Database.PingTimeout = 5 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Encoding == "" {
		cfg.Logging.Encoding = "json"
	}
}

func validate(cfg fileConfig) error {
	switch cfg.Database.Driver {
	case driverMemory:
	case driverPostgres, driverSQLite:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for driver %s", cfg.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", cfg.Database.Driver)
	}
	if !strings.HasPrefix(cfg.Server.WebhookPath, "/") {
		return fmt.Errorf("server.webhook_path must start with /")
	}
	return nil
}

// connectorConfig resolves the connector section over the defaults. The
// api key from the environment wins over the file.
func (c fileConfig) connectorConfig(ctx context.Context) (core.Config, error) {
	runtime := core.Config{}
	if key := strings.TrimSpace(os.Getenv(envAPIKey)); key != "" {
		runtime.API.Key = key
	}
	provider := core.NewCfgxConfigProvider(core.MapConfigLoader{Values: c.Connector})
	return core.ResolveConfig(ctx, runtime, provider, nil)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig(configFile)
	if err != nil {
		return err
	}
	connector, err := cfg.connectorConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("invalid connector configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid")
	fmt.Fprintf(out, "  Service name: %s\n", connector.ServiceName)
	fmt.Fprintf(out, "  Endpoint: %s\n", connector.API.Endpoint)
	fmt.Fprintf(out, "  Api key set: %v\n", connector.API.Key != "")
	fmt.Fprintf(out, "  Default list: %s\n", connector.API.ListID)
	fmt.Fprintf(out, "  Callback url: %s\n", connector.WebHooks.CallbackURL)
	fmt.Fprintf(out, "  Listen address: %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  Database: %s\n", cfg.Database.Driver)
	if err := connector.Connectable(); err != nil {
		fmt.Fprintf(out, "  Warning: %v\n", err)
	}
	return nil
}
