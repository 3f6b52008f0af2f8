package main

import (
	"context"
	"database/sql"
	"fmt"

	brevo "github.com/goliatone/go-brevo"
	"github.com/goliatone/go-brevo/adapters/gocommand"
	"github.com/goliatone/go-brevo/adapters/gologger"
	brevoprom "github.com/goliatone/go-brevo/adapters/prometheus"
	"github.com/goliatone/go-brevo/core"
	brevomigrations "github.com/goliatone/go-brevo/migrations"
	brevoquery "github.com/goliatone/go-brevo/query"
	sqlstore "github.com/goliatone/go-brevo/store/sql"
	"github.com/goliatone/go-command"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	"go.uber.org/zap"
)

// runtime is everything a command needs, built from the file
// configuration.
type runtime struct {
	config        fileConfig
	zap           *zap.Logger
	logger        core.Logger
	metrics       *brevoprom.Recorder
	database      *persistence.Client
	connector     *brevo.Connector
	subscriptions gocommand.Subscriptions
}

func newRuntime(ctx context.Context, cfg fileConfig, opts ...brevo.Option) (*runtime, error) {
	zapLogger, err := gologger.NewZap(cfg.Logging)
	if err != nil {
		return nil, err
	}
	provider := gologger.NewProvider(zapLogger)
	_, logger := gologger.Resolve("brevo-sync", provider, nil)

	rt := &runtime{
		config:  cfg,
		zap:     zapLogger,
		logger:  logger,
		metrics: brevoprom.NewRecorder(),
	}

	connectorCfg, err := cfg.connectorConfig(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("invalid connector configuration: %w", err)
	}

	store, err := rt.parameterStore(ctx, connectorCfg.ServiceName)
	if err != nil {
		rt.Close()
		return nil, err
	}

	base := []brevo.Option{
		brevo.WithLoggerProvider(provider),
		brevo.WithMetricsRecorder(rt.metrics),
		brevo.WithParameterStore(store),
		brevo.WithDispatchOrchestration(),
	}
	connector, err := brevo.New(connectorCfg, append(base, opts...)...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.connector = connector

	if err := rt.subscribe(); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// parameterStore keeps connector parameters in memory or in the configured
// database behind the repository cache.
func (r *runtime) parameterStore(ctx context.Context, connector string) (core.ParameterStore, error) {
	if r.config.Database.Driver == driverMemory {
		r.logger.Warn("connector parameters are kept in memory", "driver", driverMemory)
		return core.NewMemoryParameterStore(), nil
	}
	client, err := openDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, err
	}
	r.database = client

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return nil, err
	}
	return factory.CachedParameterStore(connector, nil)
}

func openDatabase(ctx context.Context, cfg databaseConfig) (*persistence.Client, error) {
	var dialect schema.Dialect
	var target string
	switch cfg.Driver {
	case driverPostgres:
		dialect = pgdialect.New()
		target = brevomigrations.DialectPostgres
	case driverSQLite:
		dialect = sqlitedialect.New()
		target = brevomigrations.DialectSQLite
	default:
		return nil, fmt.Errorf("database.driver %q is not supported", cfg.Driver)
	}

	sqlDB, err := sql.Open(cfg.GetDriver(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Driver == driverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("new persistence client: %w", err)
	}

	_, err = brevomigrations.Register(ctx, target, func(_ context.Context, set brevomigrations.Set) error {
		client.RegisterSQLMigrations(set.FS)
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return client, nil
}

// subscribe registers the orchestration commands and the connector
// queries on the go-command dispatcher. Commits land in the log until an
// orchestration layer subscribes its own handlers.
func (r *runtime) subscribe() error {
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	orchestration := loggingOrchestrator{logger: r.logger}
	subscriptions, err := gocommand.RegisterOrchestration(adapter, orchestration, orchestration)
	if err != nil {
		return err
	}
	r.subscriptions = subscriptions

	queries := r.connector.Queries()
	informations, err := gocommand.RegisterAndSubscribeQuery[brevoquery.InformationsMessage, core.Informations](adapter, queries.Informations)
	if err != nil {
		return err
	}
	r.subscriptions = append(r.subscriptions, informations)
	lists, err := gocommand.RegisterAndSubscribeQuery[brevoquery.MailingListsMessage, map[string]string](adapter, queries.MailingLists)
	if err != nil {
		return err
	}
	r.subscriptions = append(r.subscriptions, lists)
	return adapter.Initialize()
}

func (r *runtime) Close() {
	if r == nil {
		return
	}
	r.subscriptions.Unsubscribe()
	r.subscriptions = nil
	if r.database != nil {
		if err := r.database.Close(); err != nil {
			r.logger.Warn("close database failed", "error", err.Error())
		}
		r.database = nil
	}
	if r.zap != nil {
		_ = r.zap.Sync()
	}
}

type loggingOrchestrator struct {
	logger core.Logger
}

func (o loggingOrchestrator) Commit(ctx context.Context, change core.Change) error {
	o.logger.WithContext(ctx).Info("object changed",
		"object_type", change.ObjectType,
		"object_id", change.ObjectID,
		"action", string(change.Action),
		"actor", change.Actor,
		"comment", change.Comment,
	)
	return nil
}

func (o loggingOrchestrator) ObjectIDChanged(ctx context.Context, change core.IDChange) error {
	o.logger.WithContext(ctx).Info("object identifier changed",
		"object_type", change.ObjectType,
		"old_id", change.OldID,
		"new_id", change.NewID,
	)
	return nil
}
