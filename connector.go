// Package brevo composes the Brevo contact connector: the remote gateway,
// the attribute schema cache, the contact and webhook synchronizers and the
// webhook ingestor, behind one Connector value.
package brevo

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/adapters/gocommand"
	brevocommand "github.com/goliatone/go-brevo/command"
	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/gateway"
	brevoquery "github.com/goliatone/go-brevo/query"
	"github.com/goliatone/go-brevo/schema"
	brevosync "github.com/goliatone/go-brevo/sync"
	"github.com/goliatone/go-brevo/webhooks"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	ShortDescription = "Brevo"
	LongDescription  = "Integration for Brevo's Api V3.0"
	ServerType       = "Brevo REST Api V3"
	Website          = "www.brevo.com"
)

type Commands struct {
	CommitChange      *brevocommand.CommitChangeCommand
	ObjectIDChanged   *brevocommand.ObjectIDChangedCommand
	Connect           *brevocommand.ConnectCommand
	ReconcileWebHooks *brevocommand.ReconcileWebHooksCommand
}

type Queries struct {
	Informations   *brevoquery.InformationsQuery
	DescribeObject *brevoquery.DescribeObjectQuery
	LoadContact    *brevoquery.LoadContactQuery
	ListContacts   *brevoquery.ListContactsQuery
	MailingLists   *brevoquery.MailingListsQuery
}

type Connector struct {
	config     core.Config
	logger     core.Logger
	observer   core.Observer
	store      core.ParameterStore
	gateway    *gateway.Client
	schema     *schema.Cache
	contacts   *brevosync.Contacts
	webhooks   *brevosync.WebHooks
	reconciler *webhooks.Reconciler
	committer  core.ChangeCommitter
	verifier   webhooks.Verifier
	commands   Commands
	queries    Queries
}

type Option func(*builder)

type builder struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	store          core.ParameterStore
	transport      core.TransportAdapter
	committer      core.ChangeCommitter
	notifier       core.IdentifierChangeNotifier
	dispatch       bool
	verifier       webhooks.Verifier
	configProvider core.ConfigProvider
	resolver       core.OptionsResolver
}

func WithLogger(logger core.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *builder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *builder) {
		b.metrics = recorder
	}
}

// WithParameterStore persists the lists and attributes fetched by Connect.
// Without it the connector keeps them in memory.
func WithParameterStore(store core.ParameterStore) Option {
	return func(b *builder) {
		b.store = store
	}
}

func WithTransport(adapter core.TransportAdapter) Option {
	return func(b *builder) {
		b.transport = adapter
	}
}

// WithChangeCommitter receives the commits of webhook deliveries.
func WithChangeCommitter(committer core.ChangeCommitter) Option {
	return func(b *builder) {
		b.committer = committer
	}
}

func WithIdentifierChangeNotifier(notifier core.IdentifierChangeNotifier) Option {
	return func(b *builder) {
		b.notifier = notifier
	}
}

// WithDispatchOrchestration hands commits and identifier changes left
// unset to the go-command dispatcher. The caller subscribes the matching
// commands, see gocommand.RegisterOrchestration.
func WithDispatchOrchestration() Option {
	return func(b *builder) {
		b.dispatch = true
	}
}

// WithVerifier replaces the bearer token check of webhook deliveries.
func WithVerifier(verifier webhooks.Verifier) Option {
	return func(b *builder) {
		b.verifier = verifier
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *builder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *builder) {
		b.resolver = resolver
	}
}

// New resolves cfg over the loaded configuration and wires every component.
func New(cfg core.Config, opts ...Option) (*Connector, error) {
	b := builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}

	provider, logger := glog.Resolve("brevo", b.loggerProvider, b.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if base := provider.GetLogger("brevo"); base != nil {
			logger = glog.Ensure(base)
		}
	}
	if b.metrics == nil {
		b.metrics = core.NopMetricsRecorder{}
	}
	if b.store == nil {
		b.store = core.NewMemoryParameterStore()
	}

	resolved, err := core.ResolveConfig(context.Background(), cfg, b.configProvider, b.resolver)
	if err != nil {
		return nil, core.BadInputError("brevo: resolve configuration: " + err.Error())
	}

	if b.dispatch {
		dispatch := gocommand.NewDispatchCommitter()
		if b.committer == nil {
			b.committer = dispatch
		}
		if b.notifier == nil {
			b.notifier = dispatch
		}
	}
	if b.committer == nil {
		return nil, core.ValidationError("committer", "a change committer is required, or enable dispatch orchestration")
	}
	if b.notifier == nil {
		return nil, core.ValidationError("notifier", "an identifier change notifier is required, or enable dispatch orchestration")
	}
	if b.verifier == nil {
		b.verifier = webhooks.BearerTokenVerifier{Token: resolved.WebHooks.Token}
	}

	gatewayOpts := []gateway.Option{
		gateway.WithLogger(named(provider, logger, "brevo.gateway")),
		gateway.WithMetricsRecorder(b.metrics),
	}
	if b.transport != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithTransport(b.transport))
	}
	client := gateway.New(resolved, gatewayOpts...)

	cache := schema.NewCache(
		schema.SourceFunc(client.Attributes),
		schema.WithParameterStore(b.store),
		schema.WithLogger(named(provider, logger, "brevo.schema")),
		schema.WithMetricsRecorder(b.metrics),
	)

	syncLogger := named(provider, logger, "brevo.sync")
	contacts := brevosync.NewContacts(client, cache, resolved.API.ListID,
		brevosync.WithLogger(syncLogger),
		brevosync.WithMetricsRecorder(b.metrics),
		brevosync.WithIdentifierChangeNotifier(b.notifier),
	)
	subscriptions := brevosync.NewWebHooks(client,
		brevosync.WithLogger(syncLogger),
		brevosync.WithMetricsRecorder(b.metrics),
		brevosync.WithExtendedMode(resolved.ExtendedWebHooks()),
		brevosync.WithWebHookDescription(resolved.WebHooks.Description),
		brevosync.WithWebHookToken(resolved.WebHooks.Token),
	)

	observer := core.NewObserver(logger, b.metrics)
	observer.Prefix = "brevo.connector"

	connector := &Connector{
		config:     resolved,
		logger:     logger,
		observer:   observer,
		store:      b.store,
		gateway:    client,
		schema:     cache,
		contacts:   contacts,
		webhooks:   subscriptions,
		reconciler: webhooks.NewReconciler(subscriptions, resolved.WebHooks.CallbackURL, named(provider, logger, "brevo.webhooks")),
		committer:  b.committer,
		verifier:   b.verifier,
	}
	connector.commands = Commands{
		CommitChange:      brevocommand.NewCommitChangeCommand(b.committer),
		ObjectIDChanged:   brevocommand.NewObjectIDChangedCommand(b.notifier),
		Connect:           brevocommand.NewConnectCommand(connector),
		ReconcileWebHooks: brevocommand.NewReconcileWebHooksCommand(connector.reconciler),
	}
	connector.queries = Queries{
		Informations:   brevoquery.NewInformationsQuery(connector),
		DescribeObject: brevoquery.NewDescribeObjectQuery(contacts, subscriptions),
		LoadContact:    brevoquery.NewLoadContactQuery(contacts),
		ListContacts:   brevoquery.NewListContactsQuery(contacts),
		MailingLists:   brevoquery.NewMailingListsQuery(connector),
	}
	return connector, nil
}

func named(provider core.LoggerProvider, fallback core.Logger, name string) core.Logger {
	if provider == nil {
		return fallback
	}
	if logger := provider.GetLogger(name); logger != nil {
		return logger
	}
	return fallback
}

func (c *Connector) Config() core.Config { return c.config }

func (c *Connector) Commands() Commands { return c.commands }

func (c *Connector) Queries() Queries { return c.queries }

func (c *Connector) Contacts() *brevosync.Contacts { return c.contacts }

func (c *Connector) WebHooks() *brevosync.WebHooks { return c.webhooks }

func (c *Connector) Schema() *schema.Cache { return c.schema }

func (c *Connector) Gateway() *gateway.Client { return c.gateway }

// SelfTest checks the configuration is usable for remote calls. Only the
// api key is mandatory; the default list is needed by contact writes.
func (c *Connector) SelfTest() error {
	if err := c.config.Validate(); err != nil {
		return core.BadInputError(err.Error())
	}
	if strings.TrimSpace(c.config.API.Key) == "" {
		return core.ValidationError("api.key", "api key is required")
	}
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	startedAt := time.Now()
	err := c.SelfTest()
	if err == nil {
		err = c.gateway.Ping(ctx)
	}
	c.observer.Observe(ctx, startedAt, "ping", err, nil)
	return err
}

// Connect checks the credentials, then fetches and persists the mailing
// lists and the contact attributes. The schema cache is seeded with the
// fetched attributes.
func (c *Connector) Connect(ctx context.Context) (core.ConnectReport, error) {
	startedAt := time.Now()
	report, err := c.connect(ctx)
	c.observer.Observe(ctx, startedAt, "connect", err, map[string]any{
		"lists":      len(report.Lists),
		"attributes": len(report.Attributes),
	})
	return report, err
}

func (c *Connector) connect(ctx context.Context) (core.ConnectReport, error) {
	var report core.ConnectReport
	if err := c.SelfTest(); err != nil {
		return report, err
	}
	if err := c.gateway.Connect(ctx); err != nil {
		return report, err
	}
	account, err := c.gateway.Account(ctx)
	if err != nil {
		return report, err
	}
	lists, err := c.gateway.Lists(ctx)
	if err != nil {
		return report, err
	}
	attributes, err := c.gateway.Attributes(ctx)
	if err != nil {
		return report, err
	}

	index := make(map[string]string, len(lists))
	for _, list := range lists {
		index[strconv.FormatInt(list.ID, 10)] = list.Name
	}
	if err := core.StoreParameter(ctx, c.store, core.ParameterListsIndex, index); err != nil {
		return report, err
	}
	if err := core.StoreParameter(ctx, c.store, core.ParameterListsDetails, lists); err != nil {
		return report, err
	}
	if err := core.StoreParameter(ctx, c.store, core.ParameterContactAttributes, attributes); err != nil {
		return report, err
	}
	c.schema.Seed(attributes)

	report.Account = account
	report.Lists = lists
	report.Attributes = attributes
	return report, nil
}

// MailingLists returns the list index persisted by the last Connect.
func (c *Connector) MailingLists(ctx context.Context) (map[string]string, error) {
	index, found, err := core.LoadParameter[map[string]string](ctx, c.store, core.ParameterListsIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]string{}, nil
	}
	return index, nil
}

// Informations always returns the static description. Account details are
// added when the connector is configured with a default list and the
// account answers.
func (c *Connector) Informations(ctx context.Context) core.Informations {
	info := core.Informations{
		ShortDescription: ShortDescription,
		LongDescription:  LongDescription,
		ServerType:       ServerType,
		ServerURL:        c.gateway.Endpoint(),
	}
	if c.SelfTest() != nil || strings.TrimSpace(c.config.API.ListID) == "" {
		return info
	}
	account, err := c.gateway.Account(ctx)
	if err != nil {
		c.observer.Log(ctx, "warn", "connector: account details unavailable", map[string]any{"error": err.Error()})
		return info
	}
	info.Company = account.CompanyName
	info.Address = account.Address.Street
	info.ZipCode = account.Address.ZipCode
	info.Town = account.Address.City
	info.Country = account.Address.Country
	info.Website = Website
	info.Email = account.Email
	return info
}

func (c *Connector) VerifyWebHooks(ctx context.Context) (bool, error) {
	if err := c.SelfTest(); err != nil {
		return false, err
	}
	return c.reconciler.Verify(ctx)
}

func (c *Connector) UpdateWebHooks(ctx context.Context) (webhooks.ReconcileReport, error) {
	if err := c.SelfTest(); err != nil {
		return webhooks.ReconcileReport{}, err
	}
	return c.reconciler.Update(ctx)
}

// Ingestor builds the webhook ingestor from the webhooks configuration.
func (c *Connector) Ingestor() *webhooks.Ingestor {
	opts := []webhooks.Option{
		webhooks.WithLogger(c.logger),
		webhooks.WithMetricsRecorder(c.observer.Metrics),
		webhooks.WithVerifier(c.verifier),
	}
	if mode := strings.ToLower(strings.TrimSpace(c.config.WebHooks.BurstMode)); mode != "" && mode != core.WebHookBurstModeNone {
		opts = append(opts, webhooks.WithBurstController(webhooks.NewBurstController(webhooks.BurstOptions{
			Mode:   webhooks.BurstMode(mode),
			Window: c.config.WebHooks.BurstWindow,
		})))
	}
	if c.config.WebHooks.VerifyMembership {
		if listID, err := strconv.ParseInt(strings.TrimSpace(c.config.API.ListID), 10, 64); err == nil && listID > 0 {
			opts = append(opts, webhooks.WithMembershipFilter(webhooks.NewListMembershipFilter(c.gateway, listID)))
		} else {
			c.logger.Warn("connector: membership check disabled, api.list_id is not numeric", "list_id", c.config.API.ListID)
		}
	}
	return webhooks.NewIngestor(c.committer, opts...)
}

func (c *Connector) WebhookHandler() http.Handler {
	return webhooks.NewHandler(c.Ingestor())
}

var (
	_ brevocommand.Connector         = (*Connector)(nil)
	_ brevocommand.WebHookReconciler = (*webhooks.Reconciler)(nil)
	_ brevoquery.InformationsReader  = (*Connector)(nil)
	_ brevoquery.MailingListReader   = (*Connector)(nil)
	_ brevoquery.ContactReader       = (*brevosync.Contacts)(nil)
	_ brevoquery.ObjectDescriber     = (*brevosync.WebHooks)(nil)
)
