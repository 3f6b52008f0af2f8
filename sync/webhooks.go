package sync

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/gateway"
	"github.com/goliatone/go-brevo/mapping"
)

// WebHooks maps WebHook objects onto remote marketing webhook
// subscriptions.
type WebHooks struct {
	gateway Gateway
	chain   *mapping.Chain[mapping.WebHookState]
	settings
}

func NewWebHooks(gw Gateway, opts ...Option) *WebHooks {
	return &WebHooks{
		gateway:  gw,
		chain:    mapping.NewWebHookChain(),
		settings: newSettings(opts),
	}
}

func (*WebHooks) ObjectType() string { return core.ObjectWebHook }

func (w *WebHooks) Describe(ctx context.Context) ([]core.FieldDescriptor, error) {
	return w.chain.Describe(ctx)
}

func (w *WebHooks) Load(ctx context.Context, id string) (*mapping.WebHookState, error) {
	startedAt := time.Now()
	fields := map[string]any{"object_type": core.ObjectWebHook, "webhook_id": id}
	subscription, err := w.load(ctx, id)
	w.observer.Observe(ctx, startedAt, "webhook.load", err, fields)
	if err != nil {
		return nil, err
	}
	return mapping.NewWebHookState(subscription), nil
}

func (w *WebHooks) load(ctx context.Context, id string) (core.WebHookSubscription, error) {
	var subscription core.WebHookSubscription
	numeric, err := parseWebHookID(id)
	if err != nil {
		return subscription, err
	}
	payload, err := w.gateway.Get(ctx, gateway.WebHookPath(numeric), nil)
	if err != nil {
		if gateway.Status(err) == http.StatusNotFound {
			return subscription, core.NotFoundError("sync: unable to load webhook ("+id+")", map[string]any{"webhook_id": id})
		}
		return subscription, err
	}
	if err := payload.Decode(&subscription); err != nil {
		return subscription, core.WrapRemoteError(err, "sync: decode webhook ("+id+")", nil)
	}
	if subscription.ID == 0 {
		return subscription, core.NotFoundError("sync: unable to load webhook ("+id+")", map[string]any{"webhook_id": id})
	}
	return subscription, nil
}

// Create subscribes the url given in the data.
func (w *WebHooks) Create(ctx context.Context, data core.ObjectData) (*mapping.WebHookState, error) {
	subscription, err := w.Subscribe(ctx, data[mapping.FieldURL].String())
	if err != nil {
		return nil, err
	}
	return mapping.NewWebHookState(subscription), nil
}

// Subscribe registers a marketing webhook for the connector events.
func (w *WebHooks) Subscribe(ctx context.Context, url string) (core.WebHookSubscription, error) {
	startedAt := time.Now()
	url = strings.TrimSpace(url)
	fields := map[string]any{"object_type": core.ObjectWebHook, "url": url}
	subscription, err := w.subscribe(ctx, url)
	w.observer.Observe(ctx, startedAt, "webhook.create", err, fields)
	return subscription, err
}

func (w *WebHooks) subscribe(ctx context.Context, url string) (core.WebHookSubscription, error) {
	if url == "" {
		return core.WebHookSubscription{}, core.ValidationError(mapping.FieldURL, "url is required")
	}
	subscription := core.WebHookSubscription{
		URL:         url,
		Description: w.description,
		Type:        core.WebHookTypeMarketing,
		Events:      core.WebHookEvents(w.extended),
	}
	body := map[string]any{
		"type":        subscription.Type,
		"description": subscription.Description,
		"url":         subscription.URL,
		"events":      subscription.Events,
	}
	if w.token != "" {
		body["auth"] = map[string]any{"type": "bearer", "token": w.token}
	}
	payload, err := w.gateway.Post(ctx, gateway.PathWebHooks, body)
	if err != nil {
		return core.WebHookSubscription{}, err
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if decodeErr := payload.Decode(&created); decodeErr != nil || created.ID == 0 {
		return core.WebHookSubscription{}, core.RemoteError("sync: unable to create webhook ("+url+")", 0, map[string]any{"url": url})
	}
	subscription.ID = created.ID
	return subscription, nil
}

// Update only writes in extended mode. Otherwise the change is dropped
// with a warning and the identifier is returned unchanged.
func (w *WebHooks) Update(ctx context.Context, state *mapping.WebHookState, needed bool) (string, error) {
	if state == nil {
		return "", core.InternalError("sync: webhook state is required")
	}
	id := strconv.FormatInt(state.Subscription.ID, 10)
	if !needed {
		return id, nil
	}
	fields := map[string]any{"object_type": core.ObjectWebHook, "webhook_id": id}
	if !w.extended {
		w.observer.Log(ctx, "warn", "WebHook Update is disabled.", fields)
		return id, nil
	}

	startedAt := time.Now()
	ok, err := w.gateway.Put(ctx, gateway.WebHookPath(state.Subscription.ID), map[string]any{
		"description": state.Subscription.Description,
		"url":         state.Subscription.URL,
		"events":      core.WebHookEvents(w.extended),
	})
	if err == nil && !ok {
		err = core.RemoteError("sync: unable to update webhook ("+id+")", 0, fields)
	}
	w.observer.Observe(ctx, startedAt, "webhook.update", err, fields)
	if err != nil {
		return "", err
	}
	state.Commit()
	return id, nil
}

func (w *WebHooks) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	startedAt := time.Now()
	fields := map[string]any{"object_type": core.ObjectWebHook, "webhook_id": id}
	numeric, err := parseWebHookID(id)
	if err == nil {
		var ok bool
		ok, err = w.gateway.Delete(ctx, gateway.WebHookPath(numeric))
		if err == nil && !ok {
			err = core.RemoteError("sync: unable to delete webhook ("+id+")", 0, fields)
		}
	}
	w.observer.Observe(ctx, startedAt, "webhook.delete", err, fields)
	return err
}

// Subscriptions lists the marketing webhooks of the account.
func (w *WebHooks) Subscriptions(ctx context.Context) ([]core.WebHookSubscription, error) {
	return w.gateway.WebHooks(ctx, core.WebHookTypeMarketing)
}

func (w *WebHooks) List(ctx context.Context) (core.ListPage, error) {
	startedAt := time.Now()
	subscriptions, err := w.Subscriptions(ctx)
	w.observer.Observe(ctx, startedAt, "webhook.list", err, map[string]any{"object_type": core.ObjectWebHook})
	if err != nil {
		return core.EmptyListPage(), nil
	}
	out := core.ListPage{
		Meta:  core.ListMeta{Current: len(subscriptions), Total: len(subscriptions)},
		Items: make([]core.ObjectData, 0, len(subscriptions)),
	}
	for _, subscription := range subscriptions {
		out.Items = append(out.Items, core.ObjectData{
			"id":                     core.TextValue(strconv.FormatInt(subscription.ID, 10)),
			mapping.FieldDescription: core.TextValue(subscription.Description),
			mapping.FieldURL:         core.TextValue(subscription.URL),
		})
	}
	return out, nil
}

func (w *WebHooks) Get(ctx context.Context, state *mapping.WebHookState, fields []string) (core.ObjectData, error) {
	return w.chain.ReadFields(ctx, state, fields)
}

func (w *WebHooks) Set(ctx context.Context, state *mapping.WebHookState, data core.ObjectData) (bool, error) {
	if _, err := w.chain.WriteFields(ctx, state, data); err != nil {
		return state.Dirty(), err
	}
	return state.Dirty(), nil
}

func parseWebHookID(id string) (int64, error) {
	numeric, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || numeric <= 0 {
		return 0, core.NotFoundError("sync: unknown webhook identifier ("+id+")", map[string]any{"webhook_id": id})
	}
	return numeric, nil
}
