package webhooks

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
	glog "github.com/goliatone/go-logger/glog"
)

// SubscriptionManager is the subscription surface the reconciler drives.
type SubscriptionManager interface {
	Subscriptions(ctx context.Context) ([]core.WebHookSubscription, error)
	Subscribe(ctx context.Context, url string) (core.WebHookSubscription, error)
	Delete(ctx context.Context, id string) error
}

// ReconcileReport lists what Update did.
type ReconcileReport struct {
	Kept    *core.WebHookSubscription
	Created *core.WebHookSubscription
	Deleted []int64
}

// Reconciler keeps exactly one subscription on the connector callback URL.
// Subscriptions on the callback host with another URL are stale.
type Reconciler struct {
	manager     SubscriptionManager
	callbackURL string
	observer    core.Observer
}

func NewReconciler(manager SubscriptionManager, callbackURL string, logger core.Logger) *Reconciler {
	if logger == nil {
		logger = glog.Nop()
	}
	observer := core.NewObserver(logger, nil)
	observer.Prefix = "brevo.webhooks"
	return &Reconciler{
		manager:     manager,
		callbackURL: strings.TrimSpace(callbackURL),
		observer:    observer,
	}
}

// Verify reports whether the callback URL is subscribed.
func (r *Reconciler) Verify(ctx context.Context) (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	subscriptions, err := r.manager.Subscriptions(ctx)
	if err != nil {
		return false, err
	}
	host := hostOf(r.callbackURL)
	for _, subscription := range subscriptions {
		if hostOf(subscription.URL) != host {
			continue
		}
		if strings.TrimSpace(subscription.URL) == r.callbackURL {
			return true, nil
		}
	}
	return false, nil
}

// Update deletes stale subscriptions and creates the callback one when
// missing.
func (r *Reconciler) Update(ctx context.Context) (ReconcileReport, error) {
	startedAt := time.Now()
	report, err := r.update(ctx)
	fields := map[string]any{"callback_url": r.callbackURL, "deleted": len(report.Deleted), "created": report.Created != nil}
	r.observer.Observe(ctx, startedAt, "reconcile", err, fields)
	return report, err
}

func (r *Reconciler) update(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{}
	if err := r.check(); err != nil {
		return report, err
	}
	subscriptions, err := r.manager.Subscriptions(ctx)
	if err != nil {
		return report, err
	}
	host := hostOf(r.callbackURL)
	for _, subscription := range subscriptions {
		if strings.TrimSpace(subscription.URL) == r.callbackURL && report.Kept == nil {
			kept := subscription
			report.Kept = &kept
			continue
		}
		if hostOf(subscription.URL) != host {
			continue
		}
		if err := r.manager.Delete(ctx, strconv.FormatInt(subscription.ID, 10)); err != nil {
			return report, err
		}
		report.Deleted = append(report.Deleted, subscription.ID)
	}
	if report.Kept != nil {
		return report, nil
	}
	created, err := r.manager.Subscribe(ctx, r.callbackURL)
	if err != nil {
		return report, err
	}
	report.Created = &created
	return report, nil
}

func (r *Reconciler) check() error {
	if r == nil || r.manager == nil {
		return core.InternalError("webhooks: subscription manager is not configured")
	}
	if r.callbackURL == "" || hostOf(r.callbackURL) == "" {
		return core.ValidationError("webhooks.callback_url", "a callback url is required")
	}
	return nil
}

func hostOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
