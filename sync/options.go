// Package sync implements the object operations the orchestration layer
// invokes: contacts (ThirdParty objects) and webhook subscriptions.
//
// Every operation is request scoped and issues at most one remote call
// chain. Nothing is retried.
package sync

import (
	"context"
	"strings"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/gateway"
	glog "github.com/goliatone/go-logger/glog"
)

// Gateway is the remote API surface the synchronizers need.
type Gateway interface {
	Get(ctx context.Context, path string, query map[string]string) (gateway.Payload, error)
	Post(ctx context.Context, path string, body any) (gateway.Payload, error)
	Put(ctx context.Context, path string, body any) (bool, error)
	Delete(ctx context.Context, path string) (bool, error)
	WebHooks(ctx context.Context, kind string) ([]core.WebHookSubscription, error)
}

type settings struct {
	observer    core.Observer
	notifier    core.IdentifierChangeNotifier
	extended    bool
	description string
	token       string
}

type Option func(*settings)

func WithLogger(logger core.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.observer.Logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(s *settings) {
		if recorder != nil {
			s.observer.Metrics = recorder
		}
	}
}

// WithIdentifierChangeNotifier receives the old and new identifiers of a
// contact recreated under a new email.
func WithIdentifierChangeNotifier(notifier core.IdentifierChangeNotifier) Option {
	return func(s *settings) {
		s.notifier = notifier
	}
}

// WithExtendedMode allows webhook subscription updates.
func WithExtendedMode(extended bool) Option {
	return func(s *settings) {
		s.extended = extended
	}
}

func WithWebHookDescription(description string) Option {
	return func(s *settings) {
		if description = strings.TrimSpace(description); description != "" {
			s.description = description
		}
	}
}

// WithWebHookToken makes new subscriptions authenticate deliveries with a
// bearer token.
func WithWebHookToken(token string) Option {
	return func(s *settings) {
		s.token = strings.TrimSpace(token)
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		observer:    core.NewObserver(glog.Nop(), nil),
		description: core.DefaultWebHookDescription,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	s.observer.Prefix = "brevo.sync"
	return s
}
