package adapters_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-brevo/adapters/gocommand"
	"github.com/goliatone/go-brevo/adapters/gologger"
	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/identity"
	"github.com/goliatone/go-brevo/webhooks"
	"github.com/goliatone/go-command"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRuntimeCompatibility_WebhookCommitsReachDispatcher(t *testing.T) {
	ctx := context.Background()
	logCore, logs := observer.New(zapcore.DebugLevel)
	_, logger := gologger.Resolve("brevo", gologger.NewProvider(zap.New(logCore)), nil)

	var commits []core.Change
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := gocommand.RegisterOrchestration(adapter,
		core.ChangeCommitterFunc(func(_ context.Context, change core.Change) error {
			commits = append(commits, change)
			return nil
		}),
		core.IdentifierChangeNotifierFunc(func(context.Context, core.IDChange) error { return nil }),
	)
	if err != nil {
		t.Fatalf("register orchestration: %v", err)
	}
	defer subscriptions.Unsubscribe()

	ingestor := webhooks.NewIngestor(gocommand.NewDispatchCommitter(), webhooks.WithLogger(logger))
	result, err := ingestor.Process(ctx, core.InboundRequest{
		Method:      http.MethodPost,
		ContentType: "application/json",
		Body:        []byte(`{"event":"unsubscribed","email":"john@example.com"}`),
	})
	if err != nil {
		t.Fatalf("process delivery: %v", err)
	}
	if result.Commits != 1 || len(commits) != 1 {
		t.Fatalf("expected one dispatched commit, got result=%d received=%d", result.Commits, len(commits))
	}
	if commits[0].ObjectID != identity.EncodeContactID("john@example.com") || commits[0].Actor != webhooks.CommitActor {
		t.Fatalf("unexpected commit %+v", commits[0])
	}
	if logs.FilterMessage("delivery succeeded").Len() != 1 {
		t.Fatalf("expected delivery log line through zap, got %d entries", logs.Len())
	}
}
