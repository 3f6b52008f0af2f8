package gocommand

import (
	"context"
	"fmt"
	"strings"

	brevocommand "github.com/goliatone/go-brevo/command"
	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// DispatchCommitter forwards commits and identifier changes to whatever
// commands are subscribed on the go-command dispatcher.
type DispatchCommitter struct{}

func NewDispatchCommitter() DispatchCommitter {
	return DispatchCommitter{}
}

func (DispatchCommitter) Commit(ctx context.Context, change core.Change) error {
	msg := brevocommand.CommitChangeMessage{Change: change}
	if err := msg.Validate(); err != nil {
		return err
	}
	return Dispatch(ctx, msg)
}

func (DispatchCommitter) ObjectIDChanged(ctx context.Context, change core.IDChange) error {
	msg := brevocommand.ObjectIDChangedMessage{Change: change}
	if err := msg.Validate(); err != nil {
		return err
	}
	return Dispatch(ctx, msg)
}

// Subscriptions groups dispatcher subscriptions so they can be released
// together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterOrchestration subscribes the commands that hand commits and
// identifier changes to the orchestration layer.
func RegisterOrchestration(
	adapter *RegistryAdapter,
	committer core.ChangeCommitter,
	notifier core.IdentifierChangeNotifier,
) (Subscriptions, error) {
	var subscriptions Subscriptions
	commit, err := RegisterAndSubscribe[brevocommand.CommitChangeMessage](adapter, brevocommand.NewCommitChangeCommand(committer))
	if err != nil {
		return nil, err
	}
	subscriptions = append(subscriptions, commit)
	changed, err := RegisterAndSubscribe[brevocommand.ObjectIDChangedMessage](adapter, brevocommand.NewObjectIDChangedCommand(notifier))
	if err != nil {
		subscriptions.Unsubscribe()
		return nil, err
	}
	return append(subscriptions, changed), nil
}

var (
	_ core.ChangeCommitter          = DispatchCommitter{}
	_ core.IdentifierChangeNotifier = DispatchCommitter{}
)
