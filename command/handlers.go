package command

import (
	"context"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/webhooks"
	gocmd "github.com/goliatone/go-command"
)

// Connector is the connection surface of the connector facade.
type Connector interface {
	Connect(ctx context.Context) (core.ConnectReport, error)
}

type WebHookReconciler interface {
	Verify(ctx context.Context) (bool, error)
	Update(ctx context.Context) (webhooks.ReconcileReport, error)
}

// ReconcileResult is stored by ReconcileWebHooksCommand.
type ReconcileResult struct {
	Verified bool
	Report   webhooks.ReconcileReport
}

type CommitChangeCommand struct {
	committer core.ChangeCommitter
}

func NewCommitChangeCommand(committer core.ChangeCommitter) *CommitChangeCommand {
	return &CommitChangeCommand{committer: committer}
}

func (c *CommitChangeCommand) Execute(ctx context.Context, msg CommitChangeMessage) error {
	if c == nil || c.committer == nil {
		return commandDependencyError("command: change committer is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.committer.Commit(ctx, msg.Change)
}

type ObjectIDChangedCommand struct {
	notifier core.IdentifierChangeNotifier
}

func NewObjectIDChangedCommand(notifier core.IdentifierChangeNotifier) *ObjectIDChangedCommand {
	return &ObjectIDChangedCommand{notifier: notifier}
}

func (c *ObjectIDChangedCommand) Execute(ctx context.Context, msg ObjectIDChangedMessage) error {
	if c == nil || c.notifier == nil {
		return commandDependencyError("command: identifier change notifier is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.notifier.ObjectIDChanged(ctx, msg.Change)
}

type ConnectCommand struct {
	connector Connector
}

func NewConnectCommand(connector Connector) *ConnectCommand {
	return &ConnectCommand{connector: connector}
}

func (c *ConnectCommand) Execute(ctx context.Context, _ ConnectMessage) error {
	if c == nil || c.connector == nil {
		return commandDependencyError("command: connector is required")
	}
	out, err := c.connector.Connect(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReconcileWebHooksCommand struct {
	reconciler WebHookReconciler
}

func NewReconcileWebHooksCommand(reconciler WebHookReconciler) *ReconcileWebHooksCommand {
	return &ReconcileWebHooksCommand{reconciler: reconciler}
}

func (c *ReconcileWebHooksCommand) Execute(ctx context.Context, msg ReconcileWebHooksMessage) error {
	if c == nil || c.reconciler == nil {
		return commandDependencyError("command: webhook reconciler is required")
	}
	if msg.VerifyOnly {
		verified, err := c.reconciler.Verify(ctx)
		if err != nil {
			return err
		}
		storeResult(ctx, ReconcileResult{Verified: verified})
		return nil
	}
	report, err := c.reconciler.Update(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, ReconcileResult{Verified: true, Report: report})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
