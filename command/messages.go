package command

import (
	"strings"

	"github.com/goliatone/go-brevo/core"
)

const (
	TypeCommitChange      = "brevo.command.change.commit"
	TypeObjectIDChanged   = "brevo.command.object_id.changed"
	TypeConnect           = "brevo.command.connect"
	TypeReconcileWebHooks = "brevo.command.webhooks.reconcile"
)

// CommitChangeMessage carries one "object changed" commit to the
// orchestration layer.
type CommitChangeMessage struct {
	Change core.Change
}

func (CommitChangeMessage) Type() string { return TypeCommitChange }

func (m CommitChangeMessage) Validate() error {
	if strings.TrimSpace(m.Change.ObjectType) == "" {
		return commandValidationError("object_type", "object type is required")
	}
	if strings.TrimSpace(m.Change.ObjectID) == "" {
		return commandValidationError("object_id", "object id is required")
	}
	switch m.Change.Action {
	case core.ActionCreate, core.ActionUpdate, core.ActionDelete:
	default:
		return commandValidationError("action", "action must be create, update or delete")
	}
	return nil
}

type ObjectIDChangedMessage struct {
	Change core.IDChange
}

func (ObjectIDChangedMessage) Type() string { return TypeObjectIDChanged }

func (m ObjectIDChangedMessage) Validate() error {
	if strings.TrimSpace(m.Change.ObjectType) == "" {
		return commandValidationError("object_type", "object type is required")
	}
	oldID := strings.TrimSpace(m.Change.OldID)
	newID := strings.TrimSpace(m.Change.NewID)
	if oldID == "" {
		return commandValidationError("old_id", "previous object id is required")
	}
	if newID == "" {
		return commandValidationError("new_id", "new object id is required")
	}
	if oldID == newID {
		return commandValidationError("new_id", "new object id must differ from the previous one")
	}
	return nil
}

// ConnectMessage asks the connector to check its credentials and refresh
// the persisted lists and attributes.
type ConnectMessage struct{}

func (ConnectMessage) Type() string { return TypeConnect }

func (ConnectMessage) Validate() error { return nil }

// ReconcileWebHooksMessage verifies the callback subscription, and
// repairs it unless VerifyOnly is set.
type ReconcileWebHooksMessage struct {
	VerifyOnly bool
}

func (ReconcileWebHooksMessage) Type() string { return TypeReconcileWebHooks }

func (ReconcileWebHooksMessage) Validate() error { return nil }
