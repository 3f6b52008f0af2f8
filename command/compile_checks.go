package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CommitChangeMessage]      = (*CommitChangeCommand)(nil)
	_ gocmd.Commander[ObjectIDChangedMessage]   = (*ObjectIDChangedCommand)(nil)
	_ gocmd.Commander[ConnectMessage]           = (*ConnectCommand)(nil)
	_ gocmd.Commander[ReconcileWebHooksMessage] = (*ReconcileWebHooksCommand)(nil)
)
