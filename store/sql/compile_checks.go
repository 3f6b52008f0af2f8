package sqlstore

import "github.com/goliatone/go-brevo/core"

var (
	_ core.ParameterStore = (*ParameterStore)(nil)
	_ core.ParameterStore = (*CachedParameterStore)(nil)
)
