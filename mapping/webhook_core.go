package mapping

import (
	"context"
	"strings"

	"github.com/goliatone/go-brevo/core"
)

const (
	FieldURL         = "url"
	FieldDescription = "description"
)

type WebHookCore struct{}

func (WebHookCore) Describe(context.Context) ([]core.FieldDescriptor, error) {
	return []core.FieldDescriptor{
		{ID: FieldURL, Name: "Url", Type: core.FieldURL, Required: true, Listed: true},
		{ID: FieldDescription, Name: "Description", Type: core.FieldVarchar, Listed: true},
	}, nil
}

func (WebHookCore) Read(_ context.Context, state *WebHookState, field string) (core.Value, bool, error) {
	switch field {
	case FieldURL:
		return core.TextValue(state.Subscription.URL), true, nil
	case FieldDescription:
		return core.TextValue(state.Subscription.Description), true, nil
	default:
		return core.NullValue(), false, nil
	}
}

func (WebHookCore) Write(_ context.Context, state *WebHookState, field string, value core.Value) (bool, error) {
	var current *string
	switch field {
	case FieldURL:
		current = &state.Subscription.URL
	case FieldDescription:
		current = &state.Subscription.Description
	default:
		return false, nil
	}
	text := strings.TrimSpace(value.String())
	if *current != text {
		*current = text
		state.MarkDirty()
	}
	return true, nil
}

var _ Group[WebHookState] = WebHookCore{}
