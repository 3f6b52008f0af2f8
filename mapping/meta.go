package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
)

var remoteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	core.DateTimeLayout,
	core.DateLayout,
}

// ContactMeta owns the read only traceability fields.
type ContactMeta struct{}

func (ContactMeta) Describe(context.Context) ([]core.FieldDescriptor, error) {
	return []core.FieldDescriptor{{
		ID:        FieldModifiedAt,
		Name:      "Last modification",
		Type:      core.FieldDateTime,
		Group:     core.GroupMeta,
		MicroData: core.MicroData{ItemType: schemaDataFeedItem, ItemProp: "dateModified"},
		Listed:    true,
		ReadOnly:  true,
	}}, nil
}

func (ContactMeta) Read(_ context.Context, state *ContactState, field string) (core.Value, bool, error) {
	if field != FieldModifiedAt {
		return core.NullValue(), false, nil
	}
	value, err := ParseRemoteTime(state.Contact.ModifiedAt)
	if err != nil {
		return core.NullValue(), true, err
	}
	return value, true, nil
}

// Write claims the read only fields and ignores the data.
func (ContactMeta) Write(_ context.Context, _ *ContactState, field string, _ core.Value) (bool, error) {
	return field == FieldModifiedAt, nil
}

// ParseRemoteTime reads a remote timestamp. An empty timestamp is null.
func ParseRemoteTime(raw string) (core.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return core.NullValue(), nil
	}
	for _, layout := range remoteTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return core.DateTimeValue(parsed), nil
		}
	}
	return core.NullValue(), core.BadInputError(fmt.Sprintf("mapping: unparseable timestamp %q", raw))
}

var _ Group[ContactState] = ContactMeta{}
