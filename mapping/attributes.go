package mapping

import (
	"context"
	"strings"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/schema"
)

// ContactAttributes owns one field per eligible remote custom attribute.
type ContactAttributes struct {
	Schema *schema.Cache
}

func NewContactAttributes(cache *schema.Cache) ContactAttributes {
	return ContactAttributes{Schema: cache}
}

func (g ContactAttributes) Describe(ctx context.Context) ([]core.FieldDescriptor, error) {
	if g.Schema == nil {
		return nil, nil
	}
	definitions, err := g.Schema.Eligible(ctx)
	if err != nil {
		return nil, err
	}
	fields := make([]core.FieldDescriptor, 0, len(definitions))
	for _, definition := range definitions {
		fieldID := definition.FieldID()
		fields = append(fields, core.FieldDescriptor{
			ID:        fieldID,
			Name:      definition.Name,
			Type:      schema.FieldTypeOf(definition),
			Group:     core.GroupAttributes,
			MicroData: AttributeMicroData(fieldID),
			Choices:   schema.Choices(definition),
		})
	}
	return fields, nil
}

func (g ContactAttributes) Read(ctx context.Context, state *ContactState, field string) (core.Value, bool, error) {
	definition, found, err := g.find(ctx, field)
	if err != nil || !found {
		return core.NullValue(), false, err
	}
	_, stored, ok := lookupAttribute(state.Contact, definition.Name)
	if !ok || stored.IsNull() {
		return core.NullValue(), true, nil
	}
	switch definition.DeclaredType() {
	case core.AttributeCategory:
		return stored, true, nil
	case core.AttributeFloat:
		number, ok := stored.Number()
		if !ok {
			return core.NullValue(), true, nil
		}
		return core.NumberValue(number), true, nil
	default:
		return stored, true, nil
	}
}

func (g ContactAttributes) Write(ctx context.Context, state *ContactState, field string, value core.Value) (bool, error) {
	definition, found, err := g.find(ctx, field)
	if err != nil || !found {
		return false, err
	}
	if definition.DeclaredType() == core.AttributeCategory {
		value = ResolveChoice(definition.Enumeration, value)
	}
	key, stored, ok := lookupAttribute(state.Contact, definition.Name)
	if ok && sameAttributeValue(stored, value) {
		return true, nil
	}
	if !ok && value.IsNull() {
		return true, nil
	}
	state.Contact.SetAttribute(key, value)
	state.MarkDirty()
	return true, nil
}

func (g ContactAttributes) find(ctx context.Context, field string) (core.AttributeDefinition, bool, error) {
	if g.Schema == nil || field == "" {
		return core.AttributeDefinition{}, false, nil
	}
	return g.Schema.FindByFieldName(ctx, field)
}

// ResolveChoice maps an incoming value onto the enumeration: an exact value
// match first, then a case insensitive label match. Unmatched values are
// kept as they are.
func ResolveChoice(choices []core.EnumChoice, value core.Value) core.Value {
	if value.IsNull() {
		return value
	}
	for _, choice := range choices {
		if choice.Value.LooselyEqual(value) {
			return choice.Value
		}
	}
	label := strings.TrimSpace(value.String())
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice.Label), label) {
			return choice.Value
		}
	}
	return value
}

// lookupAttribute finds a stored attribute by exact name, then ignoring
// case, and returns the key to write back under.
func lookupAttribute(contact core.Contact, name string) (string, core.Value, bool) {
	if value, ok := contact.Attribute(name); ok {
		return name, value, true
	}
	for key, value := range contact.Attributes {
		if strings.EqualFold(key, name) {
			return key, value, true
		}
	}
	return name, core.NullValue(), false
}

func sameAttributeValue(stored core.Value, incoming core.Value) bool {
	if stored.IsNull() && incoming.IsNull() {
		return true
	}
	return stored.LooselyEqual(incoming)
}

var _ Group[ContactState] = ContactAttributes{}
