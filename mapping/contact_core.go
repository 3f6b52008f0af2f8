package mapping

import (
	"context"
	"strings"

	"github.com/goliatone/go-brevo/core"
)

const (
	FieldEmail            = "email"
	FieldEmailBlacklisted = "emailBlacklisted"
	FieldSMSBlacklisted   = "smsBlacklisted"
	FieldModifiedAt       = "modifiedAt"
)

// ContactCore owns the fixed contact fields.
type ContactCore struct{}

func (ContactCore) Describe(context.Context) ([]core.FieldDescriptor, error) {
	return []core.FieldDescriptor{
		{
			ID:        FieldEmail,
			Name:      "Email",
			Type:      core.FieldEmail,
			MicroData: core.MicroData{ItemType: schemaContactPoint, ItemProp: "email"},
			Required:  true,
			Listed:    true,
		},
		{
			ID:        FieldEmailBlacklisted,
			Name:      "Is Excluded from Emails Campaigns",
			Type:      core.FieldBool,
			MicroData: core.MicroData{ItemType: schemaOrganization, ItemProp: "excluded"},
			Listed:    true,
		},
		{
			ID:        FieldSMSBlacklisted,
			Name:      "Is Excluded from Sms Campaigns",
			Type:      core.FieldBool,
			MicroData: core.MicroData{ItemType: schemaOrganization, ItemProp: "excludedSms"},
			Listed:    true,
		},
	}, nil
}

func (ContactCore) Read(_ context.Context, state *ContactState, field string) (core.Value, bool, error) {
	switch field {
	case FieldEmail:
		return core.TextValue(state.Contact.Email), true, nil
	case FieldEmailBlacklisted:
		return core.BoolValue(state.Contact.EmailBlacklisted), true, nil
	case FieldSMSBlacklisted:
		return core.BoolValue(state.Contact.SMSBlacklisted), true, nil
	default:
		return core.NullValue(), false, nil
	}
}

func (ContactCore) Write(_ context.Context, state *ContactState, field string, value core.Value) (bool, error) {
	switch field {
	case FieldEmail:
		email := strings.ToLower(strings.TrimSpace(value.String()))
		if email == "" {
			return true, core.ValidationError(FieldEmail, "email is required")
		}
		if strings.ToLower(strings.TrimSpace(state.Contact.Email)) == email {
			return true, nil
		}
		if state.PreviousEmail == "" {
			state.PreviousEmail = state.Contact.Email
		}
		state.Contact.Email = email
		state.MarkDirty()
		return true, nil
	case FieldEmailBlacklisted:
		setFlag(state, &state.Contact.EmailBlacklisted, value.Truthy())
		return true, nil
	case FieldSMSBlacklisted:
		setFlag(state, &state.Contact.SMSBlacklisted, value.Truthy())
		return true, nil
	default:
		return false, nil
	}
}

func setFlag(state *ContactState, current *bool, flag bool) {
	if *current == flag {
		return
	}
	*current = flag
	state.MarkDirty()
}

var _ Group[ContactState] = ContactCore{}
