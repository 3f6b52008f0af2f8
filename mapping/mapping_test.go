package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/schema"
)

func testSchema() *schema.Cache {
	cache := schema.NewCache(nil)
	cache.Seed([]core.AttributeDefinition{
		{Name: "NOM", Category: core.CategoryNormal, Type: core.AttributeText},
		{Name: "PRENOM", Category: core.CategoryNormal, Type: core.AttributeText},
		{Name: "SMS", Category: core.CategoryNormal, Type: core.AttributeText},
		{Name: "SCORE", Category: core.CategoryNormal, Type: core.AttributeFloat},
		{Name: "CIVILITE", Category: core.CategoryCategory, Type: core.AttributeCategory, Enumeration: []core.EnumChoice{
			{Value: core.NumberValue(1), Label: "Mr"},
			{Value: core.NumberValue(2), Label: "Mrs"},
		}},
		{Name: "ORDERS", Category: core.CategoryCalculated},
	})
	return cache
}

func testContact() core.Contact {
	return core.Contact{
		ID:               42,
		Email:            "john@example.com",
		EmailBlacklisted: false,
		SMSBlacklisted:   true,
		ModifiedAt:       "2024-03-05T10:20:30.000+01:00",
		Attributes: map[string]core.Value{
			"NOM":      core.TextValue("Doe"),
			"SCORE":    core.TextValue("12.5"),
			"CIVILITE": core.NumberValue(2),
		},
	}
}

func TestContactChain_DescribeEmitsEligibleAttributes(t *testing.T) {
	fields, err := NewContactChain(testSchema()).Describe(context.Background())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	byID := map[string]core.FieldDescriptor{}
	for _, field := range fields {
		byID[field.ID] = field
	}
	if len(fields) != 9 {
		t.Fatalf("expected nine fields, got %d", len(fields))
	}
	if _, ok := byID["orders"]; ok {
		t.Fatalf("calculated attribute must not be exposed")
	}
	if byID["email"].Type != core.FieldEmail || !byID["email"].Required {
		t.Fatalf("unexpected email descriptor %+v", byID["email"])
	}
	if byID["sms"].Type != core.FieldPhone || byID["sms"].MicroData.ItemProp != "telephone" {
		t.Fatalf("unexpected sms descriptor %+v", byID["sms"])
	}
	if byID["nom"].MicroData.ItemProp != "familyName" || byID["nom"].Group != core.GroupAttributes {
		t.Fatalf("unexpected nom descriptor %+v", byID["nom"])
	}
	if byID["score"].MicroData.ItemType != schemaAdditionalType || byID["score"].Type != core.FieldDouble {
		t.Fatalf("unexpected score descriptor %+v", byID["score"])
	}
	civilite := byID["civilite"]
	if civilite.Type != core.FieldChoice || len(civilite.Choices) != 2 {
		t.Fatalf("unexpected civilite descriptor %+v", civilite)
	}
	if !byID["modifiedAt"].ReadOnly || byID["modifiedAt"].Group != core.GroupMeta {
		t.Fatalf("unexpected modifiedAt descriptor %+v", byID["modifiedAt"])
	}
}

func TestContactChain_ReadFields(t *testing.T) {
	state := NewContactState(testContact())
	data, err := NewContactChain(testSchema()).ReadFields(context.Background(), state, []string{
		"email", "smsBlacklisted", "nom", "prenom", "score", "civilite", "modifiedAt", "unknown",
	})
	if err != nil {
		t.Fatalf("read fields: %v", err)
	}
	if data["email"].String() != "john@example.com" || !data["smsBlacklisted"].Truthy() {
		t.Fatalf("unexpected core values %+v", data)
	}
	if data["nom"].String() != "Doe" {
		t.Fatalf("unexpected nom %v", data["nom"])
	}
	if !data["prenom"].IsNull() {
		t.Fatalf("absent attribute must read null, got %v", data["prenom"])
	}
	if number, ok := data["score"].Number(); !ok || number != 12.5 || data["score"].Kind() != core.ValueNumber {
		t.Fatalf("expected numeric score, got %v", data["score"])
	}
	if !data["civilite"].Equal(core.NumberValue(2)) {
		t.Fatalf("category must read the raw stored value, got %v", data["civilite"])
	}
	if got := data["modifiedAt"].String(); got != "2024-03-05 10:20:30" {
		t.Fatalf("unexpected modifiedAt %q", got)
	}
	if _, ok := data["unknown"]; ok {
		t.Fatalf("unknown fields must be skipped")
	}
}

func TestContactChain_BadTimestampFailsOnlyThatField(t *testing.T) {
	contact := testContact()
	contact.ModifiedAt = "not a date"
	data, err := NewContactChain(testSchema()).ReadFields(context.Background(), NewContactState(contact), []string{"email", "modifiedAt"})
	if err == nil {
		t.Fatalf("expected modifiedAt failure")
	}
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "modifiedAt" {
		t.Fatalf("expected field scoped error, got %v", err)
	}
	if data["email"].String() != "john@example.com" {
		t.Fatalf("other fields must still be read, got %+v", data)
	}
}

func TestContactChain_EmailWriteTracksPreviousValue(t *testing.T) {
	chain := NewContactChain(testSchema())
	state := NewContactState(testContact())

	if claimed, err := chain.Write(context.Background(), state, "email", core.TextValue("JOHN@example.com")); err != nil || !claimed {
		t.Fatalf("write same email: claimed=%v err=%v", claimed, err)
	}
	if state.Dirty() || state.EmailChanged() {
		t.Fatalf("same email in another case must not be a change")
	}

	if _, err := chain.Write(context.Background(), state, "email", core.TextValue(" Jane@Example.com ")); err != nil {
		t.Fatalf("write email: %v", err)
	}
	if !state.Dirty() || !state.EmailChanged() {
		t.Fatalf("expected identity change")
	}
	if state.PreviousEmail != "john@example.com" || state.Contact.Email != "jane@example.com" {
		t.Fatalf("unexpected email tracking %+v", state)
	}

	if _, err := chain.Write(context.Background(), state, "email", core.TextValue("other@example.com")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if state.PreviousEmail != "john@example.com" {
		t.Fatalf("previous email must stay the loaded one, got %q", state.PreviousEmail)
	}

	if _, err := chain.Write(context.Background(), state, "email", core.NullValue()); !core.IsValidation(err) {
		t.Fatalf("expected validation error for empty email, got %v", err)
	}
}

func TestContactChain_BooleanWriteCoercesLoosely(t *testing.T) {
	chain := NewContactChain(testSchema())
	state := NewContactState(testContact())

	if _, err := chain.Write(context.Background(), state, "smsBlacklisted", core.TextValue("1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if state.Dirty() {
		t.Fatalf("truthy text on a true flag must not change anything")
	}
	if _, err := chain.Write(context.Background(), state, "emailBlacklisted", core.NumberValue(1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !state.Dirty() || !state.Contact.EmailBlacklisted {
		t.Fatalf("expected blacklist set, got %+v", state.Contact)
	}
}

func TestContactChain_CategoryWriteResolvesValueOrLabel(t *testing.T) {
	chain := NewContactChain(testSchema())

	byValue := NewContactState(testContact())
	if _, err := chain.Write(context.Background(), byValue, "civilite", core.TextValue("1")); err != nil {
		t.Fatalf("write by value: %v", err)
	}
	byLabel := NewContactState(testContact())
	if _, err := chain.Write(context.Background(), byLabel, "civilite", core.TextValue("mr")); err != nil {
		t.Fatalf("write by label: %v", err)
	}
	for name, state := range map[string]*ContactState{"value": byValue, "label": byLabel} {
		stored, _ := state.Contact.Attribute("CIVILITE")
		if !stored.Equal(core.NumberValue(1)) || !state.Dirty() {
			t.Fatalf("write by %s: expected stored 1, got %v", name, stored)
		}
	}

	unchanged := NewContactState(testContact())
	if _, err := chain.Write(context.Background(), unchanged, "civilite", core.TextValue("Mrs")); err != nil {
		t.Fatalf("write current label: %v", err)
	}
	if unchanged.Dirty() {
		t.Fatalf("writing the current choice label must not mark dirty")
	}

	raw := NewContactState(testContact())
	if _, err := chain.Write(context.Background(), raw, "civilite", core.TextValue("Dr")); err != nil {
		t.Fatalf("write unmatched: %v", err)
	}
	stored, _ := raw.Contact.Attribute("CIVILITE")
	if !stored.Equal(core.TextValue("Dr")) || !raw.Dirty() {
		t.Fatalf("unmatched value must be stored raw, got %v", stored)
	}
}

func TestContactChain_AttributeWriteComparesLoosely(t *testing.T) {
	chain := NewContactChain(testSchema())
	state := NewContactState(testContact())

	if _, err := chain.Write(context.Background(), state, "score", core.NumberValue(12.5)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := chain.Write(context.Background(), state, "prenom", core.NullValue()); err != nil {
		t.Fatalf("write null: %v", err)
	}
	if state.Dirty() {
		t.Fatalf("equal values must not mark dirty")
	}
	if _, err := chain.Write(context.Background(), state, "prenom", core.TextValue("John")); err != nil {
		t.Fatalf("write: %v", err)
	}
	stored, _ := state.Contact.Attribute("PRENOM")
	if stored.String() != "John" || !state.Dirty() {
		t.Fatalf("expected PRENOM set, got %v", stored)
	}
}

func TestContactChain_UnknownAndReadOnlyFields(t *testing.T) {
	chain := NewContactChain(testSchema())
	state := NewContactState(testContact())

	unclaimed, err := chain.WriteFields(context.Background(), state, core.ObjectData{
		"modifiedAt": core.TextValue("2030-01-01 00:00:00"),
		"orders":     core.NumberValue(3),
		"phantom":    core.TextValue("x"),
	})
	if err != nil {
		t.Fatalf("write fields: %v", err)
	}
	if len(unclaimed) != 2 || unclaimed[0] != "orders" || unclaimed[1] != "phantom" {
		t.Fatalf("unexpected unclaimed fields %v", unclaimed)
	}
	if state.Dirty() || state.Contact.ModifiedAt != testContact().ModifiedAt {
		t.Fatalf("read only and unknown fields must not change the contact")
	}
}

func TestWebHookChain(t *testing.T) {
	chain := NewWebHookChain()
	state := NewWebHookState(core.WebHookSubscription{ID: 3, URL: "https://a.example.com/hook", Description: "Hook"})

	data, err := chain.ReadFields(context.Background(), state, []string{"url", "description"})
	if err != nil || data["url"].String() != "https://a.example.com/hook" {
		t.Fatalf("unexpected read %+v err=%v", data, err)
	}
	if _, err := chain.Write(context.Background(), state, "description", core.TextValue("Hook")); err != nil || state.Dirty() {
		t.Fatalf("same description must not mark dirty")
	}
	if _, err := chain.Write(context.Background(), state, "url", core.TextValue("https://b.example.com/hook")); err != nil || !state.Dirty() {
		t.Fatalf("expected url change")
	}
	fields, _ := chain.Describe(context.Background())
	if len(fields) != 2 || fields[0].Type != core.FieldURL {
		t.Fatalf("unexpected webhook fields %+v", fields)
	}
}

func TestParseRemoteTime(t *testing.T) {
	for raw, want := range map[string]string{
		"2024-03-05T10:20:30Z":          "2024-03-05 10:20:30",
		"2024-03-05T10:20:30.123+02:00": "2024-03-05 10:20:30",
		"2024-03-05 10:20:30":           "2024-03-05 10:20:30",
		"2024-03-05":                    "2024-03-05 00:00:00",
	} {
		value, err := ParseRemoteTime(raw)
		if err != nil || value.String() != want {
			t.Fatalf("%q: expected %q got %q err=%v", raw, want, value.String(), err)
		}
	}
	if value, err := ParseRemoteTime(""); err != nil || !value.IsNull() {
		t.Fatalf("empty timestamp must be null")
	}
	value, err := ParseRemoteTime("yesterday")
	if !value.IsNull() || !core.HasTextCode(err, core.ErrorBadInput) {
		t.Fatalf("expected bad input error for unparseable timestamp, got %v", err)
	}
}

func TestContactChain_NonNumericFloatReadsNull(t *testing.T) {
	contact := testContact()
	contact.Attributes["SCORE"] = core.TextValue("n/a")
	data, err := NewContactChain(testSchema()).ReadFields(context.Background(), NewContactState(contact), []string{"score"})
	if err != nil {
		t.Fatalf("read score: %v", err)
	}
	if !data["score"].IsNull() {
		t.Fatalf("expected non numeric float to read null, got %v", data["score"])
	}
}
