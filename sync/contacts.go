package sync

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/gateway"
	"github.com/goliatone/go-brevo/identity"
	"github.com/goliatone/go-brevo/mapping"
	"github.com/goliatone/go-brevo/schema"
)

// Contacts maps ThirdParty objects onto remote contacts of the default
// mailing list.
type Contacts struct {
	gateway Gateway
	chain   *mapping.Chain[mapping.ContactState]
	listID  string
	settings
}

func NewContacts(gw Gateway, cache *schema.Cache, listID string, opts ...Option) *Contacts {
	return &Contacts{
		gateway:  gw,
		chain:    mapping.NewContactChain(cache),
		listID:   strings.TrimSpace(listID),
		settings: newSettings(opts),
	}
}

func (*Contacts) ObjectType() string { return core.ObjectThirdParty }

func (c *Contacts) Describe(ctx context.Context) ([]core.FieldDescriptor, error) {
	return c.chain.Describe(ctx)
}

// Load fetches the contact behind an opaque identifier.
func (c *Contacts) Load(ctx context.Context, id string) (*mapping.ContactState, error) {
	startedAt := time.Now()
	email := identity.DecodeContactID(id)
	fields := c.fields(email)
	contact, err := c.fetch(ctx, email)
	c.observer.Observe(ctx, startedAt, "contact.load", err, fields)
	if err != nil {
		return nil, err
	}
	return mapping.NewContactState(contact), nil
}

func (c *Contacts) fetch(ctx context.Context, email string) (core.Contact, error) {
	var contact core.Contact
	if email == "" {
		return contact, core.NotFoundError("sync: unable to load contact: unknown identifier", nil)
	}
	payload, err := c.gateway.Get(ctx, gateway.ContactPath(email), nil)
	if err != nil {
		if gateway.Status(err) == http.StatusNotFound {
			return contact, core.NotFoundError("sync: unable to load contact ("+email+")", map[string]any{"email": email})
		}
		return contact, err
	}
	if !payload.Has("email") {
		return contact, core.NotFoundError("sync: unable to load contact ("+email+")", map[string]any{"email": email})
	}
	if err := payload.Decode(&contact); err != nil {
		return contact, core.WrapRemoteError(err, "sync: decode contact ("+email+")", map[string]any{"email": email})
	}
	return contact, nil
}

// Create adds a contact to the default list and returns it as stored
// remotely. Only the email is sent; other fields are written by a later
// update.
func (c *Contacts) Create(ctx context.Context, data core.ObjectData) (*mapping.ContactState, error) {
	startedAt := time.Now()
	email := strings.TrimSpace(data[mapping.FieldEmail].String())
	fields := c.fields(email)
	state, err := c.create(ctx, email)
	c.observer.Observe(ctx, startedAt, "contact.create", err, fields)
	return state, err
}

func (c *Contacts) create(ctx context.Context, email string) (*mapping.ContactState, error) {
	if email == "" {
		return nil, core.ValidationError(mapping.FieldEmail, "email is required")
	}
	listID, err := c.defaultList()
	if err != nil {
		return nil, err
	}
	payload, err := c.gateway.Post(ctx, gateway.PathContacts, core.Contact{Email: email}.CreateBody(listID))
	if err != nil {
		return nil, err
	}
	if !payload.Has("id") {
		return nil, core.RemoteError("sync: unable to create member ("+email+")", 0, map[string]any{"email": email})
	}
	contact, err := c.fetch(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	return mapping.NewContactState(contact), nil
}

// Update writes pending changes and returns the contact identifier. An
// email change deletes the old contact and recreates it under the new
// email, then reports the identifier change.
func (c *Contacts) Update(ctx context.Context, state *mapping.ContactState, needed bool) (string, error) {
	if state == nil {
		return "", core.InternalError("sync: contact state is required")
	}
	id := identity.EncodeContactID(state.Contact.Email)
	if !needed {
		return id, nil
	}
	startedAt := time.Now()
	fields := c.fields(state.Contact.Email)
	if state.EmailChanged() {
		fields["previous_email"] = state.PreviousEmail
		newID, err := c.replace(ctx, state)
		c.observer.Observe(ctx, startedAt, "contact.replace", err, fields)
		return newID, err
	}

	err := c.put(ctx, state.Contact.Email, state.Contact.UpdateBody())
	c.observer.Observe(ctx, startedAt, "contact.update", err, fields)
	if err != nil {
		return "", err
	}
	state.Commit()
	return id, nil
}

// replace runs the two phases of an identity change. A failure of the
// first phase leaves the remote contact untouched; a failure of the
// second one leaves no contact and is reported as a partial failure.
func (c *Contacts) replace(ctx context.Context, state *mapping.ContactState) (string, error) {
	previous := strings.ToLower(strings.TrimSpace(state.PreviousEmail))
	email := state.Contact.Email
	oldID := identity.EncodeContactID(previous)
	newID := identity.EncodeContactID(email)
	metadata := map[string]any{"email": email, "previous_email": previous}

	listID, err := c.defaultList()
	if err != nil {
		return "", err
	}
	if _, err := c.gateway.Delete(ctx, gateway.ContactPath(previous)); err != nil {
		if gateway.Status(err) != http.StatusNotFound {
			return "", err
		}
		c.observer.Log(ctx, "warn", "sync: previous contact already deleted", metadata)
	}

	payload, err := c.gateway.Post(ctx, gateway.PathContacts, state.Contact.ReplaceBody(listID))
	if err == nil && !payload.Has("id") {
		err = core.RemoteError("sync: unable to create member ("+email+")", 0, metadata)
	}
	if err == nil && payload.Existing() {
		err = c.put(ctx, email, state.Contact.UpdateBody())
	}
	if err != nil {
		return "", core.PartialFailureError(err, "sync: contact "+previous+" deleted but "+email+" was not created", metadata)
	}
	state.Commit()

	if c.notifier == nil {
		c.observer.Log(ctx, "warn", "sync: no identifier change notifier configured", metadata)
		return newID, nil
	}
	if err := c.notifier.ObjectIDChanged(ctx, core.IDChange{
		ObjectType: core.ObjectThirdParty,
		OldID:      oldID,
		NewID:      newID,
	}); err != nil {
		return newID, err
	}
	return newID, nil
}

func (c *Contacts) put(ctx context.Context, email string, body map[string]any) error {
	ok, err := c.gateway.Put(ctx, gateway.ContactPath(email), body)
	if err != nil {
		return err
	}
	if !ok {
		return core.RemoteError("sync: unable to update member ("+email+")", 0, map[string]any{"email": email})
	}
	return nil
}

// Delete removes a contact. An empty identifier is already deleted.
func (c *Contacts) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	startedAt := time.Now()
	email := identity.DecodeContactID(id)
	fields := c.fields(email)
	var err error
	if email == "" {
		err = core.NotFoundError("sync: unable to delete contact: unknown identifier", nil)
	} else {
		var ok bool
		ok, err = c.gateway.Delete(ctx, gateway.ContactPath(email))
		if err == nil && !ok {
			err = core.RemoteError("sync: unable to delete contact ("+email+")", 0, fields)
		}
	}
	c.observer.Observe(ctx, startedAt, "contact.delete", err, fields)
	return err
}

type contactsPage struct {
	Contacts *[]core.Contact `json:"contacts"`
	Count    int             `json:"count"`
}

// List pages through the contacts of the default list. A failed or empty
// answer is an empty page.
func (c *Contacts) List(ctx context.Context, params core.ListParams) (core.ListPage, error) {
	startedAt := time.Now()
	var query map[string]string
	if params.Max > 0 {
		query = map[string]string{
			"limit":  strconv.Itoa(params.Max),
			"offset": strconv.Itoa(max(params.Offset, 0)),
		}
	}
	fields := map[string]any{"object_type": core.ObjectThirdParty, "list_id": c.listID}
	payload, err := c.gateway.Get(ctx, gateway.ListContactsPath(c.listID), query)
	c.observer.Observe(ctx, startedAt, "contact.list", err, fields)
	if err != nil {
		return core.EmptyListPage(), nil
	}
	var page contactsPage
	if err := payload.Decode(&page); err != nil {
		c.observer.Log(ctx, "warn", "sync: undecodable contact list", map[string]any{"error": err.Error()})
		return core.EmptyListPage(), nil
	}
	if page.Contacts == nil {
		return core.EmptyListPage(), nil
	}

	contacts := *page.Contacts
	out := core.ListPage{
		Meta:  core.ListMeta{Current: len(contacts), Total: page.Count},
		Items: make([]core.ObjectData, 0, len(contacts)),
	}
	for _, contact := range contacts {
		modifiedAt, err := mapping.ParseRemoteTime(contact.ModifiedAt)
		if err != nil {
			c.observer.Log(ctx, "warn", "sync: contact modification date ignored", map[string]any{"email": contact.Email, "error": err.Error()})
		}
		out.Items = append(out.Items, core.ObjectData{
			"id":                          core.TextValue(identity.EncodeContactID(contact.Email)),
			mapping.FieldEmail:            core.TextValue(contact.Email),
			mapping.FieldEmailBlacklisted: core.BoolValue(contact.EmailBlacklisted),
			mapping.FieldSMSBlacklisted:   core.BoolValue(contact.SMSBlacklisted),
			mapping.FieldModifiedAt:       modifiedAt,
		})
	}
	return out, nil
}

// Get reads the requested fields. Fields failing to map are reported in the
// error while the others are returned.
func (c *Contacts) Get(ctx context.Context, state *mapping.ContactState, fields []string) (core.ObjectData, error) {
	data, err := c.chain.ReadFields(ctx, state, fields)
	if err != nil {
		c.observer.Log(ctx, "error", "sync: contact fields not read", map[string]any{"email": state.Contact.Email, "error": err.Error()})
	}
	return data, err
}

// Set writes fields onto the contact and reports whether an update is
// needed.
func (c *Contacts) Set(ctx context.Context, state *mapping.ContactState, data core.ObjectData) (bool, error) {
	unclaimed, err := c.chain.WriteFields(ctx, state, data)
	if len(unclaimed) > 0 {
		c.observer.Log(ctx, "debug", "sync: contact fields ignored", map[string]any{"email": state.Contact.Email, "fields": unclaimed})
	}
	if err != nil {
		return state.Dirty(), err
	}
	return state.Dirty(), nil
}

// GetByPrimary resolves the identifier of an existing contact by email. It
// returns "" when no contact matches.
func (c *Contacts) GetByPrimary(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	id := identity.EncodeContactID(email)
	if _, err := c.fetch(ctx, strings.ToLower(email)); err != nil {
		if core.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (c *Contacts) defaultList() (int64, error) {
	listID, err := strconv.ParseInt(c.listID, 10, 64)
	if err != nil || listID <= 0 {
		return 0, core.ValidationError("api.list_id", "a numeric default list is required")
	}
	return listID, nil
}

func (c *Contacts) fields(email string) map[string]any {
	return map[string]any{
		"object_type": core.ObjectThirdParty,
		"email":       email,
	}
}
