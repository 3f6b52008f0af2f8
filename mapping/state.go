package mapping

import (
	"strings"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/identity"
)

// ContactState is a contact being edited. It tracks whether a remote write
// is needed and the email the contact was loaded under.
type ContactState struct {
	Contact       core.Contact
	PreviousEmail string
	dirty         bool
}

func NewContactState(contact core.Contact) *ContactState {
	return &ContactState{Contact: contact}
}

func (s *ContactState) MarkDirty() { s.dirty = true }

func (s *ContactState) Dirty() bool { return s != nil && s.dirty }

// EmailChanged reports an identity change: the email differs from the one
// the contact was loaded under.
func (s *ContactState) EmailChanged() bool {
	if s == nil || strings.TrimSpace(s.PreviousEmail) == "" {
		return false
	}
	return !identity.SameContact(s.PreviousEmail, s.Contact.Email)
}

// Commit clears the change tracking once the remote write went through.
func (s *ContactState) Commit() {
	s.PreviousEmail = ""
	s.dirty = false
}

type WebHookState struct {
	Subscription core.WebHookSubscription
	dirty        bool
}

func NewWebHookState(subscription core.WebHookSubscription) *WebHookState {
	return &WebHookState{Subscription: subscription}
}

func (s *WebHookState) MarkDirty() { s.dirty = true }

func (s *WebHookState) Dirty() bool { return s != nil && s.dirty }

func (s *WebHookState) Commit() { s.dirty = false }
