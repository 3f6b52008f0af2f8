package webhooks

import (
	"context"
	"net/http"
	"slices"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/gateway"
)

// MembershipFilter decides whether a notified contact concerns the
// connector.
type MembershipFilter interface {
	Member(ctx context.Context, email string) (bool, error)
}

type MembershipFilterFunc func(ctx context.Context, email string) (bool, error)

func (f MembershipFilterFunc) Member(ctx context.Context, email string) (bool, error) {
	return f(ctx, email)
}

type ContactFetcher interface {
	Get(ctx context.Context, path string, query map[string]string) (gateway.Payload, error)
}

// ListMembershipFilter keeps contacts belonging to one mailing list.
// Unknown contacts are not members.
type ListMembershipFilter struct {
	Contacts ContactFetcher
	ListID   int64
}

func NewListMembershipFilter(contacts ContactFetcher, listID int64) ListMembershipFilter {
	return ListMembershipFilter{Contacts: contacts, ListID: listID}
}

func (f ListMembershipFilter) Member(ctx context.Context, email string) (bool, error) {
	if f.Contacts == nil || f.ListID <= 0 {
		return true, nil
	}
	payload, err := f.Contacts.Get(ctx, gateway.ContactPath(email), nil)
	if err != nil {
		if gateway.Status(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	var contact core.Contact
	if err := payload.Decode(&contact); err != nil {
		return false, core.WrapRemoteError(err, "webhooks: decode contact", map[string]any{"email": email})
	}
	return slices.Contains(contact.ListIDs, f.ListID), nil
}

var _ MembershipFilter = ListMembershipFilter{}
