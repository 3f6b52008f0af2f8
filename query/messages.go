package query

import (
	"strings"

	"github.com/goliatone/go-brevo/core"
)

const (
	TypeInformations   = "brevo.query.informations"
	TypeDescribeObject = "brevo.query.object.describe"
	TypeLoadContact    = "brevo.query.contact.load"
	TypeListContacts   = "brevo.query.contacts.list"
	TypeMailingLists   = "brevo.query.lists"
)

type InformationsMessage struct{}

func (InformationsMessage) Type() string { return TypeInformations }

func (InformationsMessage) Validate() error { return nil }

type DescribeObjectMessage struct {
	ObjectType string
}

func (DescribeObjectMessage) Type() string { return TypeDescribeObject }

func (m DescribeObjectMessage) Validate() error {
	if strings.TrimSpace(m.ObjectType) == "" {
		return queryValidationError("object_type", "object type is required")
	}
	return nil
}

// LoadContactMessage reads the listed fields of one contact, every
// described field when Fields is empty.
type LoadContactMessage struct {
	ID     string
	Fields []string
}

func (LoadContactMessage) Type() string { return TypeLoadContact }

func (m LoadContactMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return queryValidationError("id", "contact id is required")
	}
	return nil
}

type ListContactsMessage struct {
	Params core.ListParams
}

func (ListContactsMessage) Type() string { return TypeListContacts }

func (m ListContactsMessage) Validate() error {
	if m.Params.Max < 0 {
		return queryValidationError("max", "max must be >= 0")
	}
	if m.Params.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}

type MailingListsMessage struct{}

func (MailingListsMessage) Type() string { return TypeMailingLists }

func (MailingListsMessage) Validate() error { return nil }
