package core

import (
	"slices"
	"strings"
)

const (
	ObjectThirdParty = "ThirdParty"
	ObjectWebHook    = "WebHook"
)

type AttributeType string

const (
	AttributeText     AttributeType = "text"
	AttributeFloat    AttributeType = "float"
	AttributeBoolean  AttributeType = "boolean"
	AttributeDate     AttributeType = "date"
	AttributeCategory AttributeType = "category"
)

type AttributeClass string

const (
	CategoryNormal        AttributeClass = "normal"
	CategoryCategory      AttributeClass = "category"
	CategoryCalculated    AttributeClass = "calculated"
	CategoryGlobal        AttributeClass = "global"
	CategoryTransactional AttributeClass = "transactional"
)

type EnumChoice struct {
	Value Value  `json:"value"`
	Label string `json:"label"`
}

// AttributeDefinition describes one remote custom contact attribute.
type AttributeDefinition struct {
	Name            string         `json:"name"`
	Category        AttributeClass `json:"category"`
	Type            AttributeType  `json:"type,omitempty"`
	Enumeration     []EnumChoice   `json:"enumeration,omitempty"`
	CalculatedValue string         `json:"calculatedValue,omitempty"`
}

// DeclaredType folds attributes of the category class, which the remote API
// may report without a type, into AttributeCategory.
func (d AttributeDefinition) DeclaredType() AttributeType {
	if d.Type == AttributeCategory || d.Category == CategoryCategory || len(d.Enumeration) > 0 {
		return AttributeCategory
	}
	return AttributeType(strings.ToLower(strings.TrimSpace(string(d.Type))))
}

// Eligible reports whether the attribute takes part in synchronization.
func (d AttributeDefinition) Eligible() bool {
	switch AttributeClass(strings.ToLower(strings.TrimSpace(string(d.Category)))) {
	case CategoryNormal, CategoryCategory:
		return true
	default:
		return false
	}
}

func (d AttributeDefinition) FieldID() string {
	return strings.ToLower(strings.TrimSpace(d.Name))
}

type Contact struct {
	ID               int64            `json:"id,omitempty"`
	Email            string           `json:"email"`
	EmailBlacklisted bool             `json:"emailBlacklisted"`
	SMSBlacklisted   bool             `json:"smsBlacklisted"`
	CreatedAt        string           `json:"createdAt,omitempty"`
	ModifiedAt       string           `json:"modifiedAt,omitempty"`
	ListIDs          []int64          `json:"listIds,omitempty"`
	Attributes       map[string]Value `json:"attributes,omitempty"`
}

func (c Contact) Attribute(name string) (Value, bool) {
	if c.Attributes == nil {
		return NullValue(), false
	}
	value, ok := c.Attributes[name]
	return value, ok
}

func (c *Contact) SetAttribute(name string, value Value) {
	if c.Attributes == nil {
		c.Attributes = map[string]Value{}
	}
	c.Attributes[name] = value
}

// CreateBody is the minimal creation payload: the email and the default
// list membership.
func (c Contact) CreateBody(listID int64) map[string]any {
	return map[string]any{
		"email":   c.Email,
		"listIds": []int64{listID},
	}
}

// ReplaceBody is the full creation payload used when a contact is
// recreated under a new email.
func (c Contact) ReplaceBody(listID int64) map[string]any {
	listIDs := slices.Clone(c.ListIDs)
	if listID > 0 && !slices.Contains(listIDs, listID) {
		listIDs = append(listIDs, listID)
	}
	body := map[string]any{
		"email":            c.Email,
		"emailBlacklisted": c.EmailBlacklisted,
		"smsBlacklisted":   c.SMSBlacklisted,
		"listIds":          listIDs,
	}
	if len(c.Attributes) > 0 {
		body["attributes"] = attributesBody(c.Attributes)
	}
	return body
}

// UpdateBody is the in place update payload. The email is the resource
// path and is not part of the body.
func (c Contact) UpdateBody() map[string]any {
	body := map[string]any{
		"emailBlacklisted": c.EmailBlacklisted,
		"smsBlacklisted":   c.SMSBlacklisted,
	}
	if len(c.Attributes) > 0 {
		body["attributes"] = attributesBody(c.Attributes)
	}
	return body
}

func attributesBody(attributes map[string]Value) map[string]any {
	out := make(map[string]any, len(attributes))
	for name, value := range attributes {
		out[name] = value.Raw()
	}
	return out
}

type WebHookSubscription struct {
	ID          int64    `json:"id,omitempty"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	Events      []string `json:"events,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	ModifiedAt  string   `json:"modifiedAt,omitempty"`
}

const WebHookTypeMarketing = "marketing"

var (
	defaultWebHookEvents  = []string{"unsubscribed", "listAddition"}
	extendedWebHookEvents = []string{"delivered", "click", "opened", "unsubscribed", "listAddition"}
)

// WebHookEvents returns the event set a subscription listens to.
func WebHookEvents(extended bool) []string {
	if extended {
		return slices.Clone(extendedWebHookEvents)
	}
	return slices.Clone(defaultWebHookEvents)
}

type MailingList struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	FolderID          int64  `json:"folderId,omitempty"`
	TotalBlacklisted  int    `json:"totalBlacklisted,omitempty"`
	TotalSubscribers  int    `json:"totalSubscribers,omitempty"`
	UniqueSubscribers int    `json:"uniqueSubscribers,omitempty"`
}

type AccountAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Account struct {
	Email       string         `json:"email"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	CompanyName string         `json:"companyName"`
	Address     AccountAddress `json:"address"`
}

type ListParams struct {
	Max    int
	Offset int
}

type ListMeta struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type ListPage struct {
	Meta  ListMeta     `json:"meta"`
	Items []ObjectData `json:"items,omitempty"`
}

func EmptyListPage() ListPage {
	return ListPage{Meta: ListMeta{Current: 0, Total: 0}}
}

// ConnectReport is what Connect fetched and persisted.
type ConnectReport struct {
	Account    Account               `json:"account"`
	Lists      []MailingList         `json:"lists"`
	Attributes []AttributeDefinition `json:"attributes"`
}

// Informations describes the connector and the remote account behind it.
// Account fields stay empty until the connector is configured.
type Informations struct {
	ShortDescription string `json:"shortdesc"`
	LongDescription  string `json:"longdesc"`
	ServerType       string `json:"servertype"`
	ServerURL        string `json:"serverurl"`
	Company          string `json:"company,omitempty"`
	Address          string `json:"address,omitempty"`
	ZipCode          string `json:"zip,omitempty"`
	Town             string `json:"town,omitempty"`
	Country          string `json:"country,omitempty"`
	Website          string `json:"www,omitempty"`
	Email            string `json:"email,omitempty"`
}
