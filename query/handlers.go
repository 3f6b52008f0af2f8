package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/mapping"
)

type InformationsReader interface {
	Informations(ctx context.Context) core.Informations
}

// ObjectDescriber publishes the field catalogue of one object type.
type ObjectDescriber interface {
	ObjectType() string
	Describe(ctx context.Context) ([]core.FieldDescriptor, error)
}

type ContactReader interface {
	Describe(ctx context.Context) ([]core.FieldDescriptor, error)
	Load(ctx context.Context, id string) (*mapping.ContactState, error)
	Get(ctx context.Context, state *mapping.ContactState, fields []string) (core.ObjectData, error)
}

type ContactLister interface {
	List(ctx context.Context, params core.ListParams) (core.ListPage, error)
}

type MailingListReader interface {
	MailingLists(ctx context.Context) (map[string]string, error)
}

type InformationsQuery struct {
	reader InformationsReader
}

func NewInformationsQuery(reader InformationsReader) *InformationsQuery {
	return &InformationsQuery{reader: reader}
}

func (q *InformationsQuery) Query(ctx context.Context, _ InformationsMessage) (core.Informations, error) {
	if q == nil || q.reader == nil {
		return core.Informations{}, queryDependencyError("query: informations reader is required")
	}
	return q.reader.Informations(ctx), nil
}

type DescribeObjectQuery struct {
	describers map[string]ObjectDescriber
}

func NewDescribeObjectQuery(describers ...ObjectDescriber) *DescribeObjectQuery {
	q := &DescribeObjectQuery{describers: map[string]ObjectDescriber{}}
	for _, describer := range describers {
		if describer != nil {
			q.describers[strings.ToLower(describer.ObjectType())] = describer
		}
	}
	return q
}

func (q *DescribeObjectQuery) Query(ctx context.Context, msg DescribeObjectMessage) ([]core.FieldDescriptor, error) {
	if q == nil || len(q.describers) == 0 {
		return nil, queryDependencyError("query: object describers are required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	describer, ok := q.describers[strings.ToLower(strings.TrimSpace(msg.ObjectType))]
	if !ok {
		return nil, core.NotFoundError("query: unknown object type "+msg.ObjectType, map[string]any{"object_type": msg.ObjectType})
	}
	return describer.Describe(ctx)
}

type LoadContactQuery struct {
	reader ContactReader
}

func NewLoadContactQuery(reader ContactReader) *LoadContactQuery {
	return &LoadContactQuery{reader: reader}
}

func (q *LoadContactQuery) Query(ctx context.Context, msg LoadContactMessage) (core.ObjectData, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: contact reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	fields := msg.Fields
	if len(fields) == 0 {
		descriptors, err := q.reader.Describe(ctx)
		if err != nil {
			return nil, err
		}
		for _, descriptor := range descriptors {
			fields = append(fields, descriptor.ID)
		}
	}
	state, err := q.reader.Load(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	return q.reader.Get(ctx, state, fields)
}

type ListContactsQuery struct {
	lister ContactLister
}

func NewListContactsQuery(lister ContactLister) *ListContactsQuery {
	return &ListContactsQuery{lister: lister}
}

func (q *ListContactsQuery) Query(ctx context.Context, msg ListContactsMessage) (core.ListPage, error) {
	if q == nil || q.lister == nil {
		return core.EmptyListPage(), queryDependencyError("query: contact lister is required")
	}
	if err := msg.Validate(); err != nil {
		return core.EmptyListPage(), err
	}
	return q.lister.List(ctx, msg.Params)
}

type MailingListsQuery struct {
	reader MailingListReader
}

func NewMailingListsQuery(reader MailingListReader) *MailingListsQuery {
	return &MailingListsQuery{reader: reader}
}

func (q *MailingListsQuery) Query(ctx context.Context, _ MailingListsMessage) (map[string]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: mailing list reader is required")
	}
	return q.reader.MailingLists(ctx)
}
