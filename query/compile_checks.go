package query

import (
	"github.com/goliatone/go-brevo/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[InformationsMessage, core.Informations]        = (*InformationsQuery)(nil)
	_ gocmd.Querier[DescribeObjectMessage, []core.FieldDescriptor] = (*DescribeObjectQuery)(nil)
	_ gocmd.Querier[LoadContactMessage, core.ObjectData]           = (*LoadContactQuery)(nil)
	_ gocmd.Querier[ListContactsMessage, core.ListPage]            = (*ListContactsQuery)(nil)
	_ gocmd.Querier[MailingListsMessage, map[string]string]        = (*MailingListsQuery)(nil)
)
