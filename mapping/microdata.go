package mapping

import "github.com/goliatone/go-brevo/core"

const (
	schemaContactPoint   = "http://schema.org/ContactPoint"
	schemaOrganization   = "http://schema.org/Organization"
	schemaPerson         = "http://schema.org/Person"
	schemaDataFeedItem   = "http://schema.org/DataFeedItem"
	schemaAdditionalType = "http://meta.schema.org/additionalType"
)

var knownAttributes = map[string]core.MicroData{
	"nom":    {ItemType: schemaPerson, ItemProp: "familyName"},
	"prenom": {ItemType: schemaPerson, ItemProp: "givenName"},
	"sms":    {ItemType: schemaPerson, ItemProp: "telephone"},
}

// AttributeMicroData tags well known attributes with their schema.org
// property and every other one as an additional type.
func AttributeMicroData(fieldID string) core.MicroData {
	if microData, ok := knownAttributes[fieldID]; ok {
		return microData
	}
	return core.MicroData{ItemType: schemaAdditionalType, ItemProp: fieldID}
}
