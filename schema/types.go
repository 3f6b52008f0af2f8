package schema

import (
	"strings"

	"github.com/goliatone/go-brevo/core"
)

const phoneAttribute = "sms"

var fieldTypes = map[core.AttributeType]core.FieldType{
	core.AttributeText:    core.FieldVarchar,
	core.AttributeFloat:   core.FieldDouble,
	core.AttributeBoolean: core.FieldBool,
	core.AttributeDate:    core.FieldDate,
}

// FieldTypeOf maps a definition to the field type exposed to the
// orchestration layer. The SMS attribute is a phone number whatever its
// declared type.
func FieldTypeOf(definition core.AttributeDefinition) core.FieldType {
	if strings.EqualFold(strings.TrimSpace(definition.Name), phoneAttribute) {
		return core.FieldPhone
	}
	declared := definition.DeclaredType()
	if declared == core.AttributeCategory {
		return core.FieldChoice
	}
	if fieldType, ok := fieldTypes[declared]; ok {
		return fieldType
	}
	return core.FieldVarchar
}

// Choices returns the enumeration of a category definition.
func Choices(definition core.AttributeDefinition) []core.EnumChoice {
	if definition.DeclaredType() != core.AttributeCategory {
		return nil
	}
	out := make([]core.EnumChoice, len(definition.Enumeration))
	copy(out, definition.Enumeration)
	return out
}
