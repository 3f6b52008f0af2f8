package core

type FieldType string

const (
	FieldVarchar  FieldType = "varchar"
	FieldText     FieldType = "text"
	FieldInt      FieldType = "int"
	FieldDouble   FieldType = "double"
	FieldBool     FieldType = "bool"
	FieldDate     FieldType = "date"
	FieldDateTime FieldType = "datetime"
	FieldPhone    FieldType = "phone"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldChoice   FieldType = "choice"
)

const (
	GroupAttributes = "Attributes"
	GroupMeta       = "Meta"
)

type MicroData struct {
	ItemType string `json:"itemtype,omitempty"`
	ItemProp string `json:"itemprop,omitempty"`
}

// FieldDescriptor is one entry of the field catalogue handed to the
// orchestration layer.
type FieldDescriptor struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      FieldType    `json:"type"`
	Group     string       `json:"group,omitempty"`
	MicroData MicroData    `json:"microdata"`
	Required  bool         `json:"required,omitempty"`
	Listed    bool         `json:"listed,omitempty"`
	ReadOnly  bool         `json:"read_only,omitempty"`
	Choices   []EnumChoice `json:"choices,omitempty"`
}
