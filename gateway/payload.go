package gateway

import (
	"strings"

	gojson "github.com/goccy/go-json"
)

// Payload is a decoded remote response body.
type Payload struct {
	raw      []byte
	status   int
	existing bool
}

func existingPayload(status int) Payload {
	return Payload{raw: []byte(`{"id":true}`), status: status, existing: true}
}

func NewPayload(raw []byte) Payload {
	return Payload{raw: append([]byte(nil), raw...), status: 200}
}

func (p Payload) Bytes() []byte { return append([]byte(nil), p.raw...) }

func (p Payload) Status() int { return p.status }

// Existing reports a creation answered as "already exists".
func (p Payload) Existing() bool { return p.existing }

func (p Payload) Empty() bool {
	trimmed := strings.TrimSpace(string(p.raw))
	return trimmed == "" || trimmed == "null"
}

func (p Payload) Decode(target any) error {
	if p.Empty() {
		return nil
	}
	return gojson.Unmarshal(p.raw, target)
}

// Fields decodes a top level JSON object. Non object bodies yield an empty
// map.
func (p Payload) Fields() map[string]any {
	out := map[string]any{}
	if p.Empty() {
		return out
	}
	if err := gojson.Unmarshal(p.raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// Has reports a present, non null and non empty top level property.
func (p Payload) Has(name string) bool {
	value, ok := p.Fields()[name]
	if !ok || value == nil {
		return false
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed) != ""
	case bool:
		return typed
	case float64:
		return typed != 0
	default:
		return true
	}
}

// Failure is the remote error body.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeFailure(raw []byte) Failure {
	var failure Failure
	if len(raw) == 0 {
		return failure
	}
	if err := gojson.Unmarshal(raw, &failure); err != nil {
		return Failure{Message: strings.TrimSpace(string(raw))}
	}
	return failure
}
