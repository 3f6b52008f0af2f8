// Package identity converts between contact emails and the opaque object
// identifiers persisted by the orchestration layer.
package identity

import (
	"encoding/base64"
	"strings"
)

// EncodeContactID lower-cases the email and encodes it as standard base64.
func EncodeContactID(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.ToLower(email)))
}

// DecodeContactID reverses EncodeContactID. Input that is not valid base64
// decodes to "", which callers treat as an unknown object.
func DecodeContactID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(id, "="))
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// SameContact reports whether two emails map to the same identifier.
func SameContact(left string, right string) bool {
	return EncodeContactID(strings.TrimSpace(left)) == EncodeContactID(strings.TrimSpace(right))
}
