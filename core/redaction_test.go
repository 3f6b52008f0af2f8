package core

import "testing"

func TestRedactSensitiveMap_MasksKeysAndKeepsContext(t *testing.T) {
	redacted := RedactSensitiveMap(map[string]any{
		"email":   "jane@example.com",
		"api-key": "xkeysib-secret",
		"headers": map[string]string{"api-key": "xkeysib-secret", "Content-Type": "application/json"},
		"nested":  map[string]any{"webhook_token": "t0k3n", "path": "contacts"},
		"events":  []any{map[string]any{"authorization": "Bearer t0k3n"}},
	})

	if redacted["email"] != "jane@example.com" {
		t.Fatalf("expected email to remain visible, got %#v", redacted["email"])
	}
	if redacted["api-key"] != RedactedValue {
		t.Fatalf("expected api-key to be redacted, got %#v", redacted["api-key"])
	}
	headers, ok := redacted["headers"].(map[string]string)
	if !ok || headers["api-key"] != RedactedValue || headers["Content-Type"] != "application/json" {
		t.Fatalf("unexpected redacted headers %#v", redacted["headers"])
	}
	nested, ok := redacted["nested"].(map[string]any)
	if !ok || nested["webhook_token"] != RedactedValue || nested["path"] != "contacts" {
		t.Fatalf("unexpected redacted nested map %#v", redacted["nested"])
	}
	events, ok := redacted["events"].([]any)
	if !ok || events[0].(map[string]any)["authorization"] != RedactedValue {
		t.Fatalf("unexpected redacted events %#v", redacted["events"])
	}
}

func TestRedactSensitiveMap_EmptyInput(t *testing.T) {
	if out := RedactSensitiveMap(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty map, got %#v", out)
	}
}
