package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactSensitiveMap masks credential like keys before values reach logs.
func RedactSensitiveMap(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	target := make(map[string]any, len(fields))
	for key, value := range fields {
		if isSensitiveKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactValue(value)
	}
	return target
}

// RedactHeaders masks sensitive request headers, the api-key header first
// among them.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		if isSensitiveKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return RedactSensitiveMap(typed)
	case map[string]string:
		return RedactHeaders(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	key = strings.ReplaceAll(key, "-", "_")
	for _, token := range []string{"password", "secret", "token", "authorization", "api_key", "apikey", "signature"} {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}
