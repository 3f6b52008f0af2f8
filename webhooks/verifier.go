package webhooks

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/goliatone/go-brevo/core"
)

type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

// BearerTokenVerifier checks the bearer token the remote service sends when
// a subscription is created with token authentication.
type BearerTokenVerifier struct {
	Token string
}

func (v BearerTokenVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	expected := strings.TrimSpace(v.Token)
	if expected == "" {
		return nil
	}
	header := headerValue(req.Headers, "Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return core.UnauthorizedError("webhooks: bearer token is required")
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(expected)) != 1 {
		return core.UnauthorizedError("webhooks: bearer token mismatch")
	}
	return nil
}

func headerValue(headers map[string]string, key string) string {
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
