package webhooks

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
)

func TestHandler_AcceptsFormDelivery(t *testing.T) {
	committer := &recordingCommitter{}
	handler := NewHandler(NewIngestor(committer))

	body := url.Values{"event": {"unsubscribed"}, "email": {"a@example.com"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/brevo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != `{"success":true}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if committer.count() != 1 {
		t.Fatalf("expected one commit, got %d", committer.count())
	}
}

func TestHandler_AcceptsJSONDelivery(t *testing.T) {
	committer := &recordingCommitter{}
	handler := NewHandler(NewIngestor(committer))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/brevo",
		strings.NewReader(`{"event":"listAddition","email":["a@example.com","b@example.com"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if committer.count() != 2 {
		t.Fatalf("expected two commits, got %d", committer.count())
	}
}

func TestHandler_ProbeOverQuery(t *testing.T) {
	committer := &recordingCommitter{}
	handler := NewHandler(NewIngestor(committer))

	req := httptest.NewRequest(http.MethodGet, "/webhooks/brevo?email=example@example.com", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != `{"success":true}` {
		t.Fatalf("unexpected probe response %d %s", rec.Code, rec.Body.String())
	}
	if committer.count() != 0 {
		t.Fatalf("probe must not commit")
	}
}

func TestHandler_MalformedDeliveryIsBadRequest(t *testing.T) {
	handler := NewHandler(NewIngestor(&recordingCommitter{}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/brevo", strings.NewReader(`{"email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := gojson.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["success"] != false || body["code"] == "" {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestHandler_UnauthorizedWithoutToken(t *testing.T) {
	handler := NewHandler(NewIngestor(&recordingCommitter{}, WithVerifier(BearerTokenVerifier{Token: "s3cr3t"})))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/brevo", strings.NewReader(`{"event":"unsubscribed","email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestInboundRequestFromHTTP_RejectsOversizedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/brevo", strings.NewReader(strings.Repeat("a", maxDeliveryBytes+1)))
	if _, err := InboundRequestFromHTTP(req); err == nil {
		t.Fatalf("expected oversized delivery to fail")
	}
}
