package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/identity"
)

type recordingCommitter struct {
	mu      sync.Mutex
	changes []core.Change
	err     error
}

func (c *recordingCommitter) Commit(_ context.Context, change core.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change)
	return c.err
}

func (c *recordingCommitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changes)
}

func formRequest(method string, values url.Values) core.InboundRequest {
	return core.InboundRequest{
		Method:      method,
		ContentType: "application/x-www-form-urlencoded",
		Form:        values,
		Body:        []byte(values.Encode()),
	}
}

func jsonRequest(method string, body string) core.InboundRequest {
	return core.InboundRequest{Method: method, ContentType: "application/json", Body: []byte(body)}
}

func TestIngestor_ProbeIsAcknowledgedWithoutCommit(t *testing.T) {
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer)

	for name, req := range map[string]core.InboundRequest{
		"form":  formRequest(http.MethodPost, url.Values{"email": {ProbeEmail}}),
		"query": {Method: http.MethodGet, Query: url.Values{"email": {ProbeEmail}}},
		"json":  jsonRequest(http.MethodPost, `{"email":"example@example.com"}`),
	} {
		result, err := ingestor.Process(context.Background(), req)
		if err != nil {
			t.Fatalf("%s probe: %v", name, err)
		}
		if string(result.Body) != `{"success":true}` || result.StatusCode != http.StatusOK {
			t.Fatalf("%s probe: unexpected result %+v", name, result)
		}
	}
	if committer.count() != 0 {
		t.Fatalf("probe must not commit")
	}
}

func TestIngestor_RejectsNonPost(t *testing.T) {
	ingestor := NewIngestor(&recordingCommitter{})
	result, err := ingestor.Process(context.Background(), jsonRequest(http.MethodGet, `{"event":"unsubscribed","email":"a@b.com"}`))
	if !core.IsMalformedRequest(err) || result.StatusCode != http.StatusBadRequest || result.Accepted {
		t.Fatalf("expected malformed request, got %+v err=%v", result, err)
	}
}

func TestIngestor_RejectsMissingEventOrEmail(t *testing.T) {
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer)
	cases := map[string]core.InboundRequest{
		"form without event": formRequest(http.MethodPost, url.Values{"email": {"a@b.com"}}),
		"form without email": formRequest(http.MethodPost, url.Values{"event": {"unsubscribed"}}),
		"json without event": jsonRequest(http.MethodPost, `{"email":"a@b.com"}`),
		"json without email": jsonRequest(http.MethodPost, `{"event":"unsubscribed"}`),
		"json null email":    jsonRequest(http.MethodPost, `{"event":"unsubscribed","email":null}`),
		"empty body":         jsonRequest(http.MethodPost, ``),
		"invalid json":       jsonRequest(http.MethodPost, `{"event":`),
	}
	for name, req := range cases {
		if _, err := ingestor.Process(context.Background(), req); !core.IsMalformedRequest(err) {
			t.Fatalf("%s: expected malformed request, got %v", name, err)
		}
	}
	if committer.count() != 0 {
		t.Fatalf("malformed deliveries must not commit")
	}
}

func TestIngestor_CommitsSingleEmail(t *testing.T) {
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer)

	result, err := ingestor.Process(context.Background(), formRequest(http.MethodPost, url.Values{
		"event": {"unsubscribed"},
		"email": {"John@Example.com"},
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Commits != 1 || string(result.Body) != `{"success":true}` {
		t.Fatalf("unexpected result %+v", result)
	}
	change := committer.changes[0]
	want := core.Change{
		ObjectType: core.ObjectThirdParty,
		ObjectID:   identity.EncodeContactID("john@example.com"),
		Action:     core.ActionUpdate,
		Actor:      CommitActor,
		Comment:    CommitComment,
	}
	if change != want {
		t.Fatalf("unexpected change %+v", change)
	}
}

func TestIngestor_CommitsEachEmailOfAList(t *testing.T) {
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer)

	result, err := ingestor.Process(context.Background(), jsonRequest(http.MethodPost,
		`{"event":"listAddition","email":["a@example.com","b@example.com","c@example.com"]}`))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Commits != 3 || committer.count() != 3 {
		t.Fatalf("expected three commits, got result=%d recorded=%d", result.Commits, committer.count())
	}
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if committer.changes[i].ObjectID != identity.EncodeContactID(email) {
			t.Fatalf("commit %d: unexpected id %q", i, committer.changes[i].ObjectID)
		}
	}
}

func TestIngestor_EmptyEmailListStillSucceeds(t *testing.T) {
	committer := &recordingCommitter{}
	result, err := NewIngestor(committer).Process(context.Background(), jsonRequest(http.MethodPost, `{"event":"listAddition","email":[]}`))
	if err != nil || !result.Accepted || result.Commits != 0 {
		t.Fatalf("expected accepted delivery without commits, got %+v err=%v", result, err)
	}
}

func TestIngestor_CommitFailureIsLoggedNotRejected(t *testing.T) {
	committer := &recordingCommitter{err: errors.New("bus down")}
	result, err := NewIngestor(committer).Process(context.Background(), jsonRequest(http.MethodPost, `{"event":"unsubscribed","email":"a@example.com"}`))
	if err != nil || !result.Accepted {
		t.Fatalf("expected accepted delivery, got %+v err=%v", result, err)
	}
	if result.Commits != 0 || result.Metadata["failed"] != 1 {
		t.Fatalf("expected failed commit in metadata, got %+v", result)
	}
}

func TestIngestor_MembershipFilterIsOptIn(t *testing.T) {
	members := MembershipFilterFunc(func(_ context.Context, email string) (bool, error) {
		return email == "member@example.com", nil
	})
	body := `{"event":"unsubscribed","email":["member@example.com","outsider@example.com"]}`

	open := &recordingCommitter{}
	if _, err := NewIngestor(open).Process(context.Background(), jsonRequest(http.MethodPost, body)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if open.count() != 2 {
		t.Fatalf("without filter every email commits, got %d", open.count())
	}

	filtered := &recordingCommitter{}
	result, err := NewIngestor(filtered, WithMembershipFilter(members)).Process(context.Background(), jsonRequest(http.MethodPost, body))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if filtered.count() != 1 || filtered.changes[0].ObjectID != identity.EncodeContactID("member@example.com") {
		t.Fatalf("expected member only, got %+v", filtered.changes)
	}
	if result.Metadata["skipped"] != 1 {
		t.Fatalf("expected skipped count, got %+v", result.Metadata)
	}
}

func TestIngestor_BurstControllerCoalescesRepeats(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	controller := NewBurstController(BurstOptions{
		Mode:   BurstModeCoalesce,
		Window: time.Minute,
		Now:    func() time.Time { return now },
	})
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer, WithBurstController(controller))
	req := jsonRequest(http.MethodPost, `{"event":"unsubscribed","email":"a@example.com"}`)

	for range 3 {
		if _, err := ingestor.Process(context.Background(), req); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if committer.count() != 1 {
		t.Fatalf("expected repeats coalesced, got %d commits", committer.count())
	}
	now = now.Add(2 * time.Minute)
	if _, err := ingestor.Process(context.Background(), req); err != nil {
		t.Fatalf("process: %v", err)
	}
	if committer.count() != 2 {
		t.Fatalf("expected commit after the window, got %d", committer.count())
	}
}

func TestIngestor_VerifierGuardsDeliveries(t *testing.T) {
	committer := &recordingCommitter{}
	ingestor := NewIngestor(committer, WithVerifier(BearerTokenVerifier{Token: "s3cr3t"}))
	req := jsonRequest(http.MethodPost, `{"event":"unsubscribed","email":"a@example.com"}`)

	result, err := ingestor.Process(context.Background(), req)
	if err == nil || result.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %+v err=%v", result, err)
	}
	req.Headers = map[string]string{"Authorization": "Bearer s3cr3t"}
	if _, err := ingestor.Process(context.Background(), req); err != nil {
		t.Fatalf("expected verified delivery, got %v", err)
	}
	if committer.count() != 1 {
		t.Fatalf("expected one commit, got %d", committer.count())
	}
}
