package webhooks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/identity"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	CommitActor   = "Brevo API"
	CommitComment = "Contact has been Updated"
)

var successBody = []byte(`{"success":true}`)

// Ingestor validates deliveries and commits one update per notified
// contact. It keeps no state besides the optional burst controller.
type Ingestor struct {
	committer  core.ChangeCommitter
	verifier   Verifier
	burst      BurstController
	membership MembershipFilter
	observer   core.Observer
}

type Option func(*Ingestor)

func WithVerifier(verifier Verifier) Option {
	return func(i *Ingestor) {
		i.verifier = verifier
	}
}

func WithBurstController(controller BurstController) Option {
	return func(i *Ingestor) {
		i.burst = controller
	}
}

// WithMembershipFilter drops notifications for contacts the filter
// rejects. Without it every notified contact is committed.
func WithMembershipFilter(filter MembershipFilter) Option {
	return func(i *Ingestor) {
		i.membership = filter
	}
}

func WithLogger(logger core.Logger) Option {
	return func(i *Ingestor) {
		if logger != nil {
			i.observer.Logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(i *Ingestor) {
		if recorder != nil {
			i.observer.Metrics = recorder
		}
	}
}

func NewIngestor(committer core.ChangeCommitter, opts ...Option) *Ingestor {
	ingestor := &Ingestor{
		committer: committer,
		observer:  core.NewObserver(glog.Nop(), nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ingestor)
		}
	}
	ingestor.observer.Prefix = "brevo.webhooks"
	return ingestor
}

// Process handles one delivery. Malformed deliveries return a malformed
// request error with a 400 result; accepted ones answer {"success":true}
// whatever the number of commits.
func (i *Ingestor) Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	startedAt := time.Now()
	if probeEmail(req) {
		i.observer.Log(ctx, "info", "webhooks: probe received", map[string]any{"method": req.Method})
		return accepted(0, map[string]any{"probe": true}), nil
	}

	fields := map[string]any{"method": req.Method}
	if !strings.EqualFold(strings.TrimSpace(req.Method), http.MethodPost) {
		err := core.MalformedRequestError("")
		i.observer.Observe(ctx, startedAt, "delivery", err, fields)
		return rejected(http.StatusBadRequest), err
	}
	if i.verifier != nil {
		if err := i.verifier.Verify(ctx, req); err != nil {
			i.observer.Observe(ctx, startedAt, "delivery", err, fields)
			return rejected(http.StatusUnauthorized), err
		}
	}
	event, err := extractEvent(req)
	if err != nil {
		i.observer.Observe(ctx, startedAt, "delivery", err, fields)
		return rejected(http.StatusBadRequest), err
	}
	fields["event"] = event.Name
	fields["emails"] = len(event.Emails)

	metadata := map[string]any{"event": event.Name}
	commits, skipped, failed := 0, 0, 0
	for _, email := range event.Emails {
		switch i.deliver(ctx, Notification{Event: event.Name, Email: email}) {
		case outcomeCommitted:
			commits++
		case outcomeSkipped:
			skipped++
		default:
			failed++
		}
	}
	fields["commits"] = commits
	if skipped > 0 {
		metadata["skipped"] = skipped
	}
	if failed > 0 {
		metadata["failed"] = failed
		fields["failed"] = failed
	}
	i.observer.Observe(ctx, startedAt, "delivery", nil, fields)
	return accepted(commits, metadata), nil
}

type outcome int

const (
	outcomeCommitted outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (i *Ingestor) deliver(ctx context.Context, notification Notification) outcome {
	fields := map[string]any{"event": notification.Event, "email": notification.Email}
	if i.burst != nil {
		decision, err := i.burst.Allow(ctx, notification)
		if err != nil {
			i.observer.Log(ctx, "warn", "webhooks: burst control failed", withError(fields, err))
		} else if !decision.Allow {
			i.observer.Log(ctx, "debug", "webhooks: notification coalesced", fields)
			return outcomeSkipped
		}
	}
	if i.membership != nil {
		member, err := i.membership.Member(ctx, notification.Email)
		if err != nil {
			i.observer.Log(ctx, "error", "webhooks: membership check failed", withError(fields, err))
			return outcomeFailed
		}
		if !member {
			i.observer.Log(ctx, "debug", "webhooks: contact outside the default list", fields)
			return outcomeSkipped
		}
	}
	if i.committer == nil {
		i.observer.Log(ctx, "error", "webhooks: no change committer configured", fields)
		return outcomeFailed
	}
	err := i.committer.Commit(ctx, core.Change{
		ObjectType: core.ObjectThirdParty,
		ObjectID:   identity.EncodeContactID(notification.Email),
		Action:     core.ActionUpdate,
		Actor:      CommitActor,
		Comment:    CommitComment,
	})
	if err != nil {
		i.observer.Log(ctx, "error", "webhooks: commit failed", withError(fields, err))
		return outcomeFailed
	}
	return outcomeCommitted
}

func accepted(commits int, metadata map[string]any) core.InboundResult {
	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Body:       append([]byte(nil), successBody...),
		Commits:    commits,
		Metadata:   metadata,
	}
}

func rejected(status int) core.InboundResult {
	return core.InboundResult{Accepted: false, StatusCode: status}
}

func withError(fields map[string]any, err error) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		out[key] = value
	}
	out["error"] = err.Error()
	return out
}
