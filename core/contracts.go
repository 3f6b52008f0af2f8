package core

import (
	"context"
	"errors"
	"net/url"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	Metadata             map[string]any
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change is one "object changed" commit sent to the orchestration layer.
type Change struct {
	ObjectType string
	ObjectID   string
	Action     Action
	Actor      string
	Comment    string
}

// IDChange tells the orchestration layer an object now lives under a new
// identifier.
type IDChange struct {
	ObjectType string
	OldID      string
	NewID      string
}

type ChangeCommitter interface {
	Commit(ctx context.Context, change Change) error
}

type IdentifierChangeNotifier interface {
	ObjectIDChanged(ctx context.Context, change IDChange) error
}

type ChangeCommitterFunc func(ctx context.Context, change Change) error

func (f ChangeCommitterFunc) Commit(ctx context.Context, change Change) error {
	return f(ctx, change)
}

type IdentifierChangeNotifierFunc func(ctx context.Context, change IDChange) error

func (f IdentifierChangeNotifierFunc) ObjectIDChanged(ctx context.Context, change IDChange) error {
	return f(ctx, change)
}

var ErrParameterNotFound = errors.New("core: parameter not found")

// ParameterStore persists connector parameters as raw JSON documents.
type ParameterStore interface {
	GetParameter(ctx context.Context, key string) ([]byte, error)
	SetParameter(ctx context.Context, key string, value []byte) error
	DeleteParameter(ctx context.Context, key string) error
}

// InboundRequest is a transport neutral webhook delivery.
type InboundRequest struct {
	Method      string
	ContentType string
	Headers     map[string]string
	Query       url.Values
	Form        url.Values
	Body        []byte
	Metadata    map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Body       []byte
	Commits    int
	Metadata   map[string]any
}
