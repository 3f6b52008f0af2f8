package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-brevo/core"
)

const KindFake = "fake"

// Route is one scripted answer of the FakeAdapter. Responses are replayed
// in order and the last one repeats.
type Route struct {
	Responses []core.TransportResponse
	Err       error
	calls     int
}

// FakeAdapter answers requests from routes keyed by "METHOD path", where
// path is the request URL path relative to the configured prefix. Unknown
// routes answer 404.
type FakeAdapter struct {
	mu       sync.Mutex
	prefix   string
	routes   map[string]*Route
	requests []core.TransportRequest
}

func NewFakeAdapter(prefix string) *FakeAdapter {
	return &FakeAdapter{
		prefix: strings.TrimSuffix(strings.TrimSpace(prefix), "/"),
		routes: map[string]*Route{},
	}
}

func (*FakeAdapter) Kind() string { return KindFake }

// On scripts the answers of one route.
func (a *FakeAdapter) On(method string, path string, responses ...core.TransportResponse) *FakeAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[routeKey(method, path)] = &Route{Responses: append([]core.TransportResponse(nil), responses...)}
	return a
}

// OnJSON scripts a single status and body.
func (a *FakeAdapter) OnJSON(method string, path string, status int, body string) *FakeAdapter {
	return a.On(method, path, core.TransportResponse{StatusCode: status, Body: []byte(body)})
}

func (a *FakeAdapter) Fail(method string, path string, err error) *FakeAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[routeKey(method, path)] = &Route{Err: err}
	return a
}

func (a *FakeAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("transport: fake adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, cloneRequest(req))

	route, ok := a.routes[routeKey(req.Method, a.relativePath(req.URL))]
	if !ok {
		return core.TransportResponse{StatusCode: 404, Body: []byte(`{"code":"document_not_found","message":"route not scripted"}`)}, nil
	}
	route.calls++
	if route.Err != nil {
		return core.TransportResponse{}, route.Err
	}
	if len(route.Responses) == 0 {
		return core.TransportResponse{StatusCode: 204}, nil
	}
	index := route.calls - 1
	if index >= len(route.Responses) {
		index = len(route.Responses) - 1
	}
	res := route.Responses[index]
	res.Body = append([]byte(nil), res.Body...)
	return res, nil
}

func (a *FakeAdapter) Requests() []core.TransportRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneRequest(item))
	}
	return out
}

// Calls lists the "METHOD path" keys of the recorded requests in order.
func (a *FakeAdapter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, routeKey(item.Method, a.relativePath(item.URL)))
	}
	return out
}

func (a *FakeAdapter) relativePath(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	path := parsed.Path
	if a.prefix != "" {
		if prefixURL, prefixErr := url.Parse(a.prefix); prefixErr == nil {
			path = strings.TrimPrefix(path, strings.TrimSuffix(prefixURL.Path, "/"))
		}
	}
	return strings.TrimPrefix(path, "/")
}

func routeKey(method string, path string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimPrefix(strings.TrimSpace(path), "/")
}

func cloneRequest(in core.TransportRequest) core.TransportRequest {
	out := in
	out.Body = append([]byte(nil), in.Body...)
	out.Headers = make(map[string]string, len(in.Headers))
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	out.Query = make(map[string]string, len(in.Query))
	for key, value := range in.Query {
		out.Query[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeAdapter)(nil)
