package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/goliatone/go-brevo/core"
	"github.com/goliatone/go-brevo/transport"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	HeaderAPIKey           = "api-key"
	CodeDuplicateParameter = "duplicate_parameter"
)

// Client is the stateless Brevo REST gateway. Every call is a single
// attempt; failures come back as errors for the caller to map.
type Client struct {
	transport core.TransportAdapter
	endpoint  string
	apiKey    string
	timeout   time.Duration
	observer  core.Observer
}

type Option func(*Client)

func WithTransport(adapter core.TransportAdapter) Option {
	return func(c *Client) {
		if adapter != nil {
			c.transport = adapter
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.observer.Logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(c *Client) {
		if recorder != nil {
			c.observer.Metrics = recorder
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func New(cfg core.Config, opts ...Option) *Client {
	endpoint := strings.TrimSpace(cfg.API.Endpoint)
	if endpoint == "" {
		endpoint = core.DefaultAPIEndpoint
	}
	client := &Client{
		transport: transport.NewRESTAdapter(nil),
		endpoint:  strings.TrimSuffix(endpoint, "/") + "/",
		apiKey:    strings.TrimSpace(cfg.API.Key),
		timeout:   cfg.RequestTimeout(),
		observer:  core.NewObserver(glog.Nop(), nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.observer.Prefix = "brevo.gateway"
	return client
}

func (c *Client) Endpoint() string { return c.endpoint }

// Get fetches a resource and returns its decoded body.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Payload, error) {
	res, err := c.call(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return Payload{}, err
	}
	return res, nil
}

// Post creates a resource. A duplicate resource answer is a success whose
// payload reports Existing.
func (c *Client) Post(ctx context.Context, path string, body any) (Payload, error) {
	return c.call(ctx, http.MethodPost, path, nil, body, true)
}

func (c *Client) Put(ctx context.Context, path string, body any) (bool, error) {
	if _, err := c.call(ctx, http.MethodPut, path, nil, body, true); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Delete(ctx context.Context, path string) (bool, error) {
	if _, err := c.call(ctx, http.MethodDelete, path, nil, nil, true); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) call(
	ctx context.Context,
	method string,
	path string,
	query map[string]string,
	body any,
	authenticated bool,
) (Payload, error) {
	startedAt := time.Now()
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	fields := map[string]any{"method": method, "path": path}

	req := core.TransportRequest{
		Method:  method,
		URL:     c.endpoint + path,
		Headers: map[string]string{},
		Query:   query,
		Timeout: c.timeout,
	}
	if authenticated {
		req.Headers[HeaderAPIKey] = c.apiKey
	}
	if body != nil {
		raw, err := gojson.Marshal(body)
		if err != nil {
			err = core.BadInputError("gateway: encode request body: " + err.Error())
			c.observer.Observe(ctx, startedAt, strings.ToLower(method), err, fields)
			return Payload{}, err
		}
		req.Body = raw
	}

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		err = core.WrapRemoteError(err, "gateway: "+strings.ToLower(method)+" "+path+" failed", fields)
		c.observer.Observe(ctx, startedAt, strings.ToLower(method), err, fields)
		return Payload{}, err
	}
	fields["status_code"] = res.StatusCode

	if res.StatusCode >= 200 && res.StatusCode < 400 {
		c.observer.Observe(ctx, startedAt, strings.ToLower(method), nil, fields)
		return Payload{raw: res.Body, status: res.StatusCode}, nil
	}

	failure := decodeFailure(res.Body)
	if failure.Code == CodeDuplicateParameter {
		fields["remote_code"] = failure.Code
		c.observer.Observe(ctx, startedAt, strings.ToLower(method), nil, fields)
		return existingPayload(res.StatusCode), nil
	}

	fields["remote_code"] = failure.Code
	fields["remote_message"] = failure.Message
	err = core.RemoteError(remoteMessage(method, path, failure), res.StatusCode, fields)
	c.observer.Observe(ctx, startedAt, strings.ToLower(method), err, fields)
	return Payload{}, err
}

// Status extracts the HTTP status of a remote failure, zero otherwise.
func Status(err error) int {
	if !core.IsRemote(err) {
		return 0
	}
	mapped := core.MapError(err)
	if mapped == nil {
		return 0
	}
	return mapped.Code
}

// ContactPath is the resource path of a contact addressed by email.
func ContactPath(email string) string {
	return "contacts/" + url.PathEscape(strings.TrimSpace(email))
}

func remoteMessage(method string, path string, failure Failure) string {
	message := "gateway: " + strings.ToLower(method) + " " + path + " rejected"
	if failure.Code != "" {
		message += ": " + failure.Code
	}
	if failure.Message != "" {
		message += " (" + failure.Message + ")"
	}
	return message
}
