package webhooks

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/goliatone/go-brevo/core"
)

const maxDeliveryBytes = 1 << 20

// Handler exposes an Ingestor over net/http.
type Handler struct {
	Ingestor *Ingestor
}

func NewHandler(ingestor *Ingestor) *Handler {
	return &Handler{Ingestor: ingestor}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := InboundRequestFromHTTP(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.Ingestor.Process(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	_, _ = w.Write(result.Body)
}

// InboundRequestFromHTTP reads the delivery body once. Form encoded bodies
// are parsed into Form and kept raw in Body.
func InboundRequestFromHTTP(r *http.Request) (core.InboundRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDeliveryBytes+1))
	if err != nil {
		return core.InboundRequest{}, core.MalformedRequestError("")
	}
	if len(body) > maxDeliveryBytes {
		return core.InboundRequest{}, core.MalformedRequestError("Delivery too large")
	}
	headers := make(map[string]string, len(r.Header))
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}
	req := core.InboundRequest{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Headers:     headers,
		Query:       r.URL.Query(),
		Body:        body,
		Metadata:    map[string]any{"remote_addr": r.RemoteAddr},
	}
	if mediaType, _, _ := mime.ParseMediaType(req.ContentType); mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return core.InboundRequest{}, core.MalformedRequestError("")
		}
		req.Form = form
	}
	return req, nil
}

func writeError(w http.ResponseWriter, err error) {
	mapped := core.MapError(err)
	status := mapped.Code
	if status < 400 {
		status = http.StatusInternalServerError
	}
	body, _ := gojson.Marshal(map[string]any{
		"success": false,
		"error":   strings.TrimSpace(mapped.Message),
		"code":    mapped.TextCode,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
