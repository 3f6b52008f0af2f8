package webhooks

import (
	"net/url"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/goliatone/go-brevo/core"
)

// ProbeEmail is sent by the remote service when it checks the endpoint.
const ProbeEmail = "example@example.com"

// Event is the part of a delivery the ingestor acts on.
type Event struct {
	Name   string
	Emails []string
}

// extractEvent reads the form body when present and the JSON body
// otherwise. Both the event and the email are required.
func extractEvent(req core.InboundRequest) (Event, error) {
	if len(req.Form) > 0 {
		return eventFromForm(req.Form)
	}
	return eventFromJSON(req.Body)
}

func eventFromForm(form url.Values) (Event, error) {
	name := strings.TrimSpace(form.Get("event"))
	emails := append([]string{}, form["email"]...)
	emails = append(emails, form["email[]"]...)
	if _, ok := form["event"]; !ok || !hasKey(form, "email", "email[]") {
		return Event{}, core.MalformedRequestError("")
	}
	return Event{Name: name, Emails: cleanEmails(emails)}, nil
}

func eventFromJSON(body []byte) (Event, error) {
	var payload map[string]any
	if len(strings.TrimSpace(string(body))) == 0 {
		return Event{}, core.MalformedRequestError("")
	}
	if err := gojson.Unmarshal(body, &payload); err != nil || payload == nil {
		return Event{}, core.MalformedRequestError("")
	}
	rawEvent, hasEvent := payload["event"]
	rawEmail, hasEmail := payload["email"]
	if !hasEvent || rawEvent == nil || !hasEmail || rawEmail == nil {
		return Event{}, core.MalformedRequestError("")
	}
	event := Event{Name: strings.TrimSpace(core.ValueOf(rawEvent).String())}
	switch typed := rawEmail.(type) {
	case []any:
		for _, item := range typed {
			event.Emails = append(event.Emails, core.ValueOf(item).String())
		}
	default:
		event.Emails = []string{core.ValueOf(typed).String()}
	}
	event.Emails = cleanEmails(event.Emails)
	return event, nil
}

// probeEmail looks for the probe address in the form, the query and the
// JSON body, in that order.
func probeEmail(req core.InboundRequest) bool {
	for _, values := range []url.Values{req.Form, req.Query} {
		if strings.EqualFold(strings.TrimSpace(values.Get("email")), ProbeEmail) {
			return true
		}
	}
	if len(req.Body) == 0 || len(req.Form) > 0 {
		return false
	}
	var payload struct {
		Email any `json:"email"`
	}
	if err := gojson.Unmarshal(req.Body, &payload); err != nil {
		return false
	}
	email, ok := payload.Email.(string)
	return ok && strings.EqualFold(strings.TrimSpace(email), ProbeEmail)
}

func cleanEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		if email = strings.TrimSpace(email); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func hasKey(values url.Values, keys ...string) bool {
	for _, key := range keys {
		if _, ok := values[key]; ok {
			return true
		}
	}
	return false
}
