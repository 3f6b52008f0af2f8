package sync

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/goliatone/go-brevo/core"
)

func TestWebHooks_SubscribeSendsMarketingEvents(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client)
	fake.OnJSON(http.MethodPost, "webhooks", 201, `{"id":31}`)

	state, err := hooks.Create(context.Background(), core.ObjectData{"url": core.TextValue("https://hooks.example.com/brevo")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.Subscription.ID != 31 {
		t.Fatalf("unexpected subscription %+v", state.Subscription)
	}
	body := string(fake.Requests()[0].Body)
	for _, fragment := range []string{`"type":"marketing"`, `"description":"Splash Sync WebHook"`, `"events":["unsubscribed","listAddition"]`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %s in body %s", fragment, body)
		}
	}

	if _, err := hooks.Create(context.Background(), core.ObjectData{}); !core.IsValidation(err) {
		t.Fatalf("expected validation error without url, got %v", err)
	}
}

func TestWebHooks_ExtendedSubscriptionEvents(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client, WithExtendedMode(true), WithWebHookDescription("Custom"), WithWebHookToken("s3cr3t"))
	fake.OnJSON(http.MethodPost, "webhooks", 201, `{"id":32}`)

	if _, err := hooks.Subscribe(context.Background(), "https://hooks.example.com/brevo"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	body := string(fake.Requests()[0].Body)
	if !strings.Contains(body, `"delivered","click","opened"`) || !strings.Contains(body, `"description":"Custom"`) || !strings.Contains(body, `"token":"s3cr3t"`) {
		t.Fatalf("unexpected extended body %s", body)
	}
}

func TestWebHooks_UpdateDisabledByDefault(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client)
	fake.OnJSON(http.MethodGet, "webhooks/31", 200, `{"id":31,"url":"https://hooks.example.com/brevo","description":"Hook"}`)

	state, err := hooks.Load(context.Background(), "31")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	needed, err := hooks.Set(context.Background(), state, core.ObjectData{"description": core.TextValue("Renamed")})
	if err != nil || !needed {
		t.Fatalf("set: needed=%v err=%v", needed, err)
	}
	id, err := hooks.Update(context.Background(), state, needed)
	if err != nil || id != "31" {
		t.Fatalf("expected unchanged id without error, got id=%q err=%v", id, err)
	}
	for _, call := range fake.Calls() {
		if strings.HasPrefix(call, http.MethodPut) {
			t.Fatalf("update must not reach the remote service, got %v", fake.Calls())
		}
	}
}

func TestWebHooks_UpdateInExtendedMode(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client, WithExtendedMode(true))
	fake.OnJSON(http.MethodGet, "webhooks/31", 200, `{"id":31,"url":"https://hooks.example.com/brevo","description":"Hook"}`)
	fake.On(http.MethodPut, "webhooks/31", core.TransportResponse{StatusCode: 204})

	state, _ := hooks.Load(context.Background(), "31")
	_, _ = hooks.Set(context.Background(), state, core.ObjectData{"description": core.TextValue("Renamed")})
	id, err := hooks.Update(context.Background(), state, true)
	if err != nil || id != "31" {
		t.Fatalf("update: id=%q err=%v", id, err)
	}
	calls := fake.Calls()
	if calls[len(calls)-1] != "PUT webhooks/31" {
		t.Fatalf("expected put, got %v", calls)
	}
}

func TestWebHooks_LoadDeleteAndList(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client)

	if _, err := hooks.Load(context.Background(), "abc"); !core.IsNotFound(err) {
		t.Fatalf("expected not found for invalid id, got %v", err)
	}
	if _, err := hooks.Load(context.Background(), "99"); !core.IsNotFound(err) {
		t.Fatalf("expected not found for missing webhook, got %v", err)
	}

	fake.On(http.MethodDelete, "webhooks/31", core.TransportResponse{StatusCode: 204})
	if err := hooks.Delete(context.Background(), "31"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := hooks.Delete(context.Background(), ""); err != nil {
		t.Fatalf("empty id must be already deleted, got %v", err)
	}

	fake.OnJSON(http.MethodGet, "webhooks", 200, `{"webhooks":[{"id":31,"url":"https://hooks.example.com/brevo","description":"Hook"},{"id":32,"url":"https://other.example.com","description":"Other"}]}`)
	page, err := hooks.List(context.Background())
	if err != nil || page.Meta.Current != 2 || page.Meta.Total != 2 {
		t.Fatalf("unexpected page %+v err=%v", page, err)
	}
	if page.Items[1]["id"].String() != "32" || page.Items[1]["url"].String() != "https://other.example.com" {
		t.Fatalf("unexpected item %+v", page.Items[1])
	}
	if got := fake.Requests()[len(fake.Requests())-1].Query["type"]; got != core.WebHookTypeMarketing {
		t.Fatalf("expected marketing filter, got %q", got)
	}
}

func TestWebHooks_ListFailureIsEmptyPage(t *testing.T) {
	client, fake := newTestGateway(t)
	hooks := NewWebHooks(client)
	fake.OnJSON(http.MethodGet, "webhooks", 500, `{}`)

	page, err := hooks.List(context.Background())
	if err != nil || page.Meta.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v err=%v", page, err)
	}
}
