package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-brevo/core"
)

const (
	PathAccount    = "account"
	PathContacts   = "contacts"
	PathAttributes = "contacts/attributes"
	PathLists      = "contacts/lists"
	PathWebHooks   = "webhooks"

	listsPageSize = 50
)

// Ping checks the endpoint is reachable without credentials. Any answer
// below 500 means the service is up.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, PathAccount, nil, nil, false)
	if err == nil {
		return nil
	}
	if status := Status(err); status >= 200 && status < 500 {
		return nil
	}
	return err
}

// Connect checks the api key is accepted.
func (c *Client) Connect(ctx context.Context) error {
	payload, err := c.Get(ctx, PathAccount, nil)
	if err != nil {
		return err
	}
	if payload.Status() != http.StatusOK {
		return core.RemoteError("gateway: account answered "+strconv.Itoa(payload.Status()), payload.Status(), nil)
	}
	return nil
}

func (c *Client) Account(ctx context.Context) (core.Account, error) {
	var account core.Account
	payload, err := c.Get(ctx, PathAccount, nil)
	if err != nil {
		return account, err
	}
	if err := payload.Decode(&account); err != nil {
		return account, core.WrapRemoteError(err, "gateway: decode account", nil)
	}
	return account, nil
}

type listsResponse struct {
	Lists []core.MailingList `json:"lists"`
	Count int                `json:"count"`
}

// Lists walks every page of the account mailing lists.
func (c *Client) Lists(ctx context.Context) ([]core.MailingList, error) {
	lists := []core.MailingList{}
	for offset := 0; ; offset += listsPageSize {
		payload, err := c.Get(ctx, PathLists, map[string]string{
			"limit":  strconv.Itoa(listsPageSize),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}
		var page listsResponse
		if err := payload.Decode(&page); err != nil {
			return nil, core.WrapRemoteError(err, "gateway: decode lists", nil)
		}
		lists = append(lists, page.Lists...)
		if len(page.Lists) < listsPageSize || (page.Count > 0 && len(lists) >= page.Count) {
			return lists, nil
		}
	}
}

type attributesResponse struct {
	Attributes []core.AttributeDefinition `json:"attributes"`
}

func (c *Client) Attributes(ctx context.Context) ([]core.AttributeDefinition, error) {
	payload, err := c.Get(ctx, PathAttributes, nil)
	if err != nil {
		return nil, err
	}
	var res attributesResponse
	if err := payload.Decode(&res); err != nil {
		return nil, core.WrapRemoteError(err, "gateway: decode attributes", nil)
	}
	if res.Attributes == nil {
		return []core.AttributeDefinition{}, nil
	}
	return res.Attributes, nil
}

type webHooksResponse struct {
	WebHooks []core.WebHookSubscription `json:"webhooks"`
}

// WebHooks lists subscriptions of the given type, all types when empty.
func (c *Client) WebHooks(ctx context.Context, kind string) ([]core.WebHookSubscription, error) {
	var query map[string]string
	if kind != "" {
		query = map[string]string{"type": kind}
	}
	payload, err := c.Get(ctx, PathWebHooks, query)
	if err != nil {
		return nil, err
	}
	var res webHooksResponse
	if err := payload.Decode(&res); err != nil {
		return nil, core.WrapRemoteError(err, "gateway: decode webhooks", nil)
	}
	if res.WebHooks == nil {
		return []core.WebHookSubscription{}, nil
	}
	return res.WebHooks, nil
}

func WebHookPath(id int64) string {
	return PathWebHooks + "/" + strconv.FormatInt(id, 10)
}

func ListContactsPath(listID string) string {
	return PathLists + "/" + url.PathEscape(listID) + "/contacts"
}
