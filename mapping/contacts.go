package mapping

import "github.com/goliatone/go-brevo/schema"

// NewContactChain builds the contact field groups in claim order.
func NewContactChain(cache *schema.Cache) *Chain[ContactState] {
	return NewChain[ContactState](
		ContactCore{},
		NewContactAttributes(cache),
		ContactMeta{},
	)
}

func NewWebHookChain() *Chain[WebHookState] {
	return NewChain[WebHookState](WebHookCore{})
}
