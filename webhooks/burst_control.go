package webhooks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-brevo/core"
)

type BurstMode string

const (
	BurstModeNone     BurstMode = core.WebHookBurstModeNone
	BurstModeCoalesce BurstMode = core.WebHookBurstModeCoalesce
	BurstModeDebounce BurstMode = core.WebHookBurstModeDebounce
)

// Notification is one email of one delivery.
type Notification struct {
	Event string
	Email string
}

type BurstDecision struct {
	Allow    bool
	Metadata map[string]any
}

// BurstController drops repeated notifications arriving within a window.
type BurstController interface {
	Allow(ctx context.Context, notification Notification) (BurstDecision, error)
}

type BurstKeyExtractor func(notification Notification) (string, bool)

type BurstOptions struct {
	Mode       BurstMode
	Window     time.Duration
	MaxEntries int
	ExtractKey BurstKeyExtractor
	Now        func() time.Time
}

type DefaultBurstController struct {
	mode       BurstMode
	window     time.Duration
	maxEntries int
	extractKey BurstKeyExtractor
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

func NewBurstController(opts BurstOptions) *DefaultBurstController {
	window := opts.Window
	if window <= 0 {
		window = 2 * time.Second
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	extractKey := opts.ExtractKey
	if extractKey == nil {
		extractKey = DefaultBurstKeyExtractor
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DefaultBurstController{
		mode:       normalizeBurstMode(opts.Mode),
		window:     window,
		maxEntries: maxEntries,
		extractKey: extractKey,
		now:        now,
		entries:    map[string]time.Time{},
	}
}

// Allow lets the first notification of a key through. Coalesce drops the
// repeats seen within the window of the first one; debounce drops the
// repeats seen within the window of the previous one.
func (c *DefaultBurstController) Allow(_ context.Context, notification Notification) (BurstDecision, error) {
	if c == nil || c.mode == BurstModeNone {
		return BurstDecision{Allow: true}, nil
	}
	key, ok := c.extractKey(notification)
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return BurstDecision{Allow: true}, nil
	}

	now := c.now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()

	lastSeen, exists := c.entries[key]
	if !exists || now.Sub(lastSeen) >= c.window {
		c.entries[key] = now
		c.cleanup(now)
		return BurstDecision{Allow: true}, nil
	}

	metadata := map[string]any{
		"burst_mode":      string(c.mode),
		"burst_key":       key,
		"burst_window_ms": c.window.Milliseconds(),
	}
	switch c.mode {
	case BurstModeCoalesce:
		metadata["coalesced"] = true
	case BurstModeDebounce:
		c.entries[key] = now
		metadata["debounced"] = true
	}
	return BurstDecision{Allow: false, Metadata: metadata}, nil
}

func (c *DefaultBurstController) cleanup(now time.Time) {
	if len(c.entries) <= c.maxEntries {
		for key, seenAt := range c.entries {
			if now.Sub(seenAt) > c.window*4 {
				delete(c.entries, key)
			}
		}
		return
	}
	for key, seenAt := range c.entries {
		if now.Sub(seenAt) > c.window {
			delete(c.entries, key)
		}
		if len(c.entries) <= c.maxEntries {
			break
		}
	}
}

// DefaultBurstKeyExtractor keys notifications by event and lower-cased
// email.
func DefaultBurstKeyExtractor(notification Notification) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(notification.Email))
	if email == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(notification.Event)) + ":" + email, true
}

func normalizeBurstMode(mode BurstMode) BurstMode {
	switch strings.ToLower(strings.TrimSpace(string(mode))) {
	case string(BurstModeCoalesce):
		return BurstModeCoalesce
	case string(BurstModeDebounce):
		return BurstModeDebounce
	default:
		return BurstModeNone
	}
}

var _ BurstController = (*DefaultBurstController)(nil)
