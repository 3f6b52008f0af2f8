// Package schema holds the custom contact attribute catalogue of one
// connector session.
package schema

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-brevo/core"
	glog "github.com/goliatone/go-logger/glog"
)

// Source fetches the remote attribute catalogue.
type Source interface {
	Attributes(ctx context.Context) ([]core.AttributeDefinition, error)
}

type SourceFunc func(ctx context.Context) ([]core.AttributeDefinition, error)

func (f SourceFunc) Attributes(ctx context.Context) ([]core.AttributeDefinition, error) {
	return f(ctx)
}

// Cache is read only once populated. It is created per session and passed
// explicitly to the mapper and the synchronizer.
type Cache struct {
	mu          sync.RWMutex
	source      Source
	store       core.ParameterStore
	definitions []core.AttributeDefinition
	loaded      bool
	observer    core.Observer
}

type Option func(*Cache)

// WithParameterStore seeds the cache from the attributes persisted by a
// previous connect, and persists every remote load.
func WithParameterStore(store core.ParameterStore) Option {
	return func(c *Cache) {
		c.store = store
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.observer.Logger = logger
		}
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(c *Cache) {
		if recorder != nil {
			c.observer.Metrics = recorder
		}
	}
}

func NewCache(source Source, opts ...Option) *Cache {
	cache := &Cache{
		source:   source,
		observer: core.NewObserver(glog.Nop(), nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cache)
		}
	}
	cache.observer.Prefix = "brevo.schema"
	return cache
}

// Load fetches the full catalogue from the remote service and replaces the
// cached one.
func (c *Cache) Load(ctx context.Context) ([]core.AttributeDefinition, error) {
	startedAt := time.Now()
	if c.source == nil {
		err := core.InternalError("schema: attribute source is not configured")
		c.observer.Observe(ctx, startedAt, "load", err, nil)
		return nil, err
	}
	definitions, err := c.source.Attributes(ctx)
	if err != nil {
		c.observer.Observe(ctx, startedAt, "load", err, nil)
		return nil, err
	}
	c.Seed(definitions)
	fields := map[string]any{"attributes": len(definitions)}
	if c.store != nil {
		if err := core.StoreParameter(ctx, c.store, core.ParameterContactAttributes, definitions); err != nil {
			c.observer.Log(ctx, "warn", "schema: persist attributes failed", map[string]any{"error": err.Error()})
		}
	}
	c.observer.Observe(ctx, startedAt, "load", nil, fields)
	return slices.Clone(definitions), nil
}

// Seed installs a catalogue without a remote call.
func (c *Cache) Seed(definitions []core.AttributeDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.definitions = slices.Clone(definitions)
	c.loaded = true
}

func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Definitions returns the whole catalogue, eligible or not.
func (c *Cache) Definitions(ctx context.Context) ([]core.AttributeDefinition, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.definitions), nil
}

// Eligible returns the definitions taking part in synchronization, in
// remote order.
func (c *Cache) Eligible(ctx context.Context) ([]core.AttributeDefinition, error) {
	definitions, err := c.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.AttributeDefinition, 0, len(definitions))
	for _, definition := range definitions {
		if definition.Eligible() {
			out = append(out, definition)
		}
	}
	return out, nil
}

// FindByFieldName matches an eligible definition by name, ignoring case.
func (c *Cache) FindByFieldName(ctx context.Context, name string) (core.AttributeDefinition, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.AttributeDefinition{}, false, nil
	}
	definitions, err := c.Eligible(ctx)
	if err != nil {
		return core.AttributeDefinition{}, false, err
	}
	for _, definition := range definitions {
		if strings.EqualFold(strings.TrimSpace(definition.Name), name) {
			return definition, true, nil
		}
	}
	return core.AttributeDefinition{}, false, nil
}

func (c *Cache) ensure(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	if c.store != nil {
		definitions, found, err := core.LoadParameter[[]core.AttributeDefinition](ctx, c.store, core.ParameterContactAttributes)
		if err != nil {
			c.observer.Log(ctx, "warn", "schema: read persisted attributes failed", map[string]any{"error": err.Error()})
		}
		if found {
			c.Seed(definitions)
			return nil
		}
	}
	_, err := c.Load(ctx)
	return err
}
