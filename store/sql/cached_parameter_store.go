package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-brevo/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const parameterCacheKeyPrefix = "go-brevo::parameter::v1"

// CachedParameterStore reads parameters through a cache and invalidates the
// cached entry on every write.
type CachedParameterStore struct {
	base      core.ParameterStore
	cache     repositorycache.CacheService
	connector string
}

func NewCachedParameterStore(
	base core.ParameterStore,
	cacheService repositorycache.CacheService,
	connector string,
) (*CachedParameterStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base parameter store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: parameter cache service is required")
	}
	return &CachedParameterStore{base: base, cache: cacheService, connector: strings.TrimSpace(connector)}, nil
}

// ParameterCacheKey is go-brevo::parameter::v1::<connector>::<key> with both
// segments URL-path escaped.
func ParameterCacheKey(connector string, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: parameter key is required")
	}
	return strings.Join([]string{
		parameterCacheKeyPrefix,
		url.PathEscape(strings.TrimSpace(connector)),
		url.PathEscape(key),
	}, "::"), nil
}

func (s *CachedParameterStore) GetParameter(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached parameter store is not configured")
	}
	cacheKey, err := ParameterCacheKey(s.connector, key)
	if err != nil {
		return nil, err
	}
	value, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) ([]byte, error) {
		return s.base.GetParameter(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), value...), nil
}

func (s *CachedParameterStore) SetParameter(ctx context.Context, key string, value []byte) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached parameter store is not configured")
	}
	if err := s.base.SetParameter(ctx, key, value); err != nil {
		return err
	}
	return s.invalidate(ctx, key)
}

func (s *CachedParameterStore) DeleteParameter(ctx context.Context, key string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached parameter store is not configured")
	}
	if err := s.base.DeleteParameter(ctx, key); err != nil {
		return err
	}
	return s.invalidate(ctx, key)
}

func (s *CachedParameterStore) invalidate(ctx context.Context, key string) error {
	cacheKey, err := ParameterCacheKey(s.connector, key)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
