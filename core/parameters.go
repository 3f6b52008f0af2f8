package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Connector parameter keys persisted by Connect.
const (
	ParameterListsIndex        = "ApiListsIndex"
	ParameterListsDetails      = "ApiListsDetails"
	ParameterContactAttributes = "ContactAttributes"
)

type MemoryParameterStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryParameterStore() *MemoryParameterStore {
	return &MemoryParameterStore{values: map[string][]byte{}}
}

func (s *MemoryParameterStore) GetParameter(_ context.Context, key string) ([]byte, error) {
	if s == nil {
		return nil, ErrParameterNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[strings.TrimSpace(key)]
	if !ok {
		return nil, ErrParameterNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryParameterStore) SetParameter(_ context.Context, key string, value []byte) error {
	if s == nil {
		return fmt.Errorf("core: parameter store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("core: parameter key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryParameterStore) DeleteParameter(_ context.Context, key string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, strings.TrimSpace(key))
	return nil
}

// LoadParameter decodes a JSON parameter. found is false when the key was
// never stored.
func LoadParameter[T any](ctx context.Context, store ParameterStore, key string) (value T, found bool, err error) {
	if store == nil {
		return value, false, nil
	}
	raw, err := store.GetParameter(ctx, key)
	if err != nil {
		if err == ErrParameterNotFound {
			return value, false, nil
		}
		return value, false, err
	}
	if err := gojson.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("core: decode parameter %s: %w", key, err)
	}
	return value, true, nil
}

func StoreParameter[T any](ctx context.Context, store ParameterStore, key string, value T) error {
	if store == nil {
		return nil
	}
	raw, err := gojson.Marshal(value)
	if err != nil {
		return fmt.Errorf("core: encode parameter %s: %w", key, err)
	}
	return store.SetParameter(ctx, key, raw)
}

var _ ParameterStore = (*MemoryParameterStore)(nil)
