package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	}
	return NewRepositoryFactory(client)
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	return NewRepositoryFactory(db)
}

// NewRepositoryFactory accepts a *bun.DB or anything exposing DB() *bun.DB.
func NewRepositoryFactory(persistenceClient any) (*RepositoryFactory, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	return &RepositoryFactory{db: db}, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) ParameterStore(connector string) (*ParameterStore, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	return NewParameterStore(f.db, connector)
}

// CachedParameterStore wraps the connector parameter store with cacheService.
// A nil cacheService builds one from the go-repository-cache defaults.
func (f *RepositoryFactory) CachedParameterStore(
	connector string,
	cacheService repositorycache.CacheService,
) (*CachedParameterStore, error) {
	base, err := f.ParameterStore(connector)
	if err != nil {
		return nil, err
	}
	if cacheService == nil {
		cacheService, err = repositorycache.NewCacheService(repositorycache.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("sqlstore: parameter cache service: %w", err)
		}
	}
	return NewCachedParameterStore(base, cacheService, connector)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: bun db is required")
		}
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
