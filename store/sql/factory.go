package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type StoreFactory struct {
	db *bun.DB

	ownerStateStore    *OwnerStateStore
	transitionLogStore *TransitionLogStore
}

func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

func NewStoreFactoryFromPersistence(client *persistence.Client) (*StoreFactory, error) {
	factory := NewStoreFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewStoreFactoryFromDB(db *bun.DB) (*StoreFactory, error) {
	factory := NewStoreFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// BuildStores accepts a *bun.DB or anything exposing DB() *bun.DB, such as a
// go-persistence-bun client.
func (f *StoreFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: store factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.ownerStateStore != nil && f.transitionLogStore != nil {
		return nil
	}
	ownerStateStore, err := NewOwnerStateStore(f.db)
	if err != nil {
		return err
	}
	transitionLogStore, err := NewTransitionLogStore(f.db)
	if err != nil {
		return err
	}
	f.ownerStateStore = ownerStateStore
	f.transitionLogStore = transitionLogStore
	return nil
}

func (f *StoreFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *StoreFactory) OwnerStateStore() *OwnerStateStore {
	if f == nil {
		return nil
	}
	return f.ownerStateStore
}

func (f *StoreFactory) TransitionLogStore() *TransitionLogStore {
	if f == nil {
		return nil
	}
	return f.transitionLogStore
}

// CachedOwnerStateStore wraps the owner state store with cacheService.
func (f *StoreFactory) CachedOwnerStateStore(
	cacheService repositorycache.CacheService,
	opts ...CachedOwnerStateStoreOption,
) (*CachedOwnerStateStore, error) {
	if f == nil || f.ownerStateStore == nil {
		return nil, fmt.Errorf("sqlstore: store factory is not built")
	}
	return NewCachedOwnerStateStore(f.ownerStateStore, cacheService, opts...)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
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
