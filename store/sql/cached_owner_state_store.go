package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-ownership/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const ownerStateCacheKeyPrefix = "go-ownership::owner_state::v1"

// BaseOwnerStateStore is the store wrapped by CachedOwnerStateStore.
type BaseOwnerStateStore interface {
	core.StateStore
	core.Transactor
}

type cachedSnapshot struct {
	Snapshot core.Snapshot
	Found    bool
}

// CachedOwnerStateStore serves reads from a go-repository-cache service and
// evicts a namespace after every committed write. Loads inside RunInTx always
// reach the base store. A failed eviction is logged, never returned: the write
// is already durable by then.
type CachedOwnerStateStore struct {
	base   BaseOwnerStateStore
	cache  repositorycache.CacheService
	logger glog.Logger
}

type CachedOwnerStateStoreOption func(*CachedOwnerStateStore)

// WithCacheLogger sets the logger that receives eviction failures.
func WithCacheLogger(logger glog.Logger) CachedOwnerStateStoreOption {
	return func(s *CachedOwnerStateStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCachedOwnerStateStore(
	base BaseOwnerStateStore,
	cacheService repositorycache.CacheService,
	opts ...CachedOwnerStateStoreOption,
) (*CachedOwnerStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base owner state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: owner state cache service is required")
	}
	store := &CachedOwnerStateStore{base: base, cache: cacheService, logger: glog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// OwnerStateCacheKey returns go-ownership::owner_state::v1::<namespace> with
// the namespace URL-path escaped.
func OwnerStateCacheKey(namespace string) (string, error) {
	key := strings.TrimSpace(namespace)
	if key == "" {
		return "", fmt.Errorf("sqlstore: namespace is required")
	}
	return ownerStateCacheKeyPrefix + "::" + url.PathEscape(key), nil
}

func (s *CachedOwnerStateStore) Load(ctx context.Context, namespace string) (core.Snapshot, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Snapshot{}, false, fmt.Errorf("sqlstore: cached owner state store is not configured")
	}
	cacheKey, err := OwnerStateCacheKey(namespace)
	if err != nil {
		return core.Snapshot{}, false, err
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedSnapshot, error) {
		snapshot, found, fetchErr := s.base.Load(ctx, namespace)
		if fetchErr != nil {
			return cachedSnapshot{}, fetchErr
		}
		return cachedSnapshot{Snapshot: snapshot, Found: found}, nil
	})
	if err != nil {
		return core.Snapshot{}, false, err
	}
	return cached.Snapshot, cached.Found, nil
}

func (s *CachedOwnerStateStore) Save(
	ctx context.Context,
	namespace string,
	state core.OwnerState,
	expectedVersion int,
) (core.Snapshot, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Snapshot{}, fmt.Errorf("sqlstore: cached owner state store is not configured")
	}
	snapshot, err := s.base.Save(ctx, namespace, state, expectedVersion)
	if err != nil {
		return core.Snapshot{}, err
	}
	s.evict(ctx, namespace)
	return snapshot, nil
}

func (s *CachedOwnerStateStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store core.StateStore) error) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached owner state store is not configured")
	}
	if fn == nil {
		return nil
	}
	touched := map[string]struct{}{}
	err := s.base.RunInTx(ctx, func(ctx context.Context, store core.StateStore) error {
		return fn(ctx, &trackingStateStore{base: store, touched: touched})
	})
	if err != nil {
		return err
	}
	for namespace := range touched {
		s.evict(ctx, namespace)
	}
	return nil
}

func (s *CachedOwnerStateStore) evict(ctx context.Context, namespace string) {
	cacheKey, err := OwnerStateCacheKey(namespace)
	if err == nil {
		err = s.cache.Delete(ctx, cacheKey)
	}
	if err != nil {
		s.logger.Warn("owner state cache eviction failed", "namespace", namespace, "error", err)
	}
}

type trackingStateStore struct {
	base    core.StateStore
	touched map[string]struct{}
}

func (t *trackingStateStore) Load(ctx context.Context, namespace string) (core.Snapshot, bool, error) {
	return t.base.Load(ctx, namespace)
}

func (t *trackingStateStore) Save(
	ctx context.Context,
	namespace string,
	state core.OwnerState,
	expectedVersion int,
) (core.Snapshot, error) {
	snapshot, err := t.base.Save(ctx, namespace, state, expectedVersion)
	if err != nil {
		return core.Snapshot{}, err
	}
	t.touched[strings.TrimSpace(namespace)] = struct{}{}
	return snapshot, nil
}
