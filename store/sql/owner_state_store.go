package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-ownership/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OwnerStateStore persists one owner_states row per namespace. Writes are
// guarded by the row version so concurrent updates to the same namespace
// surface as core.ErrVersionConflict instead of overwriting each other.
type OwnerStateStore struct {
	db   *bun.DB
	repo repository.Repository[*ownerStateRecord]
	now  func() time.Time
}

func NewOwnerStateStore(db *bun.DB) (*OwnerStateStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*ownerStateRecord](db, ownerStateHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid owner state repository wiring: %w", err)
		}
	}
	return &OwnerStateStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *OwnerStateStore) Load(ctx context.Context, namespace string) (core.Snapshot, bool, error) {
	if s == nil || s.db == nil {
		return core.Snapshot{}, false, fmt.Errorf("sqlstore: owner state store is not configured")
	}
	return loadOwnerState(ctx, s.db, namespace)
}

func (s *OwnerStateStore) Save(
	ctx context.Context,
	namespace string,
	state core.OwnerState,
	expectedVersion int,
) (core.Snapshot, error) {
	if s == nil || s.db == nil {
		return core.Snapshot{}, fmt.Errorf("sqlstore: owner state store is not configured")
	}
	var out core.Snapshot
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		saved, err := s.saveTx(ctx, tx, namespace, state, expectedVersion)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return core.Snapshot{}, err
	}
	return out, nil
}

// RunInTx runs fn against a store bound to a single database transaction.
// The transaction commits only when fn returns nil.
func (s *OwnerStateStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store core.StateStore) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: owner state store is not configured")
	}
	if fn == nil {
		return nil
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &ownerStateTx{parent: s, tx: tx})
	})
}

// List returns every persisted namespace slot ordered by namespace.
func (s *OwnerStateStore) List(ctx context.Context) (map[string]core.Snapshot, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: owner state store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("namespace ASC"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Snapshot, len(records))
	for _, record := range records {
		out[record.Namespace] = record.toSnapshot()
	}
	return out, nil
}

func (s *OwnerStateStore) saveTx(
	ctx context.Context,
	tx bun.Tx,
	namespace string,
	state core.OwnerState,
	expectedVersion int,
) (core.Snapshot, error) {
	key := strings.TrimSpace(namespace)
	if key == "" {
		return core.Snapshot{}, fmt.Errorf("sqlstore: namespace is required")
	}
	if err := core.ValidatePersistable(state); err != nil {
		return core.Snapshot{}, err
	}
	if expectedVersion < 0 {
		return core.Snapshot{}, fmt.Errorf("sqlstore: expected version must not be negative")
	}
	now := s.now()

	if expectedVersion == 0 {
		record := newOwnerStateRecord(key, state, now)
		record.ID = uuid.NewString()
		record.Version = 1
		if _, err := s.repo.CreateTx(ctx, tx, record); err != nil {
			if isUniqueViolation(err) {
				return core.Snapshot{}, fmt.Errorf("%w: namespace %q already initialized", core.ErrVersionConflict, key)
			}
			return core.Snapshot{}, err
		}
		return record.toSnapshot(), nil
	}

	record := &ownerStateRecord{}
	record.apply(state, now)
	record.Version = expectedVersion + 1
	res, err := tx.NewUpdate().
		Model(record).
		Column("kind", "owner", "proposed", "emergency_owner", "version", "updated_at").
		Where("namespace = ?", key).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Snapshot{}, err
	}
	if affected == 0 {
		return core.Snapshot{}, fmt.Errorf("%w: namespace %q is not at version %d", core.ErrVersionConflict, key, expectedVersion)
	}
	record.Namespace = key
	return record.toSnapshot(), nil
}

type ownerStateTx struct {
	parent *OwnerStateStore
	tx     bun.Tx
}

func (t *ownerStateTx) Load(ctx context.Context, namespace string) (core.Snapshot, bool, error) {
	return loadOwnerState(ctx, t.tx, namespace)
}

func (t *ownerStateTx) Save(
	ctx context.Context,
	namespace string,
	state core.OwnerState,
	expectedVersion int,
) (core.Snapshot, error) {
	return t.parent.saveTx(ctx, t.tx, namespace, state, expectedVersion)
}

func loadOwnerState(ctx context.Context, db bun.IDB, namespace string) (core.Snapshot, bool, error) {
	key := strings.TrimSpace(namespace)
	if key == "" {
		return core.Snapshot{}, false, fmt.Errorf("sqlstore: namespace is required")
	}
	record := &ownerStateRecord{}
	err := db.NewSelect().
		Model(record).
		Where("?TableAlias.namespace = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Snapshot{State: core.Uninitialized()}, false, nil
		}
		return core.Snapshot{}, false, err
	}
	return record.toSnapshot(), true, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
