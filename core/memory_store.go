package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memorySlot struct {
	state     OwnerState
	version   int
	updatedAt time.Time
}

// MemoryStateStore keeps namespace slots in process memory. RunInTx holds the
// store lock for the whole callback and applies buffered writes only when the
// callback succeeds.
type MemoryStateStore struct {
	mu    sync.Mutex
	slots map[string]memorySlot
	now   func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		slots: map[string]memorySlot{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStateStore) Load(_ context.Context, namespace string) (Snapshot, bool, error) {
	if s == nil {
		return Snapshot{}, false, fmt.Errorf("core: memory state store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(namespace)
}

func (s *MemoryStateStore) Save(_ context.Context, namespace string, state OwnerState, expectedVersion int) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, fmt.Errorf("core: memory state store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(s.slots, namespace, state, expectedVersion)
}

func (s *MemoryStateStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store StateStore) error) error {
	if s == nil {
		return fmt.Errorf("core: memory state store is nil")
	}
	if fn == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{parent: s, pending: map[string]memorySlot{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for namespace, slot := range tx.pending {
		s.slots[namespace] = slot
	}
	return nil
}

func (s *MemoryStateStore) loadLocked(namespace string) (Snapshot, bool, error) {
	key, err := normalizeNamespace(namespace)
	if err != nil {
		return Snapshot{}, false, err
	}
	slot, ok := s.slots[key]
	if !ok {
		return Snapshot{State: Uninitialized()}, false, nil
	}
	return Snapshot{State: slot.state, Version: slot.version, UpdatedAt: slot.updatedAt}, true, nil
}

func (s *MemoryStateStore) saveLocked(
	target map[string]memorySlot,
	namespace string,
	state OwnerState,
	expectedVersion int,
) (Snapshot, error) {
	key, err := normalizeNamespace(namespace)
	if err != nil {
		return Snapshot{}, err
	}
	if err := validatePersistable(state); err != nil {
		return Snapshot{}, err
	}
	current := 0
	if slot, ok := target[key]; ok {
		current = slot.version
	} else if slot, ok := s.slots[key]; ok {
		current = slot.version
	}
	if current != expectedVersion {
		return Snapshot{}, fmt.Errorf("%w: namespace %q at version %d, expected %d", ErrVersionConflict, key, current, expectedVersion)
	}
	slot := memorySlot{state: state, version: current + 1, updatedAt: s.now()}
	target[key] = slot
	return Snapshot{State: slot.state, Version: slot.version, UpdatedAt: slot.updatedAt}, nil
}

type memoryTx struct {
	parent  *MemoryStateStore
	pending map[string]memorySlot
}

func (t *memoryTx) Load(_ context.Context, namespace string) (Snapshot, bool, error) {
	key, err := normalizeNamespace(namespace)
	if err != nil {
		return Snapshot{}, false, err
	}
	if slot, ok := t.pending[key]; ok {
		return Snapshot{State: slot.state, Version: slot.version, UpdatedAt: slot.updatedAt}, true, nil
	}
	return t.parent.loadLocked(key)
}

func (t *memoryTx) Save(_ context.Context, namespace string, state OwnerState, expectedVersion int) (Snapshot, error) {
	return t.parent.saveLocked(t.pending, namespace, state, expectedVersion)
}

func normalizeNamespace(namespace string) (string, error) {
	key := strings.TrimSpace(namespace)
	if key == "" {
		return "", fmt.Errorf("core: namespace is required")
	}
	return key, nil
}

// validatePersistable rejects states that must never be written: the
// uninitialized state only exists as the absence of a value.
func validatePersistable(state OwnerState) error {
	if state.Kind == StateUninitialized {
		return fmt.Errorf("core: uninitialized state cannot be persisted")
	}
	return state.Validate()
}

// ValidatePersistable is exported for store implementations outside core.
func ValidatePersistable(state OwnerState) error {
	return validatePersistable(state)
}

var (
	_ StateStore = (*MemoryStateStore)(nil)
	_ Transactor = (*MemoryStateStore)(nil)
)
