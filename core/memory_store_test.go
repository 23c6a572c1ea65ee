package core

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStateStoreLoadEmptySlot(t *testing.T) {
	store := NewMemoryStateStore()
	snapshot, found, err := store.Load(context.Background(), "owner")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("expected empty slot")
	}
	if snapshot.State.Kind != StateUninitialized || snapshot.Version != 0 {
		t.Fatalf("expected uninitialized at version 0, got %+v", snapshot)
	}
}

func TestMemoryStateStoreSaveIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	first, err := store.Save(ctx, "owner", SetState(alice, ""), 0)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1, got %d", first.Version)
	}
	second, err := store.Save(ctx, "owner", ProposedState(alice, bob, ""), 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("expected version 2, got %d", second.Version)
	}

	_, err = store.Save(ctx, "owner", Abolished(), 1)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	loaded, found, err := store.Load(ctx, "owner")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.State != ProposedState(alice, bob, "") || loaded.Version != 2 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
}

func TestMemoryStateStoreNamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	if _, err := store.Save(ctx, "a", SetState(alice, ""), 0); err != nil {
		t.Fatalf("save a: %v", err)
	}
	_, found, err := store.Load(ctx, "b")
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if found {
		t.Fatalf("expected namespace b to be empty")
	}
}

func TestMemoryStateStoreRejectsInvalidStates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	if _, err := store.Save(ctx, "owner", Uninitialized(), 0); err == nil {
		t.Fatalf("expected uninitialized state to be rejected")
	}
	if _, err := store.Save(ctx, "owner", OwnerState{Kind: StateSet}, 0); err == nil {
		t.Fatalf("expected set state without owner to be rejected")
	}
	if _, err := store.Save(ctx, "", SetState(alice, ""), 0); err == nil {
		t.Fatalf("expected empty namespace to be rejected")
	}
}

func TestMemoryStateStoreRunInTxDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sentinel := errors.New("abort")

	err := store.RunInTx(ctx, func(ctx context.Context, tx StateStore) error {
		if _, err := tx.Save(ctx, "owner", SetState(alice, ""), 0); err != nil {
			return err
		}
		snapshot, found, err := tx.Load(ctx, "owner")
		if err != nil || !found || snapshot.Version != 1 {
			t.Fatalf("expected pending write to be visible inside tx, got %+v found=%v err=%v", snapshot, found, err)
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if _, found, _ := store.Load(ctx, "owner"); found {
		t.Fatalf("expected aborted tx to leave slot empty")
	}

	err = store.RunInTx(ctx, func(ctx context.Context, tx StateStore) error {
		_, err := tx.Save(ctx, "owner", SetState(alice, ""), 0)
		return err
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}
	if _, found, _ := store.Load(ctx, "owner"); !found {
		t.Fatalf("expected committed tx to persist state")
	}
}
