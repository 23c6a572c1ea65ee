package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

// plainStateStore hides the Transactor implementation of the memory store.
type plainStateStore struct {
	inner *MemoryStateStore
	saves int
}

func (s *plainStateStore) Load(ctx context.Context, namespace string) (Snapshot, bool, error) {
	return s.inner.Load(ctx, namespace)
}

func (s *plainStateStore) Save(ctx context.Context, namespace string, state OwnerState, expectedVersion int) (Snapshot, error) {
	s.saves++
	return s.inner.Save(ctx, namespace, state, expectedVersion)
}

// commitFailingStore commits through the memory store, then reports err from
// RunInTx.
type commitFailingStore struct {
	*MemoryStateStore
	err error
}

func (s *commitFailingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store StateStore) error) error {
	if err := s.MemoryStateStore.RunInTx(ctx, fn); err != nil {
		return err
	}
	return s.err
}

type failingStateStore struct {
	loadErr error
	saveErr error
	state   OwnerState
	found   bool
}

func (s failingStateStore) Load(context.Context, string) (Snapshot, bool, error) {
	if s.loadErr != nil {
		return Snapshot{}, false, s.loadErr
	}
	if !s.found {
		return Snapshot{State: Uninitialized()}, false, nil
	}
	return Snapshot{State: s.state, Version: 1}, true, nil
}

func (s failingStateStore) Save(context.Context, string, OwnerState, int) (Snapshot, error) {
	if s.saveErr != nil {
		return Snapshot{}, s.saveErr
	}
	return Snapshot{}, errors.New("failing state store: save not expected")
}

type recordingObserver struct {
	name string
	err  error

	mu      sync.Mutex
	records []TransitionRecord
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) OnTransition(_ context.Context, record TransitionRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return o.err
}

func (o *recordingObserver) snapshot() []TransitionRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]TransitionRecord, len(o.records))
	copy(out, o.records)
	return out
}

func newTestService(t *testing.T, emergency bool, opts ...Option) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EmergencyOwner.Enabled = emergency
	options := append([]Option{WithLogger(stubLogger{}), WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}})}, opts...)
	svc, err := NewService(cfg, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func initOwner(t *testing.T, svc *Service, owner string) {
	t.Helper()
	if _, err := svc.Initialize(context.Background(), SetInitialOwner(owner)); err != nil {
		t.Fatalf("initialize owner %q: %v", owner, err)
	}
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	if got := ErrorCode(err); got != code {
		t.Fatalf("expected error code %s, got %q (%v)", code, got, err)
	}
}

func strPtrValue(value *string) string {
	if value == nil {
		return "<nil>"
	}
	return *value
}
