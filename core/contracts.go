package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// StateStore holds one OwnerState per namespace key. Load reports false when
// the slot has never been written. Save stores state when the persisted
// version still equals expectedVersion and returns the new snapshot.
type StateStore interface {
	Load(ctx context.Context, namespace string) (Snapshot, bool, error)
	Save(ctx context.Context, namespace string, state OwnerState, expectedVersion int) (Snapshot, error)
}

// Transactor is implemented by stores able to run a load/decide/save
// sequence as one atomic unit.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store StateStore) error) error
}

// TransitionObserver receives committed transitions. Observers run after the
// save; their errors are logged and never undo the transition.
type TransitionObserver interface {
	Name() string
	OnTransition(ctx context.Context, record TransitionRecord) error
}

type TransitionObserverFunc func(ctx context.Context, record TransitionRecord) error

func (f TransitionObserverFunc) Name() string { return "func" }

func (f TransitionObserverFunc) OnTransition(ctx context.Context, record TransitionRecord) error {
	if f == nil {
		return nil
	}
	return f(ctx, record)
}

type TransitionLogReader interface {
	ListTransitions(ctx context.Context, filter TransitionFilter) (TransitionPage, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
