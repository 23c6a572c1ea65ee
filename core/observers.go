package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ObserverCoordinator fans committed transitions out to observers in
// registration order.
type ObserverCoordinator struct {
	mu        sync.RWMutex
	observers []TransitionObserver
}

func NewObserverCoordinator(observers ...TransitionObserver) *ObserverCoordinator {
	coordinator := &ObserverCoordinator{observers: make([]TransitionObserver, 0, len(observers))}
	for _, observer := range observers {
		coordinator.Register(observer)
	}
	return coordinator
}

func (c *ObserverCoordinator) Register(observer TransitionObserver) {
	if c == nil || observer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, observer)
}

// Notify runs every observer after commit. Failures are aggregated and
// returned for logging; they never imply rollback.
func (c *ObserverCoordinator) Notify(ctx context.Context, record TransitionRecord) error {
	var notifyErr error
	for _, observer := range c.list() {
		if err := observer.OnTransition(ctx, record); err != nil {
			notifyErr = errors.Join(notifyErr, fmt.Errorf("transition observer %q failed: %w", observerName(observer), err))
		}
	}
	return notifyErr
}

func (c *ObserverCoordinator) list() []TransitionObserver {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]TransitionObserver, len(c.observers))
	copy(out, c.observers)
	return out
}

func observerName(observer TransitionObserver) string {
	if observer == nil {
		return "unknown"
	}
	name := strings.TrimSpace(observer.Name())
	if name == "" {
		return "unnamed"
	}
	return name
}
