package core

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryTransitionLog keeps committed transitions in process memory. It is
// both an observer and a TransitionLogReader.
type MemoryTransitionLog struct {
	mu      sync.RWMutex
	records []TransitionRecord
}

func NewMemoryTransitionLog() *MemoryTransitionLog {
	return &MemoryTransitionLog{}
}

func (l *MemoryTransitionLog) Name() string { return "memory_transition_log" }

func (l *MemoryTransitionLog) OnTransition(_ context.Context, record TransitionRecord) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *MemoryTransitionLog) ListTransitions(_ context.Context, filter TransitionFilter) (TransitionPage, error) {
	if l == nil {
		return TransitionPage{}, nil
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	l.mu.RLock()
	matched := make([]TransitionRecord, 0, len(l.records))
	for _, record := range l.records {
		if matchesTransitionFilter(record, filter) {
			matched = append(matched, record)
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Version > matched[j].Version
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	items := []TransitionRecord{}
	if offset < total {
		end := min(offset+perPage, total)
		items = append(items, matched[offset:end]...)
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return TransitionPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}

func matchesTransitionFilter(record TransitionRecord, filter TransitionFilter) bool {
	if namespace := strings.TrimSpace(filter.Namespace); namespace != "" && record.Namespace != namespace {
		return false
	}
	if action := strings.TrimSpace(filter.Action); action != "" && record.Action != action {
		return false
	}
	if sender := strings.TrimSpace(filter.Sender); sender != "" && string(record.Sender) != sender {
		return false
	}
	if filter.From != nil && record.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

var (
	_ TransitionObserver  = (*MemoryTransitionLog)(nil)
	_ TransitionLogReader = (*MemoryTransitionLog)(nil)
)
