package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-ownership/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultTransitionPerPage = 25
	maxTransitionPerPage     = 200
)

// TransitionLogStore appends committed transitions to owner_transitions. It is
// registered on the service as an observer and read back by the transitions
// query.
type TransitionLogStore struct {
	db   *bun.DB
	repo repository.Repository[*transitionRecord]
}

func NewTransitionLogStore(db *bun.DB) (*TransitionLogStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*transitionRecord](db, transitionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid transition repository wiring: %w", err)
		}
	}
	return &TransitionLogStore{db: db, repo: repo}, nil
}

func (s *TransitionLogStore) Name() string {
	return "sql_transition_log"
}

func (s *TransitionLogStore) OnTransition(ctx context.Context, record core.TransitionRecord) error {
	return s.Append(ctx, record)
}

func (s *TransitionLogStore) Append(ctx context.Context, in core.TransitionRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: transition log store is not configured")
	}
	if strings.TrimSpace(in.Namespace) == "" {
		return fmt.Errorf("sqlstore: transition namespace is required")
	}
	record := newTransitionRecord(in)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *TransitionLogStore) ListTransitions(ctx context.Context, filter core.TransitionFilter) (core.TransitionPage, error) {
	if s == nil || s.repo == nil {
		return core.TransitionPage{}, fmt.Errorf("sqlstore: transition log store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultTransitionPerPage
	}
	if perPage > maxTransitionPerPage {
		perPage = maxTransitionPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.OrderBy("version DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if namespace := strings.TrimSpace(filter.Namespace); namespace != "" {
		selectors = append(selectors, repository.SelectBy("namespace", "=", namespace))
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		selectors = append(selectors, repository.SelectBy("action", "=", action))
	}
	if sender := strings.TrimSpace(filter.Sender); sender != "" {
		selectors = append(selectors, repository.SelectBy("sender", "=", sender))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.TransitionPage{}, err
	}
	items := make([]core.TransitionRecord, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return core.TransitionPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}
