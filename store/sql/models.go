package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-ownership/core"
	"github.com/uptrace/bun"
)

type ownerStateRecord struct {
	bun.BaseModel `bun:"table:owner_states,alias:ows"`

	ID             string    `bun:"id,pk"`
	Namespace      string    `bun:"namespace,notnull"`
	Kind           string    `bun:"kind,notnull"`
	Owner          string    `bun:"owner,notnull"`
	Proposed       string    `bun:"proposed,notnull"`
	EmergencyOwner string    `bun:"emergency_owner,notnull"`
	Version        int       `bun:"version,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type transitionRecord struct {
	bun.BaseModel `bun:"table:owner_transitions,alias:owt"`

	ID             string    `bun:"id,pk"`
	Namespace      string    `bun:"namespace,notnull"`
	Action         string    `bun:"action,notnull"`
	Event          string    `bun:"event,notnull"`
	FromState      string    `bun:"from_state,notnull"`
	ToState        string    `bun:"to_state,notnull"`
	Owner          string    `bun:"owner,notnull"`
	Proposed       string    `bun:"proposed,notnull"`
	EmergencyOwner string    `bun:"emergency_owner,notnull"`
	Sender         string    `bun:"sender,notnull"`
	Version        int       `bun:"version,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newOwnerStateRecord(namespace string, state core.OwnerState, now time.Time) *ownerStateRecord {
	record := &ownerStateRecord{
		Namespace: strings.TrimSpace(namespace),
		CreatedAt: now,
	}
	record.apply(state, now)
	return record
}

func (r *ownerStateRecord) apply(state core.OwnerState, now time.Time) {
	r.Kind = string(state.Kind)
	r.Owner = string(state.Owner)
	r.Proposed = string(state.Proposed)
	r.EmergencyOwner = string(state.EmergencyOwner)
	r.UpdatedAt = now
}

func (r *ownerStateRecord) toSnapshot() core.Snapshot {
	if r == nil {
		return core.Snapshot{State: core.Uninitialized()}
	}
	return core.Snapshot{
		State: core.OwnerState{
			Kind:           core.StateKind(strings.TrimSpace(r.Kind)),
			Owner:          core.Identity(r.Owner),
			Proposed:       core.Identity(r.Proposed),
			EmergencyOwner: core.Identity(r.EmergencyOwner),
		},
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func newTransitionRecord(in core.TransitionRecord) *transitionRecord {
	createdAt := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &transitionRecord{
		ID:             strings.TrimSpace(in.ID),
		Namespace:      strings.TrimSpace(in.Namespace),
		Action:         strings.TrimSpace(in.Action),
		Event:          strings.TrimSpace(in.Event),
		FromState:      string(in.From),
		ToState:        string(in.To),
		Owner:          string(in.Owner),
		Proposed:       string(in.Proposed),
		EmergencyOwner: string(in.EmergencyOwner),
		Sender:         string(in.Sender),
		Version:        in.Version,
		CreatedAt:      createdAt,
	}
}

func (r *transitionRecord) toDomain() core.TransitionRecord {
	if r == nil {
		return core.TransitionRecord{}
	}
	return core.TransitionRecord{
		ID:             r.ID,
		Namespace:      r.Namespace,
		Action:         r.Action,
		Event:          r.Event,
		From:           core.StateKind(r.FromState),
		To:             core.StateKind(r.ToState),
		Owner:          core.Identity(r.Owner),
		Proposed:       core.Identity(r.Proposed),
		EmergencyOwner: core.Identity(r.EmergencyOwner),
		Sender:         core.Identity(r.Sender),
		Version:        r.Version,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}
