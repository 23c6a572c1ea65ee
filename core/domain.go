package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Identity is an already validated principal reference. The empty identity
// means "absent".
type Identity string

func (i Identity) String() string { return string(i) }

func (i Identity) IsZero() bool { return strings.TrimSpace(string(i)) == "" }

type StateKind string

const (
	StateUninitialized StateKind = "uninitialized"
	StateSet           StateKind = "set"
	StateProposed      StateKind = "proposed"
	StateAbolished     StateKind = "abolished"
)

func (k StateKind) Valid() bool {
	switch k {
	case StateUninitialized, StateSet, StateProposed, StateAbolished:
		return true
	default:
		return false
	}
}

// OwnerState is the tagged union stored in a namespace slot. Only the fields
// meaningful for Kind are populated; use the constructors to build values.
type OwnerState struct {
	Kind           StateKind
	Owner          Identity
	Proposed       Identity
	EmergencyOwner Identity
}

func Uninitialized() OwnerState {
	return OwnerState{Kind: StateUninitialized}
}

func SetState(owner Identity, emergencyOwner Identity) OwnerState {
	return OwnerState{Kind: StateSet, Owner: owner, EmergencyOwner: emergencyOwner}
}

func ProposedState(owner Identity, proposed Identity, emergencyOwner Identity) OwnerState {
	return OwnerState{Kind: StateProposed, Owner: owner, Proposed: proposed, EmergencyOwner: emergencyOwner}
}

func Abolished() OwnerState {
	return OwnerState{Kind: StateAbolished}
}

// Validate checks the per-variant field invariants. It runs on every state
// decoded from a store.
func (s OwnerState) Validate() error {
	switch s.Kind {
	case StateUninitialized, StateAbolished:
		if !s.Owner.IsZero() || !s.Proposed.IsZero() || !s.EmergencyOwner.IsZero() {
			return fmt.Errorf("core: %s state carries role fields", s.Kind)
		}
	case StateSet:
		if s.Owner.IsZero() {
			return fmt.Errorf("core: set state requires owner")
		}
		if !s.Proposed.IsZero() {
			return fmt.Errorf("core: set state carries proposed owner")
		}
	case StateProposed:
		if s.Owner.IsZero() {
			return fmt.Errorf("core: proposed state requires owner")
		}
		if s.Proposed.IsZero() {
			return fmt.Errorf("core: proposed state requires proposed owner")
		}
	default:
		return fmt.Errorf("core: unknown owner state kind %q", s.Kind)
	}
	return nil
}

func (s OwnerState) CurrentOwner() (Identity, bool) {
	switch s.Kind {
	case StateSet, StateProposed:
		return s.Owner, true
	default:
		return "", false
	}
}

func (s OwnerState) ProposedOwner() (Identity, bool) {
	if s.Kind == StateProposed {
		return s.Proposed, true
	}
	return "", false
}

func (s OwnerState) CurrentEmergencyOwner() (Identity, bool) {
	switch s.Kind {
	case StateSet, StateProposed:
		if s.EmergencyOwner.IsZero() {
			return "", false
		}
		return s.EmergencyOwner, true
	default:
		return "", false
	}
}

// Snapshot is a loaded state together with its persistence version. Version
// is zero while the slot has never been written.
type Snapshot struct {
	State     OwnerState
	Version   int
	UpdatedAt time.Time
}

type InitKind string

const (
	InitSetInitialOwner  InitKind = "set_initial_owner"
	InitAbolishOwnerRole InitKind = "abolish_owner_role"
)

func (k InitKind) Valid() bool {
	return k == InitSetInitialOwner || k == InitAbolishOwnerRole
}

// OwnerInit is the initialization event family, valid only against an
// uninitialized slot.
type OwnerInit struct {
	Kind  InitKind `json:"kind"`
	Owner string   `json:"owner,omitempty"`
}

func SetInitialOwner(owner string) OwnerInit {
	return OwnerInit{Kind: InitSetInitialOwner, Owner: owner}
}

func AbolishAtInit() OwnerInit {
	return OwnerInit{Kind: InitAbolishOwnerRole}
}

type UpdateKind string

const (
	UpdateProposeNewOwner     UpdateKind = "propose_new_owner"
	UpdateClearProposed       UpdateKind = "clear_proposed"
	UpdateAcceptProposed      UpdateKind = "accept_proposed"
	UpdateAbolishOwnerRole    UpdateKind = "abolish_owner_role"
	UpdateSetEmergencyOwner   UpdateKind = "set_emergency_owner"
	UpdateClearEmergencyOwner UpdateKind = "clear_emergency_owner"
)

func (k UpdateKind) Valid() bool {
	switch k {
	case UpdateProposeNewOwner,
		UpdateClearProposed,
		UpdateAcceptProposed,
		UpdateAbolishOwnerRole,
		UpdateSetEmergencyOwner,
		UpdateClearEmergencyOwner:
		return true
	default:
		return false
	}
}

func (k UpdateKind) IsEmergencyOwnerEvent() bool {
	return k == UpdateSetEmergencyOwner || k == UpdateClearEmergencyOwner
}

// OwnerUpdate is the post-initialization event family. Address fields hold
// untrusted input and are resolved only after authorization succeeds.
type OwnerUpdate struct {
	Kind           UpdateKind `json:"kind"`
	Proposed       string     `json:"proposed,omitempty"`
	EmergencyOwner string     `json:"emergency_owner,omitempty"`
}

func ProposeNewOwner(proposed string) OwnerUpdate {
	return OwnerUpdate{Kind: UpdateProposeNewOwner, Proposed: proposed}
}

func ClearProposed() OwnerUpdate { return OwnerUpdate{Kind: UpdateClearProposed} }

func AcceptProposed() OwnerUpdate { return OwnerUpdate{Kind: UpdateAcceptProposed} }

func AbolishOwnerRole() OwnerUpdate { return OwnerUpdate{Kind: UpdateAbolishOwnerRole} }

func SetEmergencyOwner(emergencyOwner string) OwnerUpdate {
	return OwnerUpdate{Kind: UpdateSetEmergencyOwner, EmergencyOwner: emergencyOwner}
}

func ClearEmergencyOwner() OwnerUpdate { return OwnerUpdate{Kind: UpdateClearEmergencyOwner} }

// OwnerResponse is the read-only projection handed to external consumers.
type OwnerResponse struct {
	Owner          *string
	Proposed       *string
	Initialized    bool
	Abolished      bool
	EmergencyOwner *string

	emergencyOwnerEnabled bool
}

func (r OwnerResponse) EmergencyOwnerEnabled() bool { return r.emergencyOwnerEnabled }

func (r OwnerResponse) MarshalJSON() ([]byte, error) {
	payload := map[string]any{
		"owner":       r.Owner,
		"proposed":    r.Proposed,
		"initialized": r.Initialized,
		"abolished":   r.Abolished,
	}
	if r.emergencyOwnerEnabled {
		payload["emergency_owner"] = r.EmergencyOwner
	}
	return json.Marshal(payload)
}

func (r *OwnerResponse) UnmarshalJSON(data []byte) error {
	var payload struct {
		Owner       *string `json:"owner"`
		Proposed    *string `json:"proposed"`
		Initialized bool    `json:"initialized"`
		Abolished   bool    `json:"abolished"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*r = OwnerResponse{
		Owner:       payload.Owner,
		Proposed:    payload.Proposed,
		Initialized: payload.Initialized,
		Abolished:   payload.Abolished,
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["emergency_owner"]; ok {
		r.emergencyOwnerEnabled = true
		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		r.EmergencyOwner = value
	}
	return nil
}

type Attribute struct {
	Key   string
	Value string
}

// UpdateResult is returned from a successful update: the projection of the
// new state plus the informational attribute set for event/log sinks.
type UpdateResult struct {
	Response   OwnerResponse
	Attributes []Attribute
}

func (r UpdateResult) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// TransitionRecord describes one committed change of a namespace slot.
type TransitionRecord struct {
	ID             string    `json:"id"`
	Namespace      string    `json:"namespace"`
	Action         string    `json:"action"`
	Event          string    `json:"event"`
	From           StateKind `json:"from"`
	To             StateKind `json:"to"`
	Owner          Identity  `json:"owner,omitempty"`
	Proposed       Identity  `json:"proposed,omitempty"`
	EmergencyOwner Identity  `json:"emergency_owner,omitempty"`
	Sender         Identity  `json:"sender,omitempty"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
}

type TransitionFilter struct {
	Namespace string
	Action    string
	Sender    string
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type TransitionPage struct {
	Items      []TransitionRecord `json:"items"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	Total      int                `json:"total"`
	HasNext    bool               `json:"has_next"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
