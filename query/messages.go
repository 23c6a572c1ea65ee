package query

import (
	"strings"

	"github.com/goliatone/go-ownership/core"
)

const (
	TypeGetOwnership    = "ownership.query.get"
	TypeGetSnapshot     = "ownership.query.snapshot"
	TypeCheckRole       = "ownership.query.role.check"
	TypeListTransitions = "ownership.query.transitions.list"
)

const (
	RoleOwner          = "owner"
	RoleProposed       = "proposed"
	RoleEmergencyOwner = "emergency_owner"
)

type GetOwnershipMessage struct{}

func (GetOwnershipMessage) Type() string { return TypeGetOwnership }

func (GetOwnershipMessage) Validate() error { return nil }

type GetSnapshotMessage struct{}

func (GetSnapshotMessage) Type() string { return TypeGetSnapshot }

func (GetSnapshotMessage) Validate() error { return nil }

type CheckRoleMessage struct {
	Role     string
	Identity string
}

func (CheckRoleMessage) Type() string { return TypeCheckRole }

func (m CheckRoleMessage) Validate() error {
	switch normalizeRole(m.Role) {
	case RoleOwner, RoleProposed, RoleEmergencyOwner:
	default:
		return queryValidationError("role", "role must be owner, proposed or emergency_owner")
	}
	if strings.TrimSpace(m.Identity) == "" {
		return queryValidationError("identity", "identity is required")
	}
	return nil
}

// RoleCheck answers whether Identity currently holds Role.
type RoleCheck struct {
	Role     string `json:"role"`
	Identity string `json:"identity"`
	Holds    bool   `json:"holds"`
}

type ListTransitionsMessage struct {
	Filter core.TransitionFilter
}

func (ListTransitionsMessage) Type() string { return TypeListTransitions }

func (m ListTransitionsMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "per_page must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return queryValidationError("to", "to must not be before from")
	}
	return nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
