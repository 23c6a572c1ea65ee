package query

import (
	"context"

	"github.com/goliatone/go-ownership/core"
)

type OwnershipReader interface {
	Query(ctx context.Context) (core.OwnerResponse, error)
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

type RoleReader interface {
	IsOwner(ctx context.Context, id core.Identity) (bool, error)
	IsProposed(ctx context.Context, id core.Identity) (bool, error)
	IsEmergencyOwner(ctx context.Context, id core.Identity) (bool, error)
}

type GetOwnershipQuery struct {
	reader OwnershipReader
}

func NewGetOwnershipQuery(reader OwnershipReader) *GetOwnershipQuery {
	return &GetOwnershipQuery{reader: reader}
}

func (q *GetOwnershipQuery) Query(ctx context.Context, _ GetOwnershipMessage) (core.OwnerResponse, error) {
	if q == nil || q.reader == nil {
		return core.OwnerResponse{}, queryDependencyError("query: ownership reader is required")
	}
	return q.reader.Query(ctx)
}

type GetSnapshotQuery struct {
	reader OwnershipReader
}

func NewGetSnapshotQuery(reader OwnershipReader) *GetSnapshotQuery {
	return &GetSnapshotQuery{reader: reader}
}

func (q *GetSnapshotQuery) Query(ctx context.Context, _ GetSnapshotMessage) (core.Snapshot, error) {
	if q == nil || q.reader == nil {
		return core.Snapshot{}, queryDependencyError("query: ownership reader is required")
	}
	return q.reader.Snapshot(ctx)
}

type CheckRoleQuery struct {
	reader RoleReader
}

func NewCheckRoleQuery(reader RoleReader) *CheckRoleQuery {
	return &CheckRoleQuery{reader: reader}
}

func (q *CheckRoleQuery) Query(ctx context.Context, msg CheckRoleMessage) (RoleCheck, error) {
	if q == nil || q.reader == nil {
		return RoleCheck{}, queryDependencyError("query: role reader is required")
	}
	if err := msg.Validate(); err != nil {
		return RoleCheck{}, err
	}
	role := normalizeRole(msg.Role)
	id := core.SenderIdentity(msg.Identity)

	var (
		holds bool
		err   error
	)
	switch role {
	case RoleOwner:
		holds, err = q.reader.IsOwner(ctx, id)
	case RoleProposed:
		holds, err = q.reader.IsProposed(ctx, id)
	case RoleEmergencyOwner:
		holds, err = q.reader.IsEmergencyOwner(ctx, id)
	}
	if err != nil {
		return RoleCheck{}, err
	}
	return RoleCheck{Role: role, Identity: id.String(), Holds: holds}, nil
}

type ListTransitionsQuery struct {
	reader core.TransitionLogReader
}

func NewListTransitionsQuery(reader core.TransitionLogReader) *ListTransitionsQuery {
	return &ListTransitionsQuery{reader: reader}
}

func (q *ListTransitionsQuery) Query(ctx context.Context, msg ListTransitionsMessage) (core.TransitionPage, error) {
	if q == nil || q.reader == nil {
		return core.TransitionPage{}, queryDependencyError("query: transition log reader is required")
	}
	return q.reader.ListTransitions(ctx, msg.Filter)
}
