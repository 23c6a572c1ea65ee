package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ownership/core"
)

var (
	_ gocmd.Querier[GetOwnershipMessage, core.OwnerResponse]     = (*GetOwnershipQuery)(nil)
	_ gocmd.Querier[GetSnapshotMessage, core.Snapshot]           = (*GetSnapshotQuery)(nil)
	_ gocmd.Querier[CheckRoleMessage, RoleCheck]                 = (*CheckRoleQuery)(nil)
	_ gocmd.Querier[ListTransitionsMessage, core.TransitionPage] = (*ListTransitionsQuery)(nil)
)
