package sqlstore

import "github.com/goliatone/go-ownership/core"

var (
	_ core.StateStore          = (*OwnerStateStore)(nil)
	_ core.Transactor          = (*OwnerStateStore)(nil)
	_ core.StateStore          = (*CachedOwnerStateStore)(nil)
	_ core.Transactor          = (*CachedOwnerStateStore)(nil)
	_ core.StateStore          = (*ownerStateTx)(nil)
	_ core.TransitionObserver  = (*TransitionLogStore)(nil)
	_ core.TransitionLogReader = (*TransitionLogStore)(nil)
)
