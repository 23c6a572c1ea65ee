package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[InitializeOwnerMessage] = (*InitializeOwnerCommand)(nil)
	_ gocmd.Commander[UpdateOwnerMessage]     = (*UpdateOwnerCommand)(nil)
)
