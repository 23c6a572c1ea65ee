package command

import (
	"strings"

	"github.com/goliatone/go-ownership/core"
)

const (
	TypeInitializeOwner = "ownership.command.initialize"
	TypeUpdateOwner     = "ownership.command.update"
)

type InitializeOwnerMessage struct {
	Init core.OwnerInit
}

func (InitializeOwnerMessage) Type() string { return TypeInitializeOwner }

func (m InitializeOwnerMessage) Validate() error {
	if !m.Init.Kind.Valid() {
		return commandValidationError("kind", "unknown initialization event")
	}
	if m.Init.Kind == core.InitSetInitialOwner && strings.TrimSpace(m.Init.Owner) == "" {
		return commandValidationError("owner", "owner is required")
	}
	return nil
}

type UpdateOwnerMessage struct {
	Sender string
	Update core.OwnerUpdate
}

func (UpdateOwnerMessage) Type() string { return TypeUpdateOwner }

func (m UpdateOwnerMessage) Validate() error {
	if strings.TrimSpace(m.Sender) == "" {
		return commandValidationError("sender", "sender is required")
	}
	if !m.Update.Kind.Valid() {
		return commandValidationError("kind", "unknown update event")
	}
	switch m.Update.Kind {
	case core.UpdateProposeNewOwner:
		if strings.TrimSpace(m.Update.Proposed) == "" {
			return commandValidationError("proposed", "proposed owner is required")
		}
	case core.UpdateSetEmergencyOwner:
		if strings.TrimSpace(m.Update.EmergencyOwner) == "" {
			return commandValidationError("emergency_owner", "emergency owner is required")
		}
	}
	return nil
}
