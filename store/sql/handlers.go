package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func ownerStateHandlers() repository.ModelHandlers[*ownerStateRecord] {
	return repository.ModelHandlers[*ownerStateRecord]{
		NewRecord: func() *ownerStateRecord {
			return &ownerStateRecord{}
		},
		GetID: func(record *ownerStateRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *ownerStateRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "namespace"
		},
		GetIdentifierValue: func(record *ownerStateRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.Namespace)
		},
	}
}

func transitionHandlers() repository.ModelHandlers[*transitionRecord] {
	return repository.ModelHandlers[*transitionRecord]{
		NewRecord: func() *transitionRecord {
			return &transitionRecord{}
		},
		GetID: func(record *transitionRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *transitionRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *transitionRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
