package core

const (
	AttributeAction   = "action"
	AttributeOwner    = "owner"
	AttributeProposed = "proposed"
	AttributeSender   = "sender"

	ActionUpdateOwner = "update_owner"
	ActionInitOwner   = "initialize_owner"

	noneAttributeValue = "None"
)

// Project derives the read-only response for a state. emergencyOwnerEnabled
// controls whether the emergency_owner field is part of the response.
func Project(state OwnerState, emergencyOwnerEnabled bool) OwnerResponse {
	response := OwnerResponse{
		Initialized:           state.Kind != StateUninitialized,
		Abolished:             state.Kind == StateAbolished,
		emergencyOwnerEnabled: emergencyOwnerEnabled,
	}
	if owner, ok := state.CurrentOwner(); ok {
		response.Owner = identityPointer(owner)
	}
	if proposed, ok := state.ProposedOwner(); ok {
		response.Proposed = identityPointer(proposed)
	}
	if emergencyOwnerEnabled {
		if emergencyOwner, ok := state.CurrentEmergencyOwner(); ok {
			response.EmergencyOwner = identityPointer(emergencyOwner)
		}
	}
	return response
}

func updateAttributes(response OwnerResponse, sender Identity) []Attribute {
	return []Attribute{
		{Key: AttributeAction, Value: ActionUpdateOwner},
		{Key: AttributeOwner, Value: valueOrNone(response.Owner)},
		{Key: AttributeProposed, Value: valueOrNone(response.Proposed)},
		{Key: AttributeSender, Value: sender.String()},
	}
}

func identityPointer(id Identity) *string {
	value := id.String()
	return &value
}

func valueOrNone(value *string) string {
	if value == nil {
		return noneAttributeValue
	}
	return *value
}
