package core

func IsOwner(state OwnerState, id Identity) bool {
	owner, ok := state.CurrentOwner()
	return ok && !id.IsZero() && owner == id
}

func IsProposed(state OwnerState, id Identity) bool {
	proposed, ok := state.ProposedOwner()
	return ok && !id.IsZero() && proposed == id
}

func IsEmergencyOwner(state OwnerState, id Identity) bool {
	emergencyOwner, ok := state.CurrentEmergencyOwner()
	return ok && !id.IsZero() && emergencyOwner == id
}

// AssertOwner is IsOwner returning a NotOwner error instead of false.
func AssertOwner(state OwnerState, caller Identity) error {
	if !IsOwner(state, caller) {
		return NotOwnerError()
	}
	return nil
}

func AssertProposed(state OwnerState, caller Identity) error {
	if !IsProposed(state, caller) {
		return NotProposedOwnerError()
	}
	return nil
}

func AssertEmergencyOwner(state OwnerState, caller Identity) error {
	if !IsEmergencyOwner(state, caller) {
		return NotEmergencyOwnerError()
	}
	return nil
}
