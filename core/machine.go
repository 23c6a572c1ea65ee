package core

// Machine is the ownership state machine. It performs no I/O: decisions are
// a switch over (state, event) plus identity comparisons against the state
// as loaded. Resolve runs only after the caller has been authorized.
type Machine struct {
	Resolve               AddressResolver
	EmergencyOwnerEnabled bool
}

func NewMachine(resolve AddressResolver, emergencyOwnerEnabled bool) Machine {
	return Machine{Resolve: resolve, EmergencyOwnerEnabled: emergencyOwnerEnabled}
}

// Initialize applies an initialization event. It is open to any caller but
// only legal against an uninitialized slot.
func (m Machine) Initialize(state OwnerState, init OwnerInit) (OwnerState, error) {
	if state.Kind != StateUninitialized {
		return state, StateTransitionError(state.Kind, string(init.Kind))
	}
	switch init.Kind {
	case InitSetInitialOwner:
		owner, err := m.resolve("owner", init.Owner)
		if err != nil {
			return state, err
		}
		return SetState(owner, ""), nil
	case InitAbolishOwnerRole:
		return Abolished(), nil
	default:
		return state, StateTransitionError(state.Kind, string(init.Kind))
	}
}

// Transition applies an update event on behalf of caller. Every pair not
// listed fails with a state transition error and the input state is
// returned untouched.
func (m Machine) Transition(state OwnerState, update OwnerUpdate, caller Identity) (OwnerState, error) {
	// Uninitialized and Abolished reject every event, extension or not.
	if state.Kind == StateUninitialized || state.Kind == StateAbolished {
		return state, StateTransitionError(state.Kind, string(update.Kind))
	}
	if update.Kind.IsEmergencyOwnerEvent() && !m.EmergencyOwnerEnabled {
		return state, EmergencyOwnerDisabledError(string(update.Kind))
	}

	switch state.Kind {
	case StateSet:
		switch update.Kind {
		case UpdateProposeNewOwner:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			proposed, err := m.resolve("proposed", update.Proposed)
			if err != nil {
				return state, err
			}
			return ProposedState(state.Owner, proposed, state.EmergencyOwner), nil
		case UpdateAbolishOwnerRole:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			return Abolished(), nil
		case UpdateSetEmergencyOwner:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			emergencyOwner, err := m.resolve("emergency_owner", update.EmergencyOwner)
			if err != nil {
				return state, err
			}
			return SetState(state.Owner, emergencyOwner), nil
		case UpdateClearEmergencyOwner:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			return SetState(state.Owner, ""), nil
		}
	case StateProposed:
		switch update.Kind {
		case UpdateAcceptProposed:
			if err := AssertProposed(state, caller); err != nil {
				return state, err
			}
			return SetState(state.Proposed, state.EmergencyOwner), nil
		case UpdateClearProposed:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			return SetState(state.Owner, state.EmergencyOwner), nil
		case UpdateAbolishOwnerRole:
			if err := AssertOwner(state, caller); err != nil {
				return state, err
			}
			return Abolished(), nil
		}
	}
	return state, StateTransitionError(state.Kind, string(update.Kind))
}

func (m Machine) resolve(field string, raw string) (Identity, error) {
	resolve := m.Resolve
	if resolve == nil {
		resolve = UncheckedResolver
	}
	identity, err := resolve(raw)
	if err != nil {
		return "", InvalidAddressError(field, err)
	}
	if identity.IsZero() {
		return "", InvalidAddressError(field, nil)
	}
	return identity, nil
}
