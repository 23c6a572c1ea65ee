package core

import (
	"errors"
	"fmt"
	"testing"
)

const (
	alice   = Identity("alice")
	bob     = Identity("bob")
	carol   = Identity("carol")
	mallory = Identity("mallory")
)

func allUpdates() []OwnerUpdate {
	return []OwnerUpdate{
		ProposeNewOwner("bob"),
		ClearProposed(),
		AcceptProposed(),
		AbolishOwnerRole(),
		SetEmergencyOwner("carol"),
		ClearEmergencyOwner(),
	}
}

func TestMachineInitialize(t *testing.T) {
	machine := NewMachine(UncheckedResolver, true)

	next, err := machine.Initialize(Uninitialized(), SetInitialOwner("alice"))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if next != SetState(alice, "") {
		t.Fatalf("expected set(alice), got %+v", next)
	}

	next, err = machine.Initialize(Uninitialized(), AbolishAtInit())
	if err != nil {
		t.Fatalf("abolish at init: %v", err)
	}
	if next.Kind != StateAbolished {
		t.Fatalf("expected abolished, got %s", next.Kind)
	}
}

func TestMachineInitializeRejectsInitializedStates(t *testing.T) {
	machine := NewMachine(UncheckedResolver, true)
	states := []OwnerState{
		SetState(alice, ""),
		SetState(alice, carol),
		ProposedState(alice, bob, ""),
		Abolished(),
	}
	for _, state := range states {
		for _, init := range []OwnerInit{SetInitialOwner("mallory"), AbolishAtInit()} {
			t.Run(fmt.Sprintf("%s/%s", state.Kind, init.Kind), func(t *testing.T) {
				next, err := machine.Initialize(state, init)
				assertErrorCode(t, err, OwnerErrorStateTransition)
				if next != state {
					t.Fatalf("expected unchanged state, got %+v", next)
				}
			})
		}
	}
}

func TestMachineInitializeRejectsBadAddress(t *testing.T) {
	machine := NewMachine(NewBasicAddressValidator(AddressConfig{MinLength: 3}).Resolve, false)
	_, err := machine.Initialize(Uninitialized(), SetInitialOwner("a b"))
	assertErrorCode(t, err, OwnerErrorBadInput)
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestMachineTransitionTable(t *testing.T) {
	machine := NewMachine(UncheckedResolver, true)
	cases := []struct {
		name   string
		state  OwnerState
		update OwnerUpdate
		caller Identity
		want   OwnerState
	}{
		{"set propose", SetState(alice, carol), ProposeNewOwner("bob"), alice, ProposedState(alice, bob, carol)},
		{"set abolish", SetState(alice, carol), AbolishOwnerRole(), alice, Abolished()},
		{"set emergency", SetState(alice, ""), SetEmergencyOwner("carol"), alice, SetState(alice, carol)},
		{"replace emergency", SetState(alice, carol), SetEmergencyOwner("bob"), alice, SetState(alice, bob)},
		{"clear emergency", SetState(alice, carol), ClearEmergencyOwner(), alice, SetState(alice, "")},
		{"proposed accept", ProposedState(alice, bob, carol), AcceptProposed(), bob, SetState(bob, carol)},
		{"proposed clear", ProposedState(alice, bob, carol), ClearProposed(), alice, SetState(alice, carol)},
		{"proposed abolish", ProposedState(alice, bob, carol), AbolishOwnerRole(), alice, Abolished()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := machine.Transition(tc.state, tc.update, tc.caller)
			if err != nil {
				t.Fatalf("transition: %v", err)
			}
			if next != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, next)
			}
		})
	}
}

func TestMachineTransitionRejectsUnlistedPairs(t *testing.T) {
	machine := NewMachine(UncheckedResolver, true)
	cases := []struct {
		state  OwnerState
		update OwnerUpdate
		caller Identity
	}{
		{SetState(alice, ""), AcceptProposed(), alice},
		{SetState(alice, ""), ClearProposed(), alice},
		{ProposedState(alice, bob, ""), ProposeNewOwner("carol"), alice},
		{ProposedState(alice, bob, ""), SetEmergencyOwner("carol"), alice},
		{ProposedState(alice, bob, ""), ClearEmergencyOwner(), alice},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.state.Kind, tc.update.Kind), func(t *testing.T) {
			next, err := machine.Transition(tc.state, tc.update, tc.caller)
			assertErrorCode(t, err, OwnerErrorStateTransition)
			if next != tc.state {
				t.Fatalf("expected unchanged state, got %+v", next)
			}
		})
	}
}

func TestMachineUninitializedAndAbolishedRejectEveryUpdate(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		machine := NewMachine(UncheckedResolver, enabled)
		for _, state := range []OwnerState{Uninitialized(), Abolished()} {
			for _, update := range allUpdates() {
				for _, caller := range []Identity{alice, bob, carol, mallory, ""} {
					next, err := machine.Transition(state, update, caller)
					if !IsErrorCode(err, OwnerErrorStateTransition) {
						t.Fatalf("emergency=%t %s/%s by %q: expected state transition error, got %v", enabled, state.Kind, update.Kind, caller, err)
					}
					if next != state {
						t.Fatalf("emergency=%t %s/%s: expected unchanged state, got %+v", enabled, state.Kind, update.Kind, next)
					}
				}
			}
		}
	}
}

func TestMachineOwnerGatedEventsRejectNonOwner(t *testing.T) {
	machine := NewMachine(UncheckedResolver, true)
	cases := []struct {
		state  OwnerState
		update OwnerUpdate
	}{
		{SetState(alice, carol), ProposeNewOwner("mallory")},
		{SetState(alice, carol), AbolishOwnerRole()},
		{SetState(alice, carol), SetEmergencyOwner("mallory")},
		{SetState(alice, carol), ClearEmergencyOwner()},
		{ProposedState(alice, bob, carol), ClearProposed()},
		{ProposedState(alice, bob, carol), AbolishOwnerRole()},
	}
	for _, tc := range cases {
		for _, caller := range []Identity{bob, carol, mallory, ""} {
			next, err := machine.Transition(tc.state, tc.update, caller)
			assertErrorCode(t, err, OwnerErrorNotOwner)
			if !errors.Is(err, ErrNotOwner) {
				t.Fatalf("expected ErrNotOwner, got %v", err)
			}
			if next != tc.state {
				t.Fatalf("expected unchanged state, got %+v", next)
			}
		}
	}
}

func TestMachineAcceptRequiresProposedOwner(t *testing.T) {
	machine := NewMachine(UncheckedResolver, false)
	state := ProposedState(alice, bob, "")
	for _, caller := range []Identity{alice, mallory, ""} {
		next, err := machine.Transition(state, AcceptProposed(), caller)
		assertErrorCode(t, err, OwnerErrorNotProposedOwner)
		if next != state {
			t.Fatalf("expected unchanged state, got %+v", next)
		}
	}
}

func TestMachineAuthorizesBeforeResolvingAddress(t *testing.T) {
	resolved := 0
	resolver := func(raw string) (Identity, error) {
		resolved++
		return "", fmt.Errorf("bad address %q", raw)
	}
	machine := NewMachine(resolver, true)

	_, err := machine.Transition(SetState(alice, ""), ProposeNewOwner("not valid"), mallory)
	assertErrorCode(t, err, OwnerErrorNotOwner)
	if resolved != 0 {
		t.Fatalf("expected resolver not to run for unauthorized caller, ran %d times", resolved)
	}

	_, err = machine.Transition(SetState(alice, ""), ProposeNewOwner("not valid"), alice)
	assertErrorCode(t, err, OwnerErrorBadInput)
	if resolved != 1 {
		t.Fatalf("expected resolver to run once, ran %d times", resolved)
	}
}

func TestMachineEmergencyEventsRequireExtension(t *testing.T) {
	machine := NewMachine(UncheckedResolver, false)
	for _, update := range []OwnerUpdate{SetEmergencyOwner("carol"), ClearEmergencyOwner()} {
		next, err := machine.Transition(SetState(alice, ""), update, alice)
		assertErrorCode(t, err, OwnerErrorEmergencyOwnerDisabled)
		if next != SetState(alice, "") {
			t.Fatalf("expected unchanged state, got %+v", next)
		}
	}

	next, err := machine.Transition(ProposedState(alice, bob, ""), AcceptProposed(), bob)
	if err != nil {
		t.Fatalf("accept without extension: %v", err)
	}
	if next != SetState(bob, "") {
		t.Fatalf("expected set(bob), got %+v", next)
	}
}

func TestMachineProposalIsNotResurrected(t *testing.T) {
	machine := NewMachine(UncheckedResolver, false)
	state, err := machine.Transition(SetState(alice, ""), ProposeNewOwner("bob"), alice)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	state, err = machine.Transition(state, ClearProposed(), alice)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := state.ProposedOwner(); ok {
		t.Fatalf("expected proposal to be cleared")
	}
	_, err = machine.Transition(state, AcceptProposed(), bob)
	assertErrorCode(t, err, OwnerErrorStateTransition)
}
