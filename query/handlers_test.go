package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-ownership/core"
)

type stubTransitionReader struct {
	filter core.TransitionFilter
	page   core.TransitionPage
}

func (s *stubTransitionReader) ListTransitions(_ context.Context, filter core.TransitionFilter) (core.TransitionPage, error) {
	s.filter = filter
	return s.page, nil
}

func newEmergencyService(t *testing.T) *core.Service {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.EmergencyOwner.Enabled = true
	svc, err := core.NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetOwnershipQuery(t *testing.T) {
	ctx := context.Background()
	svc := newEmergencyService(t)
	q := NewGetOwnershipQuery(svc)

	response, err := q.Query(ctx, GetOwnershipMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if response.Initialized || response.Owner != nil {
		t.Fatalf("expected uninitialized response, got %+v", response)
	}

	if _, err := svc.Initialize(ctx, core.SetInitialOwner("alice")); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	response, err = q.Query(ctx, GetOwnershipMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if response.Owner == nil || *response.Owner != "alice" || !response.Initialized {
		t.Fatalf("unexpected response %+v", response)
	}
	if !response.EmergencyOwnerEnabled() {
		t.Fatalf("expected emergency owner field to be enabled")
	}

	snapshot, err := NewGetSnapshotQuery(svc).Query(ctx, GetSnapshotMessage{})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Version != 1 || snapshot.State.Kind != core.StateSet {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestCheckRoleQuery(t *testing.T) {
	ctx := context.Background()
	svc := newEmergencyService(t)
	if _, err := svc.Initialize(ctx, core.SetInitialOwner("alice")); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, step := range []core.OwnerUpdate{core.SetEmergencyOwner("carol"), core.ProposeNewOwner("bob")} {
		if _, err := svc.Update(ctx, "alice", step); err != nil {
			t.Fatalf("%s: %v", step.Kind, err)
		}
	}

	q := NewCheckRoleQuery(svc)
	cases := []struct {
		role     string
		identity string
		holds    bool
	}{
		{"owner", "alice", true},
		{"owner", "bob", false},
		{" Proposed ", "bob", true},
		{"emergency_owner", "carol", true},
		{"emergency_owner", "alice", false},
	}
	for _, tc := range cases {
		check, err := q.Query(ctx, CheckRoleMessage{Role: tc.role, Identity: tc.identity})
		if err != nil {
			t.Fatalf("check %s/%s: %v", tc.role, tc.identity, err)
		}
		if check.Holds != tc.holds {
			t.Fatalf("check %s/%s: expected %v, got %v", tc.role, tc.identity, tc.holds, check.Holds)
		}
		if check.Role != normalizeRole(tc.role) || check.Identity != tc.identity {
			t.Fatalf("unexpected check echo %+v", check)
		}
	}

	if _, err := q.Query(ctx, CheckRoleMessage{Role: "admin", Identity: "alice"}); !core.IsErrorCode(err, core.OwnerErrorBadInput) {
		t.Fatalf("expected invalid role to fail validation, got %v", err)
	}
}

func TestListTransitionsQueryDelegates(t *testing.T) {
	reader := &stubTransitionReader{page: core.TransitionPage{Total: 3, Page: 1, PerPage: 2, HasNext: true}}
	q := NewListTransitionsQuery(reader)
	page, err := q.Query(context.Background(), ListTransitionsMessage{Filter: core.TransitionFilter{Namespace: "owner", PerPage: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if reader.filter.Namespace != "owner" || reader.filter.PerPage != 2 {
		t.Fatalf("expected filter to be forwarded, got %+v", reader.filter)
	}
	if page.Total != 3 || !page.HasNext {
		t.Fatalf("unexpected page %+v", page)
	}
}
