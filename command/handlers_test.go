package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ownership/core"
)

type stubMutatingService struct {
	initializeFn func(ctx context.Context, init core.OwnerInit) (core.OwnerResponse, error)
	updateFn     func(ctx context.Context, sender core.Identity, update core.OwnerUpdate) (core.UpdateResult, error)
}

func (s stubMutatingService) Initialize(ctx context.Context, init core.OwnerInit) (core.OwnerResponse, error) {
	if s.initializeFn == nil {
		return core.OwnerResponse{}, nil
	}
	return s.initializeFn(ctx, init)
}

func (s stubMutatingService) Update(ctx context.Context, sender core.Identity, update core.OwnerUpdate) (core.UpdateResult, error) {
	if s.updateFn == nil {
		return core.UpdateResult{}, nil
	}
	return s.updateFn(ctx, sender, update)
}

func TestInitializeOwnerCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	owner := "alice"
	expected := core.OwnerResponse{Owner: &owner, Initialized: true}
	called := false

	svc := stubMutatingService{
		initializeFn: func(_ context.Context, init core.OwnerInit) (core.OwnerResponse, error) {
			called = true
			if init.Kind != core.InitSetInitialOwner || init.Owner != "alice" {
				t.Fatalf("unexpected init payload: %#v", init)
			}
			return expected, nil
		},
	}

	cmd := NewInitializeOwnerCommand(svc)
	collector := gocmd.NewResult[core.OwnerResponse]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, InitializeOwnerMessage{Init: core.SetInitialOwner("alice")}); err != nil {
		t.Fatalf("execute initialize: %v", err)
	}
	if !called {
		t.Fatalf("expected initialize service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Owner == nil || *result.Owner != "alice" || !result.Initialized {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestUpdateOwnerCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	svc := stubMutatingService{
		updateFn: func(_ context.Context, sender core.Identity, update core.OwnerUpdate) (core.UpdateResult, error) {
			if sender != "alice" {
				t.Fatalf("expected trimmed sender alice, got %q", sender)
			}
			if update.Kind != core.UpdateProposeNewOwner || update.Proposed != "bob" {
				t.Fatalf("unexpected update payload: %#v", update)
			}
			return core.UpdateResult{Attributes: []core.Attribute{{Key: core.AttributeSender, Value: sender.String()}}}, nil
		},
	}

	cmd := NewUpdateOwnerCommand(svc)
	collector := gocmd.NewResult[core.UpdateResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, UpdateOwnerMessage{Sender: " alice ", Update: core.ProposeNewOwner("bob")})
	if err != nil {
		t.Fatalf("execute update: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if value, _ := result.Attribute(core.AttributeSender); value != "alice" {
		t.Fatalf("unexpected stored result: %#v", result)
	}
}

func TestUpdateOwnerCommand_PropagatesServiceError(t *testing.T) {
	svc := stubMutatingService{
		updateFn: func(context.Context, core.Identity, core.OwnerUpdate) (core.UpdateResult, error) {
			return core.UpdateResult{}, core.NotOwnerError()
		},
	}
	collector := gocmd.NewResult[core.UpdateResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := NewUpdateOwnerCommand(svc).Execute(ctx, UpdateOwnerMessage{Sender: "mallory", Update: core.AbolishOwnerRole()})
	if !core.IsErrorCode(err, core.OwnerErrorNotOwner) {
		t.Fatalf("expected not owner error, got %v", err)
	}
	if _, ok := collector.Load(); ok {
		t.Fatalf("expected no result on failure")
	}
}

func TestCommandsAgainstService(t *testing.T) {
	svc, err := core.NewService(core.DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if err := NewInitializeOwnerCommand(svc).Execute(ctx, InitializeOwnerMessage{Init: core.SetInitialOwner("alice")}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	update := NewUpdateOwnerCommand(svc)
	if err := update.Execute(ctx, UpdateOwnerMessage{Sender: "alice", Update: core.ProposeNewOwner("bob")}); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if err := update.Execute(ctx, UpdateOwnerMessage{Sender: "bob", Update: core.AcceptProposed()}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	owner, _, err := svc.Current(ctx)
	if err != nil || owner != "bob" {
		t.Fatalf("expected owner bob, got %q err=%v", owner, err)
	}
	err = update.Execute(ctx, UpdateOwnerMessage{Sender: "alice", Update: core.AbolishOwnerRole()})
	if !errors.Is(err, core.ErrNotOwner) {
		t.Fatalf("expected previous owner to be rejected, got %v", err)
	}
}
