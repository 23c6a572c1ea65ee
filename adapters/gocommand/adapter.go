package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	ownership "github.com/goliatone/go-ownership"
	ownercommand "github.com/goliatone/go-ownership/command"
	"github.com/goliatone/go-ownership/core"
	ownerquery "github.com/goliatone/go-ownership/query"
)

// Bridge mounts an ownership facade on the go-command dispatcher. Every
// mounted handler is also recorded in the registry, so resolvers the host adds
// before Initialize see the ownership commands and queries.
type Bridge struct {
	registry      *command.Registry
	runnerOpts    []runner.Option
	subscriptions []commanddispatcher.Subscription
}

func NewBridge(registry *command.Registry, runnerOpts ...runner.Option) *Bridge {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Bridge{registry: registry, runnerOpts: runnerOpts}
}

func (b *Bridge) Registry() *command.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

// Mounted reports how many facade handlers are subscribed.
func (b *Bridge) Mounted() int {
	if b == nil {
		return 0
	}
	return len(b.subscriptions)
}

// Mount subscribes the facade's two commands and four queries. If any handler
// fails to mount, the ones already subscribed are removed again.
func (b *Bridge) Mount(facade *ownership.Facade) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if facade == nil {
		return fmt.Errorf("gocommand: ownership facade is required")
	}
	if len(b.subscriptions) > 0 {
		return fmt.Errorf("gocommand: ownership facade already mounted")
	}

	commands := facade.Commands()
	queries := facade.Queries()
	mounts := []func() error{
		func() error { return mountCommand[ownercommand.InitializeOwnerMessage](b, commands.Initialize) },
		func() error { return mountCommand[ownercommand.UpdateOwnerMessage](b, commands.Update) },
		func() error {
			return mountQuery[ownerquery.GetOwnershipMessage, core.OwnerResponse](b, queries.GetOwnership)
		},
		func() error { return mountQuery[ownerquery.GetSnapshotMessage, core.Snapshot](b, queries.GetSnapshot) },
		func() error {
			return mountQuery[ownerquery.CheckRoleMessage, ownerquery.RoleCheck](b, queries.CheckRole)
		},
		func() error {
			return mountQuery[ownerquery.ListTransitionsMessage, core.TransitionPage](b, queries.ListTransitions)
		},
	}
	for _, mount := range mounts {
		if err := mount(); err != nil {
			b.Unmount()
			return err
		}
	}
	return nil
}

// Unmount drops every dispatcher subscription created by Mount.
func (b *Bridge) Unmount() {
	if b == nil {
		return
	}
	for _, subscription := range b.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	b.subscriptions = nil
}

func mountCommand[T any](b *Bridge, cmd command.Commander[T]) error {
	if cmd == nil {
		return fmt.Errorf("gocommand: command handler is required")
	}
	if err := requireMessageType[T](); err != nil {
		return err
	}
	if err := b.registry.RegisterCommand(cmd); err != nil {
		return err
	}
	b.subscriptions = append(b.subscriptions, commanddispatcher.SubscribeCommand(cmd, b.runnerOpts...))
	return nil
}

func mountQuery[T any, R any](b *Bridge, qry command.Querier[T, R]) error {
	if qry == nil {
		return fmt.Errorf("gocommand: query handler is required")
	}
	if err := requireMessageType[T](); err != nil {
		return err
	}
	if err := b.registry.RegisterCommand(qry); err != nil {
		return err
	}
	b.subscriptions = append(b.subscriptions, commanddispatcher.SubscribeQuery(qry, b.runnerOpts...))
	return nil
}

// requireMessageType rejects message types that do not name themselves, since
// the dispatcher routes on Type().
func requireMessageType[T any]() error {
	var zero T
	msg, ok := any(zero).(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: %T must implement Type() string", zero)
	}
	if strings.TrimSpace(msg.Type()) == "" {
		return fmt.Errorf("gocommand: %T has an empty message type", zero)
	}
	return nil
}

// Dispatch sends msg to the subscribed command handler. The dispatcher runs
// the message's Validate first.
func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}
