package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ownership/core"
)

type MutatingService interface {
	Initialize(ctx context.Context, init core.OwnerInit) (core.OwnerResponse, error)
	Update(ctx context.Context, sender core.Identity, update core.OwnerUpdate) (core.UpdateResult, error)
}

type InitializeOwnerCommand struct {
	service MutatingService
}

func NewInitializeOwnerCommand(service MutatingService) *InitializeOwnerCommand {
	return &InitializeOwnerCommand{service: service}
}

func (c *InitializeOwnerCommand) Execute(ctx context.Context, msg InitializeOwnerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ownership service is required")
	}
	out, err := c.service.Initialize(ctx, msg.Init)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateOwnerCommand struct {
	service MutatingService
}

func NewUpdateOwnerCommand(service MutatingService) *UpdateOwnerCommand {
	return &UpdateOwnerCommand{service: service}
}

func (c *UpdateOwnerCommand) Execute(ctx context.Context, msg UpdateOwnerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ownership service is required")
	}
	out, err := c.service.Update(ctx, core.SenderIdentity(msg.Sender), msg.Update)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
