package ownership

import (
	"fmt"

	ownercommand "github.com/goliatone/go-ownership/command"
	"github.com/goliatone/go-ownership/core"
	ownerquery "github.com/goliatone/go-ownership/query"
)

type CommandQueryService interface {
	ownercommand.MutatingService
	ownerquery.OwnershipReader
	ownerquery.RoleReader
}

type Commands struct {
	Initialize *ownercommand.InitializeOwnerCommand
	Update     *ownercommand.UpdateOwnerCommand
}

type Queries struct {
	GetOwnership    *ownerquery.GetOwnershipQuery
	GetSnapshot     *ownerquery.GetSnapshotQuery
	CheckRole       *ownerquery.CheckRoleQuery
	ListTransitions *ownerquery.ListTransitionsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	transitionReader core.TransitionLogReader
}

func WithTransitionReader(reader core.TransitionLogReader) FacadeOption {
	return func(options *facadeOptions) {
		options.transitionReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("ownership: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.transitionReader
	if reader == nil {
		reader = resolveTransitionReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Initialize: ownercommand.NewInitializeOwnerCommand(service),
		Update:     ownercommand.NewUpdateOwnerCommand(service),
	}
	facade.queries = Queries{
		GetOwnership:    ownerquery.NewGetOwnershipQuery(service),
		GetSnapshot:     ownerquery.NewGetSnapshotQuery(service),
		CheckRole:       ownerquery.NewCheckRoleQuery(service),
		ListTransitions: ownerquery.NewListTransitionsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveTransitionReader looks for a transition log among the service's
// registered observers.
func resolveTransitionReader(service CommandQueryService) core.TransitionLogReader {
	if reader, ok := service.(core.TransitionLogReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	for _, observer := range provider.Dependencies().Observers {
		if reader, ok := observer.(core.TransitionLogReader); ok {
			return reader
		}
	}
	return nil
}
