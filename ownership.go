package ownership

import "github.com/goliatone/go-ownership/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Identity = core.Identity

type OwnerState = core.OwnerState

type Snapshot = core.Snapshot

type OwnerInit = core.OwnerInit

type OwnerUpdate = core.OwnerUpdate

type OwnerResponse = core.OwnerResponse

type UpdateResult = core.UpdateResult

type StateStore = core.StateStore

type TransitionObserver = core.TransitionObserver

type TransitionRecord = core.TransitionRecord

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithStateStore       = core.WithStateStore
	WithAddressValidator = core.WithAddressValidator
	WithObservers        = core.WithObservers
	WithTracerProvider   = core.WithTracerProvider
	WithClock            = core.WithClock
)

var (
	SetInitialOwner     = core.SetInitialOwner
	AbolishAtInit       = core.AbolishAtInit
	ProposeNewOwner     = core.ProposeNewOwner
	ClearProposed       = core.ClearProposed
	AcceptProposed      = core.AcceptProposed
	AbolishOwnerRole    = core.AbolishOwnerRole
	SetEmergencyOwner   = core.SetEmergencyOwner
	ClearEmergencyOwner = core.ClearEmergencyOwner
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
