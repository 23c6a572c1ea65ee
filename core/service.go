package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/goliatone/go-ownership/core"

// Service owns one namespace slot of a StateStore and is the only component
// that writes it.
type Service struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	stateStore       StateStore
	addressValidator AddressValidator
	observers        *ObserverCoordinator
	tracer           trace.Tracer
	machine          Machine
	clock            func() time.Time
}

type ServiceDependencies struct {
	Logger           Logger
	LoggerProvider   LoggerProvider
	MetricsRecorder  MetricsRecorder
	ErrorMapper      ErrorMapper
	ConfigProvider   ConfigProvider
	OptionsResolver  OptionsResolver
	StateStore       StateStore
	AddressValidator AddressValidator
	Observers        []TransitionObserver
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(DefaultServiceName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(DefaultServiceName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.stateStore == nil {
		builder.stateStore = NewMemoryStateStore()
	}
	if builder.clock == nil {
		builder.clock = func() time.Time { return time.Now().UTC() }
	}
	if builder.tracerProvider == nil {
		builder.tracerProvider = noop.NewTracerProvider()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.addressValidator == nil {
		builder.addressValidator = NewBasicAddressValidator(finalConfig.Address)
	}

	return &Service{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		metricsRecorder:  builder.metricsRecorder,
		errorMapper:      builder.errorMapper,
		configProvider:   builder.configProvider,
		optionsResolver:  builder.optionsResolver,
		stateStore:       builder.stateStore,
		addressValidator: builder.addressValidator,
		observers:        NewObserverCoordinator(builder.observers...),
		tracer:           builder.tracerProvider.Tracer(tracerName),
		machine:          NewMachine(builder.addressValidator.Resolve, finalConfig.EmergencyOwner.Enabled),
		clock:            builder.clock,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Namespace() string {
	if s == nil {
		return ""
	}
	return s.config.Namespace
}

func (s *Service) EmergencyOwnerEnabled() bool {
	return s != nil && s.config.EmergencyOwner.Enabled
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:           s.logger,
		LoggerProvider:   s.loggerProvider,
		MetricsRecorder:  s.metricsRecorder,
		ErrorMapper:      s.errorMapper,
		ConfigProvider:   s.configProvider,
		OptionsResolver:  s.optionsResolver,
		StateStore:       s.stateStore,
		AddressValidator: s.addressValidator,
		Observers:        s.observers.list(),
	}
}

// RegisterObserver adds a post-commit observer after construction.
func (s *Service) RegisterObserver(observer TransitionObserver) {
	if s == nil {
		return
	}
	s.observers.Register(observer)
}

// Initialize applies an initialization event. It succeeds only while the
// slot is uninitialized.
func (s *Service) Initialize(ctx context.Context, init OwnerInit) (response OwnerResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"namespace": s.Namespace(),
		"event":     string(init.Kind),
	}
	ctx, span := s.startSpan(ctx, "ownership.initialize", fields)
	defer func() {
		s.endSpan(span, fields, err)
		s.observeOperation(ctx, startedAt, "initialize", err, fields)
	}()

	if err = s.ready(); err != nil {
		return OwnerResponse{}, err
	}

	before, after, err := s.apply(ctx, func(state OwnerState) (OwnerState, error) {
		return s.machine.Initialize(state, init)
	})
	fields["from_state"] = string(before.State.Kind)
	if err != nil {
		err = s.mapError(err)
		return OwnerResponse{}, err
	}
	fields["to_state"] = string(after.State.Kind)
	fields["version"] = after.Version

	response = Project(after.State, s.EmergencyOwnerEnabled())
	s.notify(ctx, s.transitionRecord(ActionInitOwner, string(init.Kind), "", before, after))
	return response, nil
}

// Update applies a post-initialization event on behalf of sender and returns
// the new projection plus the update attributes.
func (s *Service) Update(ctx context.Context, sender Identity, update OwnerUpdate) (result UpdateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"namespace": s.Namespace(),
		"event":     string(update.Kind),
		"sender":    sender.String(),
	}
	ctx, span := s.startSpan(ctx, "ownership.update", fields)
	defer func() {
		s.endSpan(span, fields, err)
		s.observeOperation(ctx, startedAt, "update", err, fields)
	}()

	if err = s.ready(); err != nil {
		return UpdateResult{}, err
	}

	before, after, err := s.apply(ctx, func(state OwnerState) (OwnerState, error) {
		return s.machine.Transition(state, update, sender)
	})
	fields["from_state"] = string(before.State.Kind)
	if err != nil {
		err = s.mapError(err)
		return UpdateResult{}, err
	}
	fields["to_state"] = string(after.State.Kind)
	fields["version"] = after.Version

	response := Project(after.State, s.EmergencyOwnerEnabled())
	result = UpdateResult{
		Response:   response,
		Attributes: updateAttributes(response, sender),
	}
	s.notify(ctx, s.transitionRecord(ActionUpdateOwner, string(update.Kind), sender, before, after))
	return result, nil
}

// Snapshot returns the current state and its version. An empty slot reads as
// uninitialized at version zero.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	snapshot, err := s.load(ctx, s.stateStore)
	if err != nil {
		return Snapshot{}, s.mapError(err)
	}
	return snapshot, nil
}

func (s *Service) State(ctx context.Context) (OwnerState, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return OwnerState{}, err
	}
	return snapshot.State, nil
}

func (s *Service) Query(ctx context.Context) (OwnerResponse, error) {
	state, err := s.State(ctx)
	if err != nil {
		return OwnerResponse{}, err
	}
	return Project(state, s.EmergencyOwnerEnabled()), nil
}

func (s *Service) Current(ctx context.Context) (Identity, bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return "", false, err
	}
	owner, ok := state.CurrentOwner()
	return owner, ok, nil
}

func (s *Service) Proposed(ctx context.Context) (Identity, bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return "", false, err
	}
	proposed, ok := state.ProposedOwner()
	return proposed, ok, nil
}

func (s *Service) EmergencyOwner(ctx context.Context) (Identity, bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return "", false, err
	}
	emergencyOwner, ok := state.CurrentEmergencyOwner()
	return emergencyOwner, ok, nil
}

func (s *Service) IsOwner(ctx context.Context, id Identity) (bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return IsOwner(state, id), nil
}

func (s *Service) IsProposed(ctx context.Context, id Identity) (bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return IsProposed(state, id), nil
}

func (s *Service) IsEmergencyOwner(ctx context.Context, id Identity) (bool, error) {
	state, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return IsEmergencyOwner(state, id), nil
}

func (s *Service) AssertOwner(ctx context.Context, id Identity) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	return s.mapError(AssertOwner(state, id))
}

func (s *Service) AssertProposed(ctx context.Context, id Identity) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	return s.mapError(AssertProposed(state, id))
}

func (s *Service) AssertEmergencyOwner(ctx context.Context, id Identity) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	return s.mapError(AssertEmergencyOwner(state, id))
}

// apply runs load, decide and save as one unit. When the store implements
// Transactor the sequence runs inside its transaction; decide errors abort
// without a write.
func (s *Service) apply(
	ctx context.Context,
	decide func(state OwnerState) (OwnerState, error),
) (before Snapshot, after Snapshot, err error) {
	before = Snapshot{State: Uninitialized()}
	run := func(ctx context.Context, store StateStore) error {
		loaded, loadErr := s.load(ctx, store)
		if loadErr != nil {
			return loadErr
		}
		before = loaded
		next, decideErr := decide(loaded.State)
		if decideErr != nil {
			return decideErr
		}
		saved, saveErr := store.Save(ctx, s.config.Namespace, next, loaded.Version)
		if saveErr != nil {
			return StorageError(saveErr)
		}
		after = saved
		return nil
	}

	if transactor, ok := s.stateStore.(Transactor); ok {
		err = StorageError(transactor.RunInTx(ctx, run))
	} else {
		err = run(ctx, s.stateStore)
	}
	if err != nil {
		return before, Snapshot{}, err
	}
	return before, after, nil
}

func (s *Service) load(ctx context.Context, store StateStore) (Snapshot, error) {
	snapshot, found, err := store.Load(ctx, s.config.Namespace)
	if err != nil {
		return Snapshot{}, StorageError(err)
	}
	if !found {
		return Snapshot{State: Uninitialized()}, nil
	}
	if err := validatePersistable(snapshot.State); err != nil {
		return Snapshot{}, StorageError(err)
	}
	return snapshot, nil
}

func (s *Service) ready() error {
	if s == nil || s.stateStore == nil {
		return dependencyError("ownership service is not configured with a state store")
	}
	return nil
}

func (s *Service) transitionRecord(action, event string, sender Identity, before, after Snapshot) TransitionRecord {
	record := TransitionRecord{
		ID:        uuid.NewString(),
		Namespace: s.config.Namespace,
		Action:    action,
		Event:     event,
		From:      before.State.Kind,
		To:        after.State.Kind,
		Sender:    sender,
		Version:   after.Version,
		CreatedAt: s.clock(),
	}
	if owner, ok := after.State.CurrentOwner(); ok {
		record.Owner = owner
	}
	if proposed, ok := after.State.ProposedOwner(); ok {
		record.Proposed = proposed
	}
	if emergencyOwner, ok := after.State.CurrentEmergencyOwner(); ok {
		record.EmergencyOwner = emergencyOwner
	}
	return record
}

func (s *Service) notify(ctx context.Context, record TransitionRecord) {
	if err := s.observers.Notify(ctx, record); err != nil {
		s.logError(ctx, "transition observer failed", map[string]any{
			"namespace": record.Namespace,
			"action":    record.Action,
			"event":     record.Event,
			"error":     err.Error(),
		})
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// SenderIdentity trims raw caller input into an Identity. Callers arrive from
// the host already authenticated, so no address rules apply.
func SenderIdentity(sender string) Identity {
	return Identity(strings.TrimSpace(sender))
}
