package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig    Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	stateStore       StateStore
	addressValidator AddressValidator
	observers        []TransitionObserver
	tracerProvider   trace.TracerProvider
	clock            func() time.Time
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithStateStore(store StateStore) Option {
	return func(b *serviceBuilder) {
		b.stateStore = store
	}
}

func WithAddressValidator(validator AddressValidator) Option {
	return func(b *serviceBuilder) {
		b.addressValidator = validator
	}
}

func WithObservers(observers ...TransitionObserver) Option {
	return func(b *serviceBuilder) {
		for _, observer := range observers {
			if observer == nil {
				continue
			}
			b.observers = append(b.observers, observer)
		}
	}
}

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(b *serviceBuilder) {
		b.tracerProvider = provider
	}
}

func WithClock(clock func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve(DefaultServiceName, nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		tracerProvider:  otel.GetTracerProvider(),
		clock:           func() time.Time { return time.Now().UTC() },
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return ownerErrorMapper(err)
}

// StaticConfigLoader serves a fixed raw configuration map.
type StaticConfigLoader struct {
	Values map[string]any
}

func (l StaticConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// TOMLConfigLoader reads the raw configuration map from a TOML file. Keys are
// the koanf names of Config, optionally nested under Table.
type TOMLConfigLoader struct {
	Path  string
	Table string
}

func (l TOMLConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return map[string]any{}, nil
	}
	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("core: load toml config %q: %w", path, err)
	}
	table := strings.TrimSpace(l.Table)
	if table == "" {
		return raw, nil
	}
	section, ok := raw[table]
	if !ok {
		return map[string]any{}, nil
	}
	values, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("core: toml table %q is not a table", table)
	}
	return values, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.Namespace) != "" {
		layer["namespace"] = cfg.Namespace
	}
	if includeZero || cfg.EmergencyOwner.Enabled {
		layer["emergency_owner"] = map[string]any{
			"enabled": cfg.EmergencyOwner.Enabled,
		}
	}

	address := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Address.Prefix) != "" {
		address["prefix"] = cfg.Address.Prefix
	}
	if includeZero || cfg.Address.MinLength > 0 {
		address["min_length"] = cfg.Address.MinLength
	}
	if includeZero || cfg.Address.MaxLength > 0 {
		address["max_length"] = cfg.Address.MaxLength
	}
	if includeZero || cfg.Address.Normalize {
		address["normalize"] = cfg.Address.Normalize
	}
	if len(address) > 0 {
		layer["address"] = address
	}
	return layer
}
