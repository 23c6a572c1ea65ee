package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	ownership "github.com/goliatone/go-ownership"
	ownergocommand "github.com/goliatone/go-ownership/adapters/gocommand"
	ownergologger "github.com/goliatone/go-ownership/adapters/gologger"
	ownerzerolog "github.com/goliatone/go-ownership/adapters/zerolog"
	ownercommand "github.com/goliatone/go-ownership/command"
	"github.com/goliatone/go-ownership/core"
	ownermigrations "github.com/goliatone/go-ownership/migrations"
	ownerquery "github.com/goliatone/go-ownership/query"
	sqlstore "github.com/goliatone/go-ownership/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const usage = `usage: ownerctl [flags] <command> [args]

commands:
  init <owner>                      set the initial owner
  init -abolish                     initialize with the owner role abolished
  propose <sender> <proposed>       propose a new owner
  accept <sender>                   accept the pending proposal
  clear-proposed <sender>           withdraw the pending proposal
  abolish <sender>                  abolish the owner role
  set-emergency <sender> <address>  set the emergency owner
  clear-emergency <sender>          clear the emergency owner
  query                             print the ownership projection
  check-role <role> <identity>      check owner, proposed or emergency_owner
  log [-page n] [-per-page n] [-sender s]
                                    list committed transitions
`

var errUsage = errors.New("ownerctl: invalid usage")

type globalFlags struct {
	configPath string
	driver     string
	dsn        string
	namespace  string
	emergency  bool
	cache      bool
	logLevel   string
	jsonLogs   bool
}

type app struct {
	service *ownership.Service
	facade  *ownership.Facade
	client  *persistence.Client
	bridge  *ownergocommand.Bridge
	logger  core.Logger
	stdout  io.Writer
}

func (a *app) Close() error {
	a.bridge.Unmount()
	return a.client.Close()
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	flags := flag.NewFlagSet("ownerctl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nflags:")
		flags.PrintDefaults()
	}

	var global globalFlags
	flags.StringVar(&global.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&global.driver, "driver", "", "database driver: sqlite3 or postgres")
	flags.StringVar(&global.dsn, "dsn", "", "database connection string")
	flags.StringVar(&global.namespace, "namespace", "", "ownership namespace key")
	flags.BoolVar(&global.emergency, "emergency", false, "enable the emergency owner extension")
	flags.BoolVar(&global.cache, "cache", false, "serve state reads through the repository cache")
	flags.StringVar(&global.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.BoolVar(&global.jsonLogs, "json-logs", false, "write JSON logs to stderr")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return errUsage
	}

	fileCfg, err := loadFileConfig(global.configPath)
	if err != nil {
		return err
	}
	dbCfg := fileCfg.Database
	if global.driver != "" {
		dbCfg.Driver = global.driver
	}
	if global.dsn != "" {
		dbCfg.DSN = global.dsn
	}
	if global.cache {
		dbCfg.Cache = true
	}
	dbCfg, err = dbCfg.normalized()
	if err != nil {
		return err
	}

	logger := newLogger(stderr, fileCfg.CLI, global)
	a, err := openApp(ctx, dbCfg, global, logger)
	if err != nil {
		return err
	}
	a.stdout = stdout
	defer func() { _ = a.Close() }()

	if err := a.dispatch(ctx, rest[0], rest[1:]); err != nil {
		a.logger.Debug("command failed", "command", rest[0], "error", err, "code", core.ErrorCode(err))
		return err
	}
	return nil
}

func newLogger(stderr io.Writer, cfg cliConfig, global globalFlags) *ownerzerolog.Logger {
	levelName := cfg.LogLevel
	if global.logLevel != "" {
		levelName = global.logLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if err != nil || levelName == "" {
		level = zerolog.WarnLevel
	}
	if cfg.JSONLogs || global.jsonLogs {
		return ownerzerolog.NewJSON(stderr, "ownerctl", level)
	}
	return ownerzerolog.NewConsole(stderr, "ownerctl", level)
}

func openApp(ctx context.Context, dbCfg databaseConfig, global globalFlags, logger *ownerzerolog.Logger) (*app, error) {
	client, err := openPersistence(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	factory, err := sqlstore.NewStoreFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	var store core.StateStore = factory.OwnerStateStore()
	if dbCfg.Cache {
		cacheService, cacheErr := repositorycache.NewCacheService(repositorycache.DefaultConfig())
		if cacheErr != nil {
			_ = client.Close()
			return nil, cacheErr
		}
		cached, cacheErr := factory.CachedOwnerStateStore(
			cacheService,
			sqlstore.WithCacheLogger(ownergologger.Named("ownerctl.cache", nil, logger)),
		)
		if cacheErr != nil {
			_ = client.Close()
			return nil, cacheErr
		}
		store = cached
	}

	runtimeCfg := ownership.Config{Namespace: strings.TrimSpace(global.namespace)}
	runtimeCfg.EmergencyOwner.Enabled = global.emergency
	opts := []ownership.Option{
		ownership.WithLogger(logger),
		ownership.WithLoggerProvider(ownerzerolog.NewProvider(logger)),
		ownership.WithStateStore(store),
		ownership.WithObservers(factory.TransitionLogStore()),
	}
	if global.configPath != "" {
		opts = append(opts, ownership.WithConfigProvider(core.NewCfgxConfigProvider(core.TOMLConfigLoader{
			Path:  global.configPath,
			Table: "ownership",
		})))
	}
	svc, err := ownership.NewService(runtimeCfg, opts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	facade, err := ownership.NewFacade(svc)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	bridge := ownergocommand.NewBridge(gocmd.NewRegistry())
	if err := bridge.Mount(facade); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &app{
		service: svc,
		facade:  facade,
		client:  client,
		bridge:  bridge,
		logger:  ownergologger.Named("ownerctl", nil, logger),
	}, nil
}

func openPersistence(ctx context.Context, dbCfg databaseConfig) (*persistence.Client, error) {
	sqlDB, err := sql.Open(dbCfg.Driver, dbCfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ownerctl: open %s: %w", dbCfg.Driver, err)
	}
	var dialect schema.Dialect
	switch dbCfg.Driver {
	case driverSQLite:
		sqlDB.SetMaxOpenConns(1)
		dialect = sqlitedialect.New()
	default:
		dialect = pgdialect.New()
	}

	client, err := persistence.New(persistenceConfig{db: dbCfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ownerctl: persistence client: %w", err)
	}
	if err := ownermigrations.Apply(ctx, client, dbCfg.Driver); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ownerctl: migrate: %w", err)
	}
	return client, nil
}

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "init":
		return a.runInit(ctx, args)
	case "propose":
		return a.runUpdate(ctx, args, 2, func(values []string) core.OwnerUpdate {
			return core.ProposeNewOwner(values[0])
		})
	case "accept":
		return a.runUpdate(ctx, args, 1, func([]string) core.OwnerUpdate { return core.AcceptProposed() })
	case "clear-proposed":
		return a.runUpdate(ctx, args, 1, func([]string) core.OwnerUpdate { return core.ClearProposed() })
	case "abolish":
		return a.runUpdate(ctx, args, 1, func([]string) core.OwnerUpdate { return core.AbolishOwnerRole() })
	case "set-emergency":
		return a.runUpdate(ctx, args, 2, func(values []string) core.OwnerUpdate {
			return core.SetEmergencyOwner(values[0])
		})
	case "clear-emergency":
		return a.runUpdate(ctx, args, 1, func([]string) core.OwnerUpdate { return core.ClearEmergencyOwner() })
	case "query":
		response, err := ownergocommand.Query[ownerquery.GetOwnershipMessage, core.OwnerResponse](ctx, ownerquery.GetOwnershipMessage{})
		if err != nil {
			return err
		}
		return a.print(response)
	case "check-role":
		return a.runCheckRole(ctx, args)
	case "log":
		return a.runLog(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (a *app) runInit(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	abolish := flags.Bool("abolish", false, "initialize with the owner role abolished")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var msg ownercommand.InitializeOwnerMessage
	switch {
	case *abolish && flags.NArg() == 0:
		msg.Init = core.AbolishAtInit()
	case !*abolish && flags.NArg() == 1:
		msg.Init = core.SetInitialOwner(flags.Arg(0))
	default:
		return fmt.Errorf("%w: init takes an owner or -abolish", errUsage)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	result := gocmd.NewResult[core.OwnerResponse]()
	if err := a.facade.Commands().Initialize.Execute(gocmd.ContextWithResult(ctx, result), msg); err != nil {
		return err
	}
	response, _ := result.Load()
	return a.print(response)
}

// runUpdate expects the sender followed by want-1 event arguments.
func (a *app) runUpdate(ctx context.Context, args []string, want int, build func([]string) core.OwnerUpdate) error {
	if len(args) != want {
		return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, want, len(args))
	}
	msg := ownercommand.UpdateOwnerMessage{
		Sender: args[0],
		Update: build(args[1:]),
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	result := gocmd.NewResult[core.UpdateResult]()
	if err := a.facade.Commands().Update.Execute(gocmd.ContextWithResult(ctx, result), msg); err != nil {
		return err
	}
	out, _ := result.Load()
	attributes := map[string]string{}
	for _, attribute := range out.Attributes {
		attributes[attribute.Key] = attribute.Value
	}
	return a.print(map[string]any{
		"response":   out.Response,
		"attributes": attributes,
	})
}

func (a *app) runLog(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	page := flags.Int("page", 1, "page number")
	perPage := flags.Int("per-page", 25, "entries per page")
	sender := flags.String("sender", "", "filter by sender")
	since := flags.Duration("since", 0, "only entries newer than this duration")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	filter := core.TransitionFilter{
		Namespace: a.service.Namespace(),
		Sender:    *sender,
		Page:      *page,
		PerPage:   *perPage,
	}
	if *since > 0 {
		from := time.Now().UTC().Add(-*since)
		filter.From = &from
	}
	msg := ownerquery.ListTransitionsMessage{Filter: filter}
	if err := msg.Validate(); err != nil {
		return err
	}
	transitions, err := ownergocommand.Query[ownerquery.ListTransitionsMessage, core.TransitionPage](ctx, msg)
	if err != nil {
		return err
	}
	return a.print(transitions)
}

func (a *app) runCheckRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: check-role takes a role and an identity", errUsage)
	}
	msg := ownerquery.CheckRoleMessage{Role: args[0], Identity: args[1]}
	if err := msg.Validate(); err != nil {
		return err
	}
	check, err := ownergocommand.Query[ownerquery.CheckRoleMessage, ownerquery.RoleCheck](ctx, msg)
	if err != nil {
		return err
	}
	return a.print(check)
}

func (a *app) print(value any) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
