package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// fileConfig is the [database] and [cli] part of the TOML file. The
// [ownership] table is read by core.TOMLConfigLoader.
type fileConfig struct {
	Database databaseConfig `toml:"database"`
	CLI      cliConfig      `toml:"cli"`
}

type databaseConfig struct {
	Driver      string `toml:"driver"`
	DSN         string `toml:"dsn"`
	Debug       bool   `toml:"debug"`
	PingTimeout string `toml:"ping_timeout"`
	Cache       bool   `toml:"cache"`
}

type cliConfig struct {
	LogLevel string `toml:"log_level"`
	JSONLogs bool   `toml:"json_logs"`
}

func loadFileConfig(path string) (fileConfig, error) {
	cfg := fileConfig{}
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("ownerctl: read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c databaseConfig) normalized() (databaseConfig, error) {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite", driverSQLite:
		c.Driver = driverSQLite
	case "postgresql", "pg", driverPostgres:
		c.Driver = driverPostgres
	default:
		return c, fmt.Errorf("ownerctl: unsupported driver %q", c.Driver)
	}
	c.DSN = strings.TrimSpace(c.DSN)
	if c.DSN == "" {
		if c.Driver != driverSQLite {
			return c, fmt.Errorf("ownerctl: dsn is required for %s", c.Driver)
		}
		c.DSN = "file:ownership.db?_foreign_keys=on"
	}
	return c, nil
}

// persistenceConfig satisfies the go-persistence-bun client config.
type persistenceConfig struct {
	db databaseConfig
}

func (c persistenceConfig) GetDebug() bool { return c.db.Debug }

func (c persistenceConfig) GetDriver() string { return c.db.Driver }

func (c persistenceConfig) GetServer() string { return c.db.DSN }

func (c persistenceConfig) GetPingTimeout() time.Duration {
	if timeout, err := time.ParseDuration(strings.TrimSpace(c.db.PingTimeout)); err == nil && timeout > 0 {
		return timeout
	}
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string { return "ownerctl" }
