// cmd/connector/app/options.go
package app

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tamzrod/battery-modbus-connector/internal/config"
	"github.com/tamzrod/battery-modbus-connector/internal/logging"
	"github.com/tamzrod/battery-modbus-connector/internal/registers"
)

// Options are the flags shared by every subcommand.
type Options struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
}

func NewDefaultOptions() *Options {
	return &Options{EnvFile: ".env"}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigPath, "config", "c", o.ConfigPath, "path to config.yaml (optional; environment variables override it)")
	fs.StringVar(&o.EnvFile, "env-file", o.EnvFile, "dotenv file loaded before the environment is read; missing file is ignored")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level override: debug, info, warn, error")
}

// scope selects how much of the config a command needs validated.
type scope int

const (
	scopeFull   scope = iota // device + sinks
	scopeDevice              // device only
	scopeQuery               // influx only
)

// load runs env file -> Load -> Validate -> Normalize and builds the logger.
func (o *Options) load(sc scope, tbl *registers.Table) (*config.Config, *zap.Logger, error) {
	if err := config.LoadEnvFile(o.EnvFile); err != nil {
		return nil, nil, err
	}

	c, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}

	switch sc {
	case scopeFull:
		err = config.Validate(c, tbl)
	case scopeDevice:
		err = config.ValidateDevice(c.Device)
	case scopeQuery:
		if c.Sinks.Influx == nil || c.Sinks.Influx.URL == "" || c.Sinks.Influx.Org == "" {
			err = fmt.Errorf("query api needs sinks.influx url and org (or %s, %s)", config.EnvInfluxHost, config.EnvInfluxOrg)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	config.Normalize(c)

	log, err := logging.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}
