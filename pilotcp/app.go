package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/c2fo/pilot/client"
	"github.com/c2fo/pilot/config"
	"github.com/c2fo/pilot/logging"
	"github.com/c2fo/pilot/transfer"
	"github.com/c2fo/pilot/utils"
)

// Flags holds the global options shared by every subcommand.
type Flags struct {
	ConfigPath string
	Username   string
	Password   string
	LogLevel   string
	LogFile    string
	Trace      bool
}

type app struct {
	flags  Flags
	cfg    config.Config
	logger zerolog.Logger
	closer func()
}

func newApp() *cli.Command {
	a := &app{closer: func() {}}

	cmd := &cli.Command{
		Name:      "pilotcp",
		Usage:     "Copies files into and out of PILOT projects, even from supported remote systems",
		UsageText: "pilotcp [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PILOT_CONFIG"),
				Destination: &a.flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "platform username",
				Sources:     cli.EnvVars("PILOT_USERNAME"),
				Destination: &a.flags.Username,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "platform password",
				Sources:     cli.EnvVars("PILOT_PASSWORD"),
				Destination: &a.flags.Password,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error), overrides log_level",
				Destination: &a.flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file, overrides log_file (defaults to stdout)",
				Destination: &a.flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "trace",
				Usage:       "log every request and response",
				Destination: &a.flags.Trace,
			},
		},
		Before: a.before,
		After: func(ctx context.Context, c *cli.Command) error {
			a.closer()
			return nil
		},
	}

	for _, register := range []func(*cli.Command) *cli.Command{
		newUploadCmd(a).Register,
		newDownloadCmd(a).Register,
		newCreateDatasetCmd(a).Register,
	} {
		cmd = register(cmd)
	}
	return cmd
}

func (a *app) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	cfg, err := config.Load(a.flags.ConfigPath)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level, file := cfg.LogLevel, cfg.LogFile
	if a.flags.LogLevel != "" {
		level = a.flags.LogLevel
	}
	if a.flags.LogFile != "" {
		file = a.flags.LogFile
	}
	logger, closer, err := logging.New(level, file)
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = logger
	a.closer = closer

	transfer.RegisterStorage(cfg.Storage)
	return ctx, nil
}

// session logs in with the global credentials.
func (a *app) session(ctx context.Context) (*client.Client, error) {
	if a.flags.Username == "" || a.flags.Password == "" {
		return nil, errors.New("--username and --password (or PILOT_USERNAME and PILOT_PASSWORD) are required")
	}
	return client.New(ctx,
		client.WithConfig(a.cfg),
		client.WithPassword(a.flags.Username, a.flags.Password),
		client.WithLogger(a.logger),
		client.WithTrace(a.flags.Trace),
	)
}

// fileURI turns a local path or URI into a vfs file URI.
func fileURI(p string) (string, error) {
	if p == "" {
		return "", errors.New("path must not be empty")
	}
	return utils.PathToURI(p)
}

// locationURI turns a local directory or URI into a vfs location URI.
func locationURI(p string) (string, error) {
	uri, err := utils.PathToURI(p)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri, nil
}
