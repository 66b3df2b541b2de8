package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// these variables are populated by goreleaser when releasing
	version = "unknown"
	commit  = "-dirty-"
	date    = time.Now().Format("2006-01-02")

	appName     = "auctionbase"
	appLongName = "a tool that loads auction listings into a normalized schema and serves a time-travel bidding application"

	envPrefix = "AB"
)

func main() {
	ctx, stop, app := newApp()
	defer stop()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() (context.Context, context.CancelFunc, *cli.App) {
	// A .env file is optional; flags and environment win over it.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    appName,
		Usage:   appLongName,
		Version: fmt.Sprintf("%s, revision=%s, date=%s", version, commit, date),

		EnableBashCompletion: true,

		Before: func(c *cli.Context) error {
			logger, err := newLogger(appName, c.Bool("debug"))
			if err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
			c.Context = logr.NewContext(c.Context, logger)
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"verbose", "d"}, Usage: "sets the log level to debug", EnvVars: envVars("DEBUG")},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
			newIngestCommand(),
			newServeCommand(),
			newSetTimeCommand(),
		},
	}
	parentCtx := context.Background()
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, stop, app
}

func newLogger(name string, debug bool) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if debug {
		cfg.Development = true
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	zap.ReplaceGlobals(z)
	return zapr.NewLogger(z).WithName(name), nil
}

// AppLogger returns the logger stored in the cli context.
func AppLogger(c *cli.Context) logr.Logger {
	return logr.FromContextOrDiscard(c.Context)
}

// LogMetadata prints various metadata to the root logger. It prints
// version, architecture and current user ID and returns nil.
func LogMetadata(c *cli.Context) error {
	log := AppLogger(c)
	log.WithValues(
		"version", version,
		"date", date,
		"uid", os.Getuid(),
		"gid", os.Getgid(),
	).Info("Starting up " + appName)
	return nil
}

func envVars(suffixes ...string) []string {
	v := make([]string, len(suffixes))
	for i, s := range suffixes {
		v[i] = envPrefix + "_" + s
	}
	return v
}
