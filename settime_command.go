package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/query"
)

type setTimeCommand struct {
	DatabaseURL string
	Time        string
}

var setTimeCommandName = "set-time"

func newSetTimeCommand() *cli.Command {
	command := &setTimeCommand{}
	return &cli.Command{
		Name:   setTimeCommandName,
		Usage:  "Move the application's current time",
		Before: command.before,
		Action: command.execute,
		Flags: []cli.Flag{
			newDbURLFlag(&command.DatabaseURL),
			&cli.StringFlag{Name: "time", Usage: "New application time in the form of 'YYYY-MM-DD HH:MM:SS'",
				EnvVars: envVars("TIME"), Destination: &command.Time, Required: true, DefaultText: defaultTextForRequiredFlags},
		},
	}
}

func (cmd *setTimeCommand) before(ctx *cli.Context) error {
	return LogMetadata(ctx)
}

func (cmd *setTimeCommand) execute(context *cli.Context) error {
	log := AppLogger(context).WithName(setTimeCommandName)

	log.V(1).Info("Opening database connection", "url", cmd.DatabaseURL)
	rdb, err := db.Openx(cmd.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not open database connection: %w", err)
	}
	defer rdb.Close()

	if err := query.SetTime(context.Context, rdb, cmd.Time); err != nil {
		return err
	}
	log.Info("Current time set", "time", cmd.Time)
	return nil
}
