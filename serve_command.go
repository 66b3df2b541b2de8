package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/server"
)

type serveCommand struct {
	DatabaseURL string
	ListenAddr  string
}

var serveCommandName = "serve"

func newServeCommand() *cli.Command {
	command := &serveCommand{}
	return &cli.Command{
		Name:   serveCommandName,
		Usage:  "Serve the auction web application",
		Before: command.before,
		Action: command.execute,
		Flags: []cli.Flag{
			newDbURLFlag(&command.DatabaseURL),
			newListenAddrFlag(&command.ListenAddr),
		},
	}
}

func (cmd *serveCommand) before(ctx *cli.Context) error {
	return LogMetadata(ctx)
}

func (cmd *serveCommand) execute(context *cli.Context) error {
	log := AppLogger(context).WithName(serveCommandName)

	log.V(1).Info("Opening database connection", "url", cmd.DatabaseURL)
	rdb, err := db.Openx(cmd.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not open database connection: %w", err)
	}
	defer rdb.Close()

	srv := server.New(rdb, log)
	go func() {
		<-context.Context.Done()
		log.Info("Shutting down")
		_ = srv.Shutdown()
	}()

	log.Info("Listening", "addr", cmd.ListenAddr)
	return srv.Listen(cmd.ListenAddr)
}
