package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/auctionbase/auctionbase/pkg/db"
	"github.com/auctionbase/auctionbase/pkg/ingest"
)

type ingestCommand struct {
	DatabaseURL string
	OutputDir   string
}

var ingestCommandName = "ingest"

func newIngestCommand() *cli.Command {
	command := &ingestCommand{}
	return &cli.Command{
		Name:      ingestCommandName,
		Usage:     "Flatten nested auction listing files into the normalized schema",
		ArgsUsage: "FILE...",
		Before:    command.before,
		Action:    command.execute,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-url", Usage: "Database connection URL in the form of postgres://user@host:port/db-name?option=value. If set, rows are bulk-loaded into this database",
				EnvVars: envVars("DB_URL"), Destination: &command.DatabaseURL},
			&cli.StringFlag{Name: "out-dir", Usage: "Directory to write pipe-delimited .dat files to",
				EnvVars: envVars("OUT_DIR"), Destination: &command.OutputDir},
		},
	}
}

func (cmd *ingestCommand) before(ctx *cli.Context) error {
	return LogMetadata(ctx)
}

func (cmd *ingestCommand) execute(context *cli.Context) error {
	log := AppLogger(context).WithName(ingestCommandName)

	if context.NArg() == 0 {
		return fmt.Errorf("no listing files given")
	}
	if cmd.DatabaseURL == "" && cmd.OutputDir == "" {
		return fmt.Errorf("at least one of --db-url and --out-dir must be set")
	}

	// One shared context for the whole run so surrogate ids stay
	// consistent across files.
	c := ingest.NewContext()
	for _, file := range context.Args().Slice() {
		listings, err := ingest.ParseFile(file)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", file, err)
		}
		for _, l := range listings {
			if err := c.Flatten(l); err != nil {
				return fmt.Errorf("error flattening listing in %s: %w", file, err)
			}
		}
		log.Info("Parsed file", "file", file, "listings", len(listings))
	}

	log.Info("Flattened listings",
		"items", len(c.Items),
		"users", c.Users.Len(),
		"categories", c.Categories.Len(),
		"locations", c.Locations.Len(),
		"bids", len(c.Bids))

	if cmd.OutputDir != "" {
		log.V(1).Info("Writing row files", "dir", cmd.OutputDir)
		if err := c.WriteFiles(cmd.OutputDir); err != nil {
			return err
		}
	}

	if cmd.DatabaseURL != "" {
		log.V(1).Info("Opening database connection", "url", cmd.DatabaseURL)
		rdb, err := db.Openx(cmd.DatabaseURL)
		if err != nil {
			return fmt.Errorf("could not open database connection: %w", err)
		}
		defer rdb.Close()

		log.V(1).Info("Loading rows")
		if err := c.Load(context.Context, rdb); err != nil {
			return fmt.Errorf("could not load rows: %w", err)
		}
	}

	return nil
}
