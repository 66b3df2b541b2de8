package main

import (
	"github.com/urfave/cli/v2"
)

const defaultTextForRequiredFlags = "<required>"

func newDbURLFlag(destination *string) *cli.StringFlag {
	return &cli.StringFlag{Name: "db-url", Usage: "Database connection URL in the form of postgres://user@host:port/db-name?option=value",
		EnvVars: envVars("DB_URL"), Destination: destination, Required: true, DefaultText: defaultTextForRequiredFlags}
}

func newListenAddrFlag(destination *string) *cli.StringFlag {
	return &cli.StringFlag{Name: "listen-addr", Usage: "Address the web application listens on",
		EnvVars: envVars("LISTEN_ADDR"), Destination: destination, Value: ":8080"}
}
