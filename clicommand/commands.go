package clicommand

import "github.com/urfave/cli"

var SecretsToEnvCommands = []cli.Command{
	ExportCommand,
}
