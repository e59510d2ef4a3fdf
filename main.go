// secrets-to-env exports CI secrets and variables as environment variables
// for the rest of a job.
package main

import (
	"os"

	"github.com/buildkite/secrets-to-env/clicommand"
	"github.com/buildkite/secrets-to-env/version"
	"github.com/urfave/cli"
)

const appHelpTemplate = `Usage:

  {{.Name}} [options...]
  {{.Name}} <command> [options...]

Without a command, {{.Name}} runs ′export′.

Available commands are:

  {{range .Commands}}{{.Name}}{{with .ShortName}}, {{.}}{{end}}{{ "\t" }}{{.Usage}}
  {{end}}
Use "{{.Name}} <command> --help" for more information about a command.

`

func newApp() *cli.App {
	cli.AppHelpTemplate = appHelpTemplate

	app := cli.NewApp()
	app.Name = "secrets-to-env"
	app.Usage = "Export CI secrets and variables as environment variables"
	app.Version = version.FullVersion()
	app.ErrWriter = os.Stderr
	app.Commands = clicommand.SecretsToEnvCommands
	app.Flags = clicommand.ExportFlags
	app.Action = clicommand.ExportAction

	return app
}

func main() {
	app := newApp()
	os.Exit(clicommand.PrintMessageAndReturnExitCode(app.ErrWriter, app.Run(os.Args)))
}
