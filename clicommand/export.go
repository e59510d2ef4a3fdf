package clicommand

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/buildkite/secrets-to-env/env"
	"github.com/buildkite/secrets-to-env/internal/casing"
	"github.com/buildkite/secrets-to-env/internal/exporter"
	"github.com/buildkite/secrets-to-env/internal/ghenv"
	"github.com/buildkite/secrets-to-env/internal/record"
	"github.com/buildkite/secrets-to-env/logger"
	"github.com/buildkite/secrets-to-env/redaction"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
)

const exportHelpDescription = `Usage:

   secrets-to-env export [options...]

Description:
   Exports CI secrets and variables as environment variables for the rest of
   the job.

   Both maps are passed in as JSON objects of string values. Keys can be
   filtered with comma separated lists of regular expressions, which match
   anywhere in the key, and renamed with a prefix and a case conversion.
   The ′github_token′ secret is never exported.

   Every option can also be set with the matching GitHub Actions input
   variable (INPUT_SECRETS, INPUT_PREFIX, ...), so the binary can be used as
   the entrypoint of an action. Variables are written to the file named by
   $GITHUB_ENV, and are visible to every later step in the job.

   This is also the default command, so ′secrets-to-env [options...]′ is the
   same as ′secrets-to-env export [options...]′.

Example:

   $ secrets-to-env export \
       --secrets '{"db_password":"hunter2"}' \
       --variables '{"db_host":"db.internal"}' \
       --prefix APP_ --convert constant
   Exported secret APP_DB_PASSWORD
   Exported variable APP_DB_HOST`

type ExportConfig struct {
	GlobalConfig

	// Action inputs are trimmed of surrounding whitespace, the way the
	// runner's own input helpers read them.
	Secrets   string `cli:"secrets" normalize:"trimspace" validate:"required"`
	Variables string `cli:"variables" normalize:"trimspace" validate:"required"`

	Prefix  string `cli:"prefix" normalize:"trimspace"`
	Include string `cli:"include" normalize:"trimspace"`
	Exclude string `cli:"exclude" normalize:"trimspace"`
	Convert string `cli:"convert" normalize:"trimspace"`

	// ConvertPrefix and Override are strings so that an empty action input
	// can keep its default of true.
	ConvertPrefix string `cli:"convert-prefix" normalize:"trimspace"`
	Override      string `cli:"override" normalize:"trimspace"`

	GitHubEnv string `cli:"github-env" normalize:"filepath"`
	Summary   bool   `cli:"summary"`
}

var exportFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "secrets",
		Value:  "",
		Usage:  "A JSON object of secret names to string values, e.g. ′${{ toJSON(secrets) }}′",
		EnvVar: "INPUT_SECRETS",
	},
	cli.StringFlag{
		Name:   "variables",
		Value:  "",
		Usage:  "A JSON object of variable names to string values, e.g. ′${{ toJSON(vars) }}′",
		EnvVar: "INPUT_VARIABLES",
	},
	cli.StringFlag{
		Name:   "prefix",
		Value:  "",
		Usage:  "Prepended to the name of every exported variable",
		EnvVar: "INPUT_PREFIX",
	},
	cli.StringFlag{
		Name:   "include",
		Value:  "",
		Usage:  "Comma separated regular expressions; only matching keys are exported. Exports every key when empty",
		EnvVar: "INPUT_INCLUDE",
	},
	cli.StringFlag{
		Name:   "exclude",
		Value:  "",
		Usage:  "Comma separated regular expressions; matching keys are not exported",
		EnvVar: "INPUT_EXCLUDE",
	},
	cli.StringFlag{
		Name:   "convert",
		Value:  "",
		Usage:  "Case conversion for exported names, one of: " + strings.Join(casing.Modes(), ", "),
		EnvVar: "INPUT_CONVERT",
	},
	cli.StringFlag{
		Name:   "convert-prefix",
		Value:  "true",
		Usage:  "Whether --convert applies to the prefix too",
		EnvVar: "INPUT_CONVERT_PREFIX",
	},
	cli.StringFlag{
		Name:   "override",
		Value:  "true",
		Usage:  "Whether to overwrite variables that are already set",
		EnvVar: "INPUT_OVERRIDE",
	},
	cli.StringFlag{
		Name:   "github-env",
		Value:  "",
		Usage:  "The file that exported variables are appended to for later steps",
		EnvVar: ghenv.EnvVar,
	},
	cli.BoolFlag{
		Name:   "summary",
		Usage:  "Print the names of the variables that were added or changed",
		EnvVar: "SECRETS_TO_ENV_SUMMARY",
	},
}

// ExportFlags are also the app's flags, for running export by default.
var ExportFlags = slices.Concat(exportFlags, globalFlags)

var ExportCommand = cli.Command{
	Name:        "export",
	Usage:       "Exports secrets and variables as environment variables",
	Description: exportHelpDescription,
	Flags:       ExportFlags,
	Action:      ExportAction,
}

// ExportAction runs the export command.
var ExportAction = NewConfigAndLogger[ExportConfig](exportAction)

func exportAction(ctx context.Context, c *cli.Context, l logger.Logger, redactor *redaction.Redactor, cfg *ExportConfig) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q, options must be given as flags", c.Args().First())
	}

	// Both maps are parsed before anything is exported, so a malformed
	// variables payload leaves the environment untouched.
	secrets, err := parseRecord(ctx, l, record.Secret, cfg.Secrets)
	if err != nil {
		return err
	}
	redactor.Reset(redaction.Needles(l, secrets))

	variables, err := parseRecord(ctx, l, record.Variable, cfg.Variables)
	if err != nil {
		return err
	}

	exporterCfg, err := exporter.NewConfig(exporter.Options{
		Include:       cfg.Include,
		Exclude:       cfg.Exclude,
		Prefix:        cfg.Prefix,
		Convert:       cfg.Convert,
		ConvertPrefix: inputBool(cfg.ConvertPrefix),
		Override:      inputBool(cfg.Override),
	})
	if err != nil {
		return err
	}

	if cfg.GitHubEnv == "" {
		l.Warn("$%s is not set; variables are only exported to this process", ghenv.EnvVar)
	}
	store := newJobEnvironment(os.Environ(), cfg.GitHubEnv)
	before := store.env.Copy()

	e := exporter.New(l, exporterCfg, store)
	for _, src := range []struct {
		rec  record.Record
		kind record.Kind
	}{
		{secrets, record.Secret},
		{variables, record.Variable},
	} {
		if _, err := e.Export(src.rec, src.kind); err != nil {
			return err
		}
	}

	if cfg.Summary {
		printSummary(c, store, before)
	}

	return nil
}

func parseRecord(ctx context.Context, l logger.Logger, kind record.Kind, data string) (record.Record, error) {
	rec, err := record.Parse(ctx, kind, data)
	if err != nil {
		return nil, err
	}
	l.WithFields(
		logger.StringField("kind", string(kind)),
		logger.IntField("keys", len(rec)),
	).Debug("Parsed %s of JSON", humanize.Bytes(uint64(len(data))))
	return rec, nil
}

// printSummary writes the names of changed variables, never their values.
func printSummary(c *cli.Context, store *jobEnvironment, before *env.Environment) {
	diff := store.env.Diff(before)
	if diff.Empty() {
		fmt.Fprintln(c.App.Writer, "No environment variables changed")
		return
	}

	for _, name := range slices.Sorted(maps.Keys(diff.Added)) {
		fmt.Fprintf(c.App.Writer, "+ %s\n", name)
	}
	for _, name := range slices.Sorted(maps.Keys(diff.Changed)) {
		fmt.Fprintf(c.App.Writer, "~ %s\n", name)
	}
}

// inputBool parses a boolean action input. An empty input keeps the default
// of true; anything other than "true" is false.
func inputBool(s string) bool {
	return s == "" || s == "true"
}
