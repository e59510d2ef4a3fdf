package clicommand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/buildkite/secrets-to-env/cliconfig"
	"github.com/buildkite/secrets-to-env/logger"
	"github.com/buildkite/secrets-to-env/redaction"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

// Log formats accepted by --log-format.
const (
	LogFormatAuto   = "auto"
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatGitHub = "github"
)

var ConfigFlag = cli.StringFlag{
	Name:   "config",
	Value:  "",
	Usage:  "Path to a configuration file of flag-name=value lines",
	EnvVar: "SECRETS_TO_ENV_CONFIG",
}

var DebugFlag = cli.BoolFlag{
	Name:   "debug",
	Usage:  "Enable debug mode. Synonym for ′--log-level debug′. Takes precedence over ′--log-level′",
	EnvVar: "SECRETS_TO_ENV_DEBUG",
}

var LogLevelFlag = cli.StringFlag{
	Name:   "log-level",
	Value:  "info",
	Usage:  "Set the log level, valid values are: debug, info, notice, warn, error, fatal",
	EnvVar: "SECRETS_TO_ENV_LOG_LEVEL",
}

var LogFormatFlag = cli.StringFlag{
	Name:   "log-format",
	Value:  LogFormatAuto,
	Usage:  "The format to use for the logger output, valid values are: auto, text, json, github. ′auto′ uses ′github′ when running in GitHub Actions, and ′text′ otherwise",
	EnvVar: "SECRETS_TO_ENV_LOG_FORMAT",
}

var NoColorFlag = cli.BoolFlag{
	Name:   "no-color",
	Usage:  "Don't show colors in logging",
	EnvVar: "SECRETS_TO_ENV_NO_COLOR",
}

var globalFlags = []cli.Flag{
	ConfigFlag,
	NoColorFlag,
	DebugFlag,
	LogLevelFlag,
	LogFormatFlag,
}

// GlobalConfig is embedded in every command's config.
type GlobalConfig struct {
	Config    string `cli:"config" normalize:"filepath"`
	Debug     bool   `cli:"debug"`
	LogLevel  string `cli:"log-level"`
	LogFormat string `cli:"log-format"`
	NoColor   bool   `cli:"no-color"`
}

// DefaultConfigFilePaths are checked in order when --config is not given.
func DefaultConfigFilePaths() (paths []string) {
	if runtime.GOOS == "windows" {
		paths = []string{
			"$USERPROFILE\\AppData\\Local\\SecretsToEnv\\secrets-to-env.cfg",
		}
	} else {
		paths = []string{
			"$HOME/.secrets-to-env/secrets-to-env.cfg",
			"/etc/secrets-to-env/secrets-to-env.cfg",
		}
	}

	// A secrets-to-env.cfg in the working directory wins over all of them.
	if wd, err := os.Getwd(); err == nil {
		paths = append([]string{filepath.Join(wd, "secrets-to-env.cfg")}, paths...)
	}

	return paths
}

// ResolveLogFormat turns "auto" into the concrete format for this process.
func ResolveLogFormat(format string) string {
	if format == "" || format == LogFormatAuto {
		if os.Getenv("GITHUB_ACTIONS") == "true" {
			return LogFormatGitHub
		}
		return LogFormatText
	}
	return format
}

// CreateLogger builds the logger described by the global options in cfg.
// GitHub formatted logs go to stdout, where the runner reads workflow
// commands; the other formats go to stderr. Everything passes through
// redactor, so secrets added to it later are masked too.
func CreateLogger(c *cli.Context, cfg any, redactor *redaction.Redactor) (logger.Logger, error) {
	format, _ := reflections.GetField(cfg, "LogFormat")
	formatStr, _ := format.(string)
	formatStr = ResolveLogFormat(formatStr)

	var out io.Writer = c.App.ErrWriter
	if formatStr == LogFormatGitHub {
		out = c.App.Writer
	}
	redactor.SetOutput(out)

	var printer logger.Printer
	switch formatStr {
	case LogFormatText:
		tp := logger.NewTextPrinter(redactor)
		if noColor, err := reflections.GetField(cfg, "NoColor"); err == nil && noColor == true {
			tp.Colors = false
		}
		printer = tp

	case LogFormatJSON:
		printer = logger.NewJSONPrinter(redactor)

	case LogFormatGitHub:
		printer = logger.NewGitHubPrinter(redactor)

	default:
		return nil, fmt.Errorf("invalid log format %q, must be one of: %s, %s, %s, %s",
			formatStr, LogFormatAuto, LogFormatText, LogFormatJSON, LogFormatGitHub)
	}

	l := logger.NewConsoleLogger(printer, os.Exit)

	// Debug and log level are handled here rather than in a separate step
	// so nothing is logged at the wrong level.
	debug, _ := reflections.GetField(cfg, "Debug")
	logLevel, _ := reflections.GetField(cfg, "LogLevel")

	switch {
	case debug == true:
		l.SetLevel(logger.DEBUG)

	case logLevel != nil && logLevel != "":
		level, err := logger.LevelFromString(logLevel.(string))
		if err != nil {
			return nil, err
		}
		l.SetLevel(level)

	default:
		l.SetLevel(logger.INFO)
	}

	return l, nil
}

// Action is a command action that receives its loaded config and logger.
type Action[T any] func(ctx context.Context, c *cli.Context, l logger.Logger, redactor *redaction.Redactor, cfg *T) error

// NewConfigAndLogger loads the config for a command, creates its logger and
// runs f. Errors returned by f are logged; in GitHub format that makes them
// error annotations, so the message is not printed a second time.
func NewConfigAndLogger[T any](f Action[T]) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := context.Background()

		cfg := new(T)
		loader := cliconfig.Loader{
			CLI:                    c,
			Config:                 cfg,
			DefaultConfigFilePaths: DefaultConfigFilePaths(),
		}
		if err := loader.Load(); err != nil {
			return err
		}

		redactor := redaction.NewRedactor(c.App.ErrWriter, redaction.Replacement, nil)
		l, err := CreateLogger(c, cfg, redactor)
		if err != nil {
			return err
		}

		if loader.File != nil {
			l.Debug("Loaded config file %s", loader.File.Path)
		}

		if err := f(ctx, c, l, redactor, cfg); err != nil {
			l.Error("%s", err)

			code := 1
			if eerr := new(ExitError); errors.As(err, &eerr) {
				code = eerr.Code()
			}
			return NewSilentExitError(code)
		}
		return nil
	}
}
