package clicommand

import (
	"bytes"
	"flag"
	"testing"

	"github.com/buildkite/secrets-to-env/logger"
	"github.com/buildkite/secrets-to-env/redaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func newTestContext(stdout, stderr *bytes.Buffer) *cli.Context {
	app := cli.NewApp()
	app.Writer = stdout
	app.ErrWriter = stderr
	return cli.NewContext(app, flag.NewFlagSet("test", flag.ContinueOnError), nil)
}

func TestResolveLogFormat(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.Equal(t, LogFormatGitHub, ResolveLogFormat(LogFormatAuto))
	assert.Equal(t, LogFormatGitHub, ResolveLogFormat(""))
	assert.Equal(t, LogFormatJSON, ResolveLogFormat(LogFormatJSON))

	t.Setenv("GITHUB_ACTIONS", "false")
	assert.Equal(t, LogFormatText, ResolveLogFormat(LogFormatAuto))
}

func TestCreateLoggerLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  GlobalConfig
		want logger.Level
	}{
		{name: "default", cfg: GlobalConfig{LogFormat: LogFormatText}, want: logger.INFO},
		{name: "log level", cfg: GlobalConfig{LogFormat: LogFormatText, LogLevel: "warn"}, want: logger.WARN},
		{name: "debug wins", cfg: GlobalConfig{LogFormat: LogFormatText, LogLevel: "error", Debug: true}, want: logger.DEBUG},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			redactor := redaction.NewRedactor(&stderr, redaction.Replacement, nil)

			l, err := CreateLogger(newTestContext(&stdout, &stderr), &test.cfg, redactor)
			require.NoError(t, err)
			assert.Equal(t, test.want, l.Level())
		})
	}
}

func TestCreateLoggerInvalid(t *testing.T) {
	var stdout, stderr bytes.Buffer
	redactor := redaction.NewRedactor(&stderr, redaction.Replacement, nil)
	c := newTestContext(&stdout, &stderr)

	_, err := CreateLogger(c, &GlobalConfig{LogFormat: "xml"}, redactor)
	assert.ErrorContains(t, err, `invalid log format "xml"`)

	_, err = CreateLogger(c, &GlobalConfig{LogFormat: LogFormatText, LogLevel: "loud"}, redactor)
	assert.Error(t, err)
}

func TestCreateLoggerRedactsAndRoutes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	redactor := redaction.NewRedactor(&stderr, redaction.Replacement, nil)

	l, err := CreateLogger(newTestContext(&stdout, &stderr), &GlobalConfig{LogFormat: LogFormatJSON}, redactor)
	require.NoError(t, err)

	redactor.Add("hunter2")
	l.Info("the password is hunter2")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `"msg":"the password is [REDACTED]"`)
	assert.NotContains(t, stderr.String(), "hunter2")

	stderr.Reset()
	l, err = CreateLogger(newTestContext(&stdout, &stderr), &GlobalConfig{LogFormat: LogFormatGitHub}, redactor)
	require.NoError(t, err)

	l.Warn("still hunter2")
	assert.Equal(t, "::warning::still [REDACTED]\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestInputBool(t *testing.T) {
	t.Parallel()

	assert.True(t, inputBool(""))
	assert.True(t, inputBool("true"))
	assert.False(t, inputBool("false"))
	assert.False(t, inputBool("TRUE"))
	assert.False(t, inputBool("yes"))
}
