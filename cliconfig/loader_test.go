package cliconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type testConfig struct {
	Name     string   `cli:"name" validate:"required"`
	Prefix   string   `cli:"prefix" normalize:"trimspace"`
	Count    int      `cli:"count"`
	Verbose  bool     `cli:"verbose"`
	Tags     []string `cli:"tag"`
	Output   string   `cli:"output" normalize:"filepath"`
	First    string   `cli:"arg:0"`
	Args     []string `cli:"arg:*"`
	Config   string   `cli:"config"`
}

// load runs an app with args and returns the loaded config and error.
func load(t *testing.T, cfg any, args ...string) (*Loader, error) {
	t.Helper()

	var (
		loader  *Loader
		loadErr error
	)

	app := cli.NewApp()
	app.Name = "test-app"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config"},
		cli.StringFlag{Name: "name", EnvVar: "TEST_APP_NAME"},
		cli.StringFlag{Name: "prefix", Value: "DEFAULT_", EnvVar: "TEST_APP_PREFIX"},
		cli.IntFlag{Name: "count", Value: 1},
		cli.BoolFlag{Name: "verbose"},
		cli.StringSliceFlag{Name: "tag", Value: &cli.StringSlice{}},
		cli.StringFlag{Name: "output"},
		cli.StringFlag{Name: "labelled"},
	}
	app.Action = func(c *cli.Context) error {
		loader = &Loader{CLI: c, Config: cfg}
		loadErr = loader.Load()
		return nil
	}

	require.NoError(t, app.Run(append([]string{"test-app"}, args...)))
	return loader, loadErr
}

func TestLoaderFromFlags(t *testing.T) {
	t.Setenv("TEST_APP_PREFIX", "")
	t.Setenv("TEST_APP_NAME", "")

	cfg := &testConfig{}
	_, err := load(t, cfg, "--name", "llama", "--count", "3", "--verbose", "--tag", "a", "--tag", "b", "first", "second")
	require.NoError(t, err)

	assert.Equal(t, "llama", cfg.Name)
	assert.Equal(t, "", cfg.Prefix)
	assert.Equal(t, 3, cfg.Count)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
	assert.Equal(t, "first", cfg.First)
	assert.Equal(t, []string{"first", "second"}, cfg.Args)
}

func TestLoaderDefaults(t *testing.T) {
	cfg := &testConfig{}
	_, err := load(t, cfg, "--name", "llama")
	require.NoError(t, err)

	assert.Equal(t, "DEFAULT_", cfg.Prefix)
	assert.Equal(t, 1, cfg.Count)
	assert.Empty(t, cfg.First)
}

func TestLoaderFromEnv(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "alpaca")

	cfg := &testConfig{}
	_, err := load(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, "alpaca", cfg.Name)
}

func TestLoaderRequired(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "")

	_, err := load(t, &testConfig{})
	assert.EqualError(t, err, "Missing name. See: `test-app --help`")
}

func TestLoaderLabel(t *testing.T) {
	type labelledConfig struct {
		Labelled string `cli:"labelled" label:"the labelled thing" validate:"required"`
	}

	_, err := load(t, &labelledConfig{})
	assert.EqualError(t, err, "Missing the labelled thing. See: `test-app --help`")
}

func TestLoaderConfigFile(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "from-env")

	f := writeConfig(t, "name=from-file\nprefix=FILE_\ncount=7\nverbose=true\ntag=x,y\n")

	cfg := &testConfig{}
	loader, err := load(t, cfg, "--config", f, "--count", "9")
	require.NoError(t, err)
	require.NotNil(t, loader.File)

	// Environment and command line values win over the file.
	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, 9, cfg.Count)

	assert.Equal(t, "FILE_", cfg.Prefix)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"x", "y"}, cfg.Tags)
}

func TestLoaderDefaultConfigFilePaths(t *testing.T) {
	dir := t.TempDir()
	f := writeConfig(t, "name=from-default\n")

	cfg := &testConfig{}
	var loadErr error
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config"},
		cli.StringFlag{Name: "name"},
	}
	app.Action = func(c *cli.Context) error {
		loader := &Loader{
			CLI:                    c,
			Config:                 cfg,
			DefaultConfigFilePaths: []string{filepath.Join(dir, "missing.cfg"), f},
		}
		loadErr = loader.Load()
		return nil
	}
	require.NoError(t, app.Run([]string{"test-app"}))
	require.NoError(t, loadErr)

	assert.Equal(t, "from-default", cfg.Name)
}

func TestLoaderMissingConfigFile(t *testing.T) {
	_, err := load(t, &testConfig{}, "--config", filepath.Join(t.TempDir(), "nope.cfg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a configuration file could not be found at")
}

func TestLoaderNormalizesFilePaths(t *testing.T) {
	t.Setenv("HOME", "/home/llama")

	cfg := &testConfig{}
	_, err := load(t, cfg, "--name", "llama", "--output", "~/out.txt")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/home/llama", "out.txt"), cfg.Output)
}

func TestLoaderTrimsSpace(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "")
	t.Setenv("TEST_APP_PREFIX", " APP_\n")

	cfg := &testConfig{}
	_, err := load(t, cfg, "--name", "llama")
	require.NoError(t, err)

	assert.Equal(t, "APP_", cfg.Prefix)
}

func TestLoaderTrimsBeforeRequired(t *testing.T) {
	type trimmedConfig struct {
		Name string `cli:"name" normalize:"trimspace" validate:"required"`
	}
	t.Setenv("TEST_APP_NAME", "")

	_, err := load(t, &trimmedConfig{}, "--name", "  ")
	assert.EqualError(t, err, "Missing name. See: `test-app --help`")
}
