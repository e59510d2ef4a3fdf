package clicommand

import (
	"fmt"
	"os"

	"github.com/buildkite/secrets-to-env/env"
	"github.com/buildkite/secrets-to-env/internal/ghenv"
)

// jobEnvironment is where exported variables go when the command runs for
// real: the current process, and the GitHub environment file so that later
// steps of the job see them too.
type jobEnvironment struct {
	// env starts as a snapshot of the process environment and tracks every
	// export made through this store.
	env *env.Environment

	// file is nil when there is no environment file to write to.
	file *ghenv.File

	setenv func(key, value string) error
}

func newJobEnvironment(environ []string, envFilePath string) *jobEnvironment {
	je := &jobEnvironment{
		env:    env.FromSlice(environ),
		setenv: os.Setenv,
	}
	if envFilePath != "" {
		je.file = ghenv.New(envFilePath)
	}
	return je
}

func (je *jobEnvironment) Get(key string) (string, bool) {
	return je.env.Get(key)
}

func (je *jobEnvironment) Export(key, value string) error {
	if je.file != nil {
		if err := je.file.Append(key, value); err != nil {
			return err
		}
	}

	if err := je.setenv(key, value); err != nil {
		return fmt.Errorf("setting %s in the process environment: %w", key, err)
	}

	je.env.Set(key, value)
	return nil
}
