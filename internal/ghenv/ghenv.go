// Package ghenv appends variables to the GitHub Actions environment file, the
// file named by $GITHUB_ENV that the runner reads after each step to set up
// the environment of the steps that follow.
package ghenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// EnvVar names the variable holding the path to the environment file.
const EnvVar = "GITHUB_ENV"

// File is a GitHub Actions environment file.
type File struct {
	Path string

	// newDelimiter is swapped out by tests.
	newDelimiter func() string
}

// New returns a File for the environment file at path.
func New(path string) *File {
	return &File{
		Path: path,
		newDelimiter: func() string {
			return "ghadelimiter_" + uuid.NewString()
		},
	}
}

// LockPath is the path of the lock file that serialises appends to f.
func (f *File) LockPath() string {
	return f.Path + ".lock"
}

// Append adds name=value to the file using the multiline heredoc form:
//
//	name<<ghadelimiter_<uuid>
//	value
//	ghadelimiter_<uuid>
//
// so values containing newlines survive intact.
func (f *File) Append(name, value string) error {
	delimiter := f.newDelimiter()
	if strings.Contains(name, delimiter) {
		return fmt.Errorf("unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return fmt.Errorf("unexpected input: value should not contain the delimiter %q", delimiter)
	}

	// The lock is held on a file beside the environment file, never on the
	// environment file itself.
	lockPath := f.LockPath()
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", lockPath, err)
	}
	defer lock.Unlock() //nolint:errcheck // closing the lock file releases it anyway

	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Path, err)
	}

	if _, err := fmt.Fprintf(file, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter); err != nil {
		file.Close() //nolint:errcheck // the write error is more useful
		return fmt.Errorf("writing %s to %s: %w", name, f.Path, err)
	}

	return file.Close()
}
