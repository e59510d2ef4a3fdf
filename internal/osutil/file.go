package osutil

import (
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether filename can be stat'ed. Any error counts as
// the file not being there (or not being available).
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// NormalizeFilePath returns a clean absolute version of path. Environment
// variables inside the path are expanded and a leading "~" is replaced with
// the user's home directory. The empty path is returned unchanged.
func NormalizeFilePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	path, err := ExpandHome(os.ExpandEnv(path))
	if err != nil {
		return "", err
	}

	return filepath.Abs(path)
}

// ExpandHome expands a path that is exactly "~" or starts with "~/".
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
