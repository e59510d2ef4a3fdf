package cliconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/buildkite/secrets-to-env/internal/osutil"
	"gopkg.in/yaml.v3"
)

// File is a configuration file of flag-name=value lines, e.g.
//
//	# exported names look like APP_DB_HOST
//	prefix=APP_
//	convert=constant
//	exclude="^ACTIONS_, ^RUNNER_"
//
// Files ending in .yml or .yaml are read as a YAML mapping of flag names to
// scalars or lists instead.
type File struct {
	// The path to the file
	Path string

	// A map of key/values that was loaded from the file
	Config map[string]string
}

func (f *File) Load() error {
	f.Config = map[string]string{}

	absolutePath, err := f.AbsolutePath()
	if err != nil {
		return fmt.Errorf("getting absolute path for %s: %w", f.Path, err)
	}

	file, err := os.Open(absolutePath)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", f.Path, err)
	}
	defer file.Close() //nolint:errcheck // it's only open for reading

	switch filepath.Ext(absolutePath) {
	case ".yml", ".yaml":
		return f.loadYAML(file)
	}

	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("parsing config line %d: %w", lineNum, err)
		}
		f.Config[key] = value
	}

	return scanner.Err()
}

func (f *File) loadYAML(file *os.File) error {
	var doc map[string]any
	if err := yaml.NewDecoder(file).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing YAML config %s: %w", f.Path, err)
	}

	for key, value := range doc {
		switch v := value.(type) {
		case nil:
			f.Config[key] = ""
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			f.Config[key] = strings.Join(items, ",")
		case map[string]any:
			return fmt.Errorf("config key %s in %s must be a scalar or a list", key, f.Path)
		default:
			f.Config[key] = fmt.Sprint(v)
		}
	}

	return nil
}

func (f File) AbsolutePath() (string, error) {
	return osutil.NormalizeFilePath(f.Path)
}

func (f File) Exists() bool {
	absolutePath, err := f.AbsolutePath()
	if err != nil {
		return false
	}
	return osutil.FileExists(absolutePath)
}

// parseLine splits a "key=value" or "key: value" line. Values may be double
// quoted (with Go escapes) or single quoted (taken literally); unquoted
// values end at the first " #".
func parseLine(line string) (key, value string, err error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		key, value, ok = strings.Cut(line, ":")
	}
	if !ok {
		return "", "", fmt.Errorf("can't separate key from value in string %q, no valid separators (= or :) found", line)
	}

	key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
	if key == "" {
		return "", "", fmt.Errorf("missing key in string %q", line)
	}

	value = strings.TrimSpace(value)
	switch {
	case len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"':
		value, err = strconv.Unquote(value)
		if err != nil {
			return "", "", fmt.Errorf("unquoting value of %s: %w", key, err)
		}

	case len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'':
		value = value[1 : len(value)-1]

	default:
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
	}

	return key, value, nil
}
