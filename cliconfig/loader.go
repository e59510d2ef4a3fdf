// Package cliconfig loads command configuration from flags, environment
// variables and an optional configuration file into a tagged struct.
//
// It is intended for internal use by secrets-to-env only.
package cliconfig

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/buildkite/secrets-to-env/internal/osutil"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

// Loader fills Config from the CLI context. Fields of Config are tagged:
//
//	cli:"name"          the flag (or "arg:N" / "arg:*") the value comes from
//	normalize:"..."     "filepath" or "trimspace"
//	validate:"..."      comma separated rules; only "required" for now
//	label:"..."         the name used in validation errors
type Loader struct {
	// The context that is passed when using a urfave/cli action
	CLI *cli.Context

	// The struct that the config values will be loaded into
	Config any

	// A slice of paths to files that should be used as config files
	DefaultConfigFilePaths []string

	// The file that was used when loading this configuration
	File *File
}

// Matches "arg:index" (specific non-flag arg) or "arg:*" (all non-flag args).
var argCLINameRE = regexp.MustCompile(`arg:(\d+|\*)`)

// Load loads the config from the CLI and any config file that is present.
func (l *Loader) Load() error {
	// A file passed with --config has to exist; the defaults are optional.
	if path := l.CLI.String("config"); path != "" {
		file := File{Path: path}
		if !file.Exists() {
			absolutePath, _ := file.AbsolutePath()
			return fmt.Errorf("a configuration file could not be found at: %q", absolutePath)
		}
		l.File = &file
	} else {
		for _, path := range l.DefaultConfigFilePaths {
			file := File{Path: path}
			if file.Exists() {
				l.File = &file
				break
			}
		}
	}

	if l.File != nil {
		if err := l.File.Load(); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
	}

	fields, err := reflections.FieldsDeep(l.Config)
	if err != nil {
		return fmt.Errorf("listing config fields: %w", err)
	}

	for _, fieldName := range fields {
		cliName, _ := reflections.GetFieldTag(l.Config, fieldName, "cli")
		if cliName != "" {
			if err := l.setFieldValueFromCLI(fieldName, cliName); err != nil {
				return fmt.Errorf("setting config field %s: %w", fieldName, err)
			}
		}

		normalization, _ := reflections.GetFieldTag(l.Config, fieldName, "normalize")
		if normalization != "" {
			if err := l.normalizeField(fieldName, normalization); err != nil {
				return fmt.Errorf("normalizing config field %s: %w", fieldName, err)
			}
		}

		validationRules, _ := reflections.GetFieldTag(l.Config, fieldName, "validate")
		if validationRules != "" {
			label, _ := reflections.GetFieldTag(l.Config, fieldName, "label")
			if label == "" {
				label = cliName
			}
			if label == "" {
				label = fieldName
			}

			if err := l.validateField(fieldName, label, validationRules); err != nil {
				return err
			}
		}
	}

	return nil
}

func (l Loader) setFieldValueFromCLI(fieldName, cliName string) error {
	fieldKind, err := reflections.GetFieldKind(l.Config, fieldName)
	if err != nil {
		return fmt.Errorf("getting the kind of struct field %q: %w", fieldName, err)
	}

	var value any

	if argMatch := argCLINameRE.FindStringSubmatch(cliName); len(argMatch) > 0 {
		if argMatch[1] == "*" {
			value = []string(l.CLI.Args())
		} else {
			argIndex, err := strconv.Atoi(argMatch[1])
			if err != nil {
				return fmt.Errorf("converting string to int: %w", err)
			}
			if len(l.CLI.Args()) > argIndex {
				value = l.CLI.Args()[argIndex]
			}
		}
	} else {
		// Values from the config file are used unless the flag was set on
		// the command line or through its environment variable.
		if l.File != nil {
			if configFileValue, ok := l.File.Config[cliName]; ok {
				switch fieldKind {
				case reflect.String:
					value = configFileValue
				case reflect.Slice:
					value = strings.Split(configFileValue, ",")
				case reflect.Bool:
					value, _ = strconv.ParseBool(configFileValue)
				case reflect.Int:
					value, _ = strconv.Atoi(configFileValue)
				default:
					return fmt.Errorf("unable to convert string to type %s", fieldKind)
				}
			}
		}

		if value == nil || l.cliValueIsSet(cliName) {
			switch fieldKind {
			case reflect.String:
				value = l.CLI.String(cliName)
			case reflect.Slice:
				value = l.CLI.StringSlice(cliName)
			case reflect.Bool:
				value = l.CLI.Bool(cliName)
			case reflect.Int:
				value = l.CLI.Int(cliName)
			default:
				return fmt.Errorf("unable to handle type: %s", fieldKind)
			}
		}
	}

	if value != nil {
		if err := reflections.SetField(l.Config, fieldName, value); err != nil {
			return fmt.Errorf("setting value field %q to %q: %w", fieldName, value, err)
		}
	}

	return nil
}

// Errorf returns an error pointing the user at the command's help.
func (l Loader) Errorf(format string, v ...any) error {
	name := l.CLI.App.Name
	if l.CLI.Command.Name != "" {
		name += " " + l.CLI.Command.Name
	}
	suffix := fmt.Sprintf(" See: `%s --help`", name)

	return fmt.Errorf(format+suffix, v...)
}

func (l Loader) cliValueIsSet(cliName string) bool {
	if l.CLI.IsSet(cliName) {
		return true
	}

	// cli.Context#IsSet only checks to see if the flag was set on the
	// command line, not via the environment, so look for the flag's EnvVar.
	// The export command also runs as the app's default action, in which
	// case its flags are the app's flags.
	for _, flag := range slices.Concat(l.CLI.Command.Flags, l.CLI.App.Flags) {
		name, _ := reflections.GetField(flag, "Name")
		envVar, _ := reflections.GetField(flag, "EnvVar")
		if name != cliName {
			continue
		}
		envVarStr, ok := envVar.(string)
		if !ok || envVarStr == "" {
			continue
		}
		for ev := range strings.SplitSeq(envVarStr, ",") {
			if _, set := os.LookupEnv(strings.TrimSpace(ev)); set {
				return true
			}
		}
	}

	return false
}

func (l Loader) fieldValueIsEmpty(fieldName string) bool {
	value, _ := reflections.GetField(l.Config, fieldName)
	fieldKind, _ := reflections.GetFieldKind(l.Config, fieldName)

	switch fieldKind {
	case reflect.String:
		return value == ""
	case reflect.Slice:
		return reflect.ValueOf(value).Len() == 0
	case reflect.Bool:
		return value == false
	case reflect.Int:
		return value == 0
	default:
		panic(fmt.Sprintf("Can't determine empty-ness for field type %s", fieldKind))
	}
}

func (l Loader) validateField(fieldName, label, validationRules string) error {
	for rule := range strings.SplitSeq(validationRules, ",") {
		switch rule {
		case "required":
			if l.fieldValueIsEmpty(fieldName) {
				return l.Errorf("Missing %s.", label)
			}

		default:
			return fmt.Errorf("unknown config validation rule %q", rule)
		}
	}

	return nil
}

func (l Loader) normalizeField(fieldName, normalization string) error {
	value, _ := reflections.GetField(l.Config, fieldName)
	fieldKind, _ := reflections.GetFieldKind(l.Config, fieldName)

	switch normalization {
	case "filepath":
		if fieldKind != reflect.String {
			return fmt.Errorf("filepath normalization only works on string fields")
		}

		normalizedPath, err := osutil.NormalizeFilePath(value.(string))
		if err != nil {
			return err
		}
		return reflections.SetField(l.Config, fieldName, normalizedPath)

	case "trimspace":
		if fieldKind != reflect.String {
			return fmt.Errorf("trimspace normalization only works on string fields")
		}
		return reflections.SetField(l.Config, fieldName, strings.TrimSpace(value.(string)))

	default:
		return fmt.Errorf("unknown normalization %q", normalization)
	}
}
