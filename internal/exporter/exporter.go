// Package exporter filters secrets and variables, renames them, and writes
// them to the environment of the job.
package exporter

import (
	"fmt"
	"strings"

	"github.com/buildkite/secrets-to-env/internal/casing"
	"github.com/buildkite/secrets-to-env/internal/record"
	"github.com/buildkite/secrets-to-env/logger"
)

// Store is the environment that exported variables are written to.
type Store interface {
	Get(key string) (string, bool)
	Export(key, value string) error
}

// UnknownConvertError is returned when the convert mode is not one of the
// modes in casing.Modes.
type UnknownConvertError struct {
	Mode casing.Mode
}

func (e *UnknownConvertError) Error() string {
	return fmt.Sprintf("Unknown convert value %q. Available: %s", string(e.Mode), strings.Join(casing.Modes(), ", "))
}

// Exported is a variable written to the store.
type Exported struct {
	Key   string
	Value string
	Kind  record.Kind
}

// Exporter writes records to a Store.
type Exporter struct {
	cfg    *Config
	store  Store
	logger logger.Logger
}

// New returns an Exporter. It logs the include and exclude lists in use at
// debug level.
func New(l logger.Logger, cfg *Config, store Store) *Exporter {
	if cfg.Include != nil {
		l.Debug("Using include list: %s", patterns(cfg.Include))
	} else {
		l.Debug("Using include list: (all keys)")
	}
	l.Debug("Using exclude list: %s", patterns(cfg.Exclude))

	return &Exporter{
		cfg:    cfg,
		store:  store,
		logger: l,
	}
}

// Export writes every key of rec that passes the filters to the store. Keys
// are handled in sorted order, each on its own; an error aborts the export
// but keeps whatever was written before it.
func (e *Exporter) Export(rec record.Record, kind record.Kind) ([]Exported, error) {
	var exported []Exported

	for _, key := range rec.Keys() {
		if e.cfg.Include != nil && !matchAny(e.cfg.Include, key) {
			continue
		}
		if matchAny(e.cfg.Exclude, key) {
			continue
		}

		newKey, err := e.Rename(key)
		if err != nil {
			return exported, err
		}

		// An empty value is treated as unset, matching how the runner
		// treats empty variables.
		if existing, _ := e.store.Get(newKey); existing != "" {
			if !e.cfg.Override {
				e.logger.Info("Skip overwriting %s %s", kind, newKey)
				continue
			}
			e.logger.Warn("Will re-write %q environment variable.", newKey)
		}

		if err := e.store.Export(newKey, rec[key]); err != nil {
			return exported, fmt.Errorf("exporting %s %s: %w", kind, newKey, err)
		}
		e.logger.Info("Exported %s %s", kind, newKey)

		exported = append(exported, Exported{Key: newKey, Value: rec[key], Kind: kind})
	}

	return exported, nil
}

// Rename returns the name key is exported under.
func (e *Exporter) Rename(key string) (string, error) {
	prefix := e.cfg.Prefix
	newKey := prefix + key

	if e.cfg.Convert == casing.None {
		return newKey, nil
	}

	convert, ok := casing.Lookup(e.cfg.Convert)
	if !ok {
		return "", &UnknownConvertError{Mode: e.cfg.Convert}
	}

	if e.cfg.ConvertPrefix {
		return convert(newKey), nil
	}

	// Only the key after the prefix is converted.
	return prefix + convert(strings.Replace(newKey, prefix, "", 1)), nil
}
