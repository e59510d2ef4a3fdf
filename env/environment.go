// Package env provides utilities for dealing with environment variables.
//
// It is intended for internal use by secrets-to-env only.
package env

import (
	"runtime"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
)

// Environment is a map of environment variables, with the keys normalized
// for case-insensitive operating systems
type Environment struct {
	underlying *xsync.MapOf[string, string]
}

func New() *Environment {
	return &Environment{underlying: xsync.NewMapOf[string]()}
}

func NewWithLength(length int) *Environment {
	return &Environment{underlying: xsync.NewMapOfPresized[string](length)}
}

// Split splits an environment variable (in the form "name=value") into the name
// and value substrings. If there is no '=', or the first '=' is at the start,
// it returns `"", "", false`.
func Split(l string) (name, value string, ok bool) {
	// Windows creates variables beginning with '=' (see
	// https://github.com/golang/go/issues/49886); they are never ours to
	// export over, so they are dropped.
	i := strings.IndexRune(l, '=')
	if i <= 0 {
		return "", "", false
	}
	return l[:i], l[i+1:], true
}

// FromSlice creates a new environment from a string slice of KEY=VALUE, such
// as the one returned by os.Environ.
func FromSlice(s []string) *Environment {
	env := NewWithLength(len(s))
	for _, l := range s {
		if k, v, ok := Split(l); ok {
			env.Set(k, v)
		}
	}
	return env
}

// Get returns a key from the environment
func (e *Environment) Get(key string) (string, bool) {
	return e.underlying.Load(normalizeKeyName(key))
}

// Exists returns true/false depending on whether or not the key exists in the env
func (e *Environment) Exists(key string) bool {
	_, ok := e.underlying.Load(normalizeKeyName(key))
	return ok
}

// Set sets a key in the environment
func (e *Environment) Set(key string, value string) string {
	e.underlying.Store(normalizeKeyName(key), value)
	return value
}

// Export sets a key in the environment. It never fails, and lets an
// Environment stand in for the real process environment as an export
// destination.
func (e *Environment) Export(key, value string) error {
	e.Set(key, value)
	return nil
}

// Length returns the length of the environment
func (e *Environment) Length() int {
	return e.underlying.Size()
}

// Diff returns the changes that would turn other into this environment.
func (e *Environment) Diff(other *Environment) Diff {
	diff := Diff{
		Added:   make(map[string]string),
		Changed: make(map[string]DiffPair),
		Removed: make(map[string]struct{}),
	}

	if other == nil {
		e.underlying.Range(func(k, v string) bool {
			diff.Added[k] = v
			return true
		})
		return diff
	}

	e.underlying.Range(func(k, v string) bool {
		old, ok := other.Get(k)
		switch {
		case !ok:
			diff.Added[k] = v
		case old != v:
			diff.Changed[k] = DiffPair{Old: old, New: v}
		}
		return true
	})

	other.underlying.Range(func(k, _ string) bool {
		if !e.Exists(k) {
			diff.Removed[k] = struct{}{}
		}
		return true
	})

	return diff
}

// Copy returns a copy of the env
func (e *Environment) Copy() *Environment {
	if e == nil {
		return New()
	}

	c := NewWithLength(e.Length())
	e.underlying.Range(func(k, v string) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// ToSlice returns a sorted slice representation of the environment
func (e *Environment) ToSlice() []string {
	s := []string{}
	e.underlying.Range(func(k, v string) bool {
		s = append(s, k+"="+v)
		return true
	})

	// Ensure they are in a consistent order (helpful for tests)
	sort.Strings(s)

	return s
}

// Environment variables on Windows are case-insensitive: PATH, Path and pATH
// all name the same variable, and os.Environ returns whatever casing the
// variable was created with. Keys are uppercased on Windows so that a
// secret exported as "Path" is seen to collide with an existing "PATH".
//
// Unix systems _are_ case sensitive when it comes to ENV, so we'll just leave
// that alone.
func normalizeKeyName(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}

// Diff is the set of changes between two environments.
type Diff struct {
	Added   map[string]string
	Changed map[string]DiffPair
	Removed map[string]struct{}
}

type DiffPair struct {
	Old string
	New string
}

func (diff *Diff) Empty() bool {
	return len(diff.Added) == 0 && len(diff.Changed) == 0 && len(diff.Removed) == 0
}
