package exporter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/buildkite/secrets-to-env/internal/casing"
)

// BuiltinExclude is always excluded: the runner already exports the job
// token itself.
const BuiltinExclude = "github_token"

// Config controls which keys are exported and under what names.
type Config struct {
	// Include, when non-nil, limits export to keys matching at least one
	// pattern. A nil Include matches every key.
	Include []*regexp.Regexp

	// Exclude skips keys matching any pattern. NewConfig always adds
	// BuiltinExclude.
	Exclude []*regexp.Regexp

	Prefix        string
	Convert       casing.Mode
	ConvertPrefix bool
	Override      bool
}

// Options is the unparsed form of a Config, as it comes from the command
// line.
type Options struct {
	// Include and Exclude are comma separated lists of regular expressions.
	Include string
	Exclude string

	Prefix        string
	Convert       string
	ConvertPrefix bool
	Override      bool
}

// NewConfig compiles the include and exclude lists in opts.
//
// Patterns match anywhere in a key, the way an unanchored regular
// expression search does: "KEY" matches "API_KEY_ID". Anchor patterns
// with ^ and $ to match whole keys.
func NewConfig(opts Options) (*Config, error) {
	cfg := &Config{
		Prefix:        opts.Prefix,
		Convert:       casing.Mode(opts.Convert),
		ConvertPrefix: opts.ConvertPrefix,
		Override:      opts.Override,
	}

	if opts.Include != "" {
		include, err := compile("include", splitList(opts.Include))
		if err != nil {
			return nil, err
		}
		cfg.Include = include
	}

	excludes := []string{BuiltinExclude}
	if opts.Exclude != "" {
		excludes = append(excludes, splitList(opts.Exclude)...)
	}
	exclude, err := compile("exclude", excludes)
	if err != nil {
		return nil, err
	}
	cfg.Exclude = exclude

	return cfg, nil
}

// splitList splits a comma separated list and trims each item. Empty items
// are kept: an empty pattern matches every key.
func splitList(s string) []string {
	items := strings.Split(s, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}

func compile(list string, patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", list, p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func patterns(res []*regexp.Regexp) string {
	ps := make([]string, 0, len(res))
	for _, re := range res {
		ps = append(ps, re.String())
	}
	return strings.Join(ps, ", ")
}

func matchAny(res []*regexp.Regexp, key string) bool {
	for _, re := range res {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}
