// Package redaction masks secret values in log output.
//
// It is intended for internal use by secrets-to-env only.
package redaction

import (
	"cmp"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/buildkite/secrets-to-env/logger"
)

// LengthMin is the shortest string length that will be considered a
// potential secret. e.g. if a secret named API_TOKEN is set to "none", this
// minimum length will prevent the word "none" from being redacted from
// useful log output.
const LengthMin = 6

// Replacement is written in place of a redacted value.
const Replacement = "[REDACTED]"

// Redactor is an io.Writer that replaces needles with a fixed string before
// passing writes on to the wrapped writer. Needles are only found within a
// single Write call; every logger printer writes a whole line per call.
type Redactor struct {
	mu          sync.Mutex
	replacement string
	needles     []string
	replacer    *strings.Replacer
	output      io.Writer
}

// NewRedactor returns a Redactor writing to output.
func NewRedactor(output io.Writer, replacement string, needles []string) *Redactor {
	r := &Redactor{
		replacement: replacement,
		output:      output,
	}
	r.Reset(needles)
	return r
}

// SetOutput changes the writer that redacted output is passed on to.
func (r *Redactor) SetOutput(output io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.output = output
}

// Reset replaces the set of needles.
func (r *Redactor) Reset(needles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.needles = r.needles[:0]
	r.add(needles)
}

// Add adds needles to the set.
func (r *Redactor) Add(needles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.add(needles)
}

func (r *Redactor) add(needles []string) {
	for _, n := range needles {
		if n != "" && !slices.Contains(r.needles, n) {
			r.needles = append(r.needles, n)
		}
	}

	if len(r.needles) == 0 {
		r.replacer = nil
		return
	}

	// strings.Replacer tries old strings in argument order at each
	// position, so the longest needle has to come first for a secret that
	// contains another secret to be masked in full.
	slices.SortStableFunc(r.needles, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	oldnew := make([]string, 0, 2*len(r.needles))
	for _, n := range r.needles {
		oldnew = append(oldnew, n, r.replacement)
	}
	r.replacer = strings.NewReplacer(oldnew...)
}

func (r *Redactor) Write(p []byte) (int, error) {
	r.mu.Lock()
	replacer, output := r.replacer, r.output
	r.mu.Unlock()

	if replacer == nil {
		return output.Write(p)
	}

	if _, err := replacer.WriteString(output, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Needles returns the values of secrets that are long enough to redact,
// warning about any that are too short.
func Needles(l logger.Logger, secrets map[string]string) []string {
	var needles, short []string
	for _, name := range slices.Sorted(maps.Keys(secrets)) {
		value := secrets[name]
		switch {
		case len(value) >= LengthMin:
			needles = append(needles, value)
		case len(value) > 0:
			short = append(short, name)
		}
	}

	if len(short) > 0 {
		l.Warn("Some secrets have values below minimum length (%d bytes) and will not be redacted: %s", LengthMin, strings.Join(short, ", "))
	}
	return needles
}
