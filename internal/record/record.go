// Package record parses the JSON key-value payloads handed to the exporter
// by the CI platform.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Kind says where a record came from.
type Kind string

const (
	Secret   Kind = "secret"
	Variable Kind = "variable"
)

// Record maps names to values.
type Record map[string]string

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// A record must be a flat object of strings, which is what the toJSON
// expression function produces for secrets and vars contexts.
var schema = jsonschema.Must(`{
	"type": "object",
	"additionalProperties": { "type": "string" }
}`)

// MalformedError is returned when a payload is not a JSON object of strings.
type MalformedError struct {
	Kind Kind
	Err  error
}

func (e *MalformedError) Error() string {
	// The payload is produced by an expression in the workflow file, so the
	// most useful thing to say is how that expression should look.
	input, expr := "secrets", "toJSON(secrets)"
	if e.Kind == Variable {
		input, expr = "variables", "toJSON(vars)"
	}

	return fmt.Sprintf(`Cannot parse JSON %s.
Make sure you add the following to this action:

with:
      %s: ${{ %s }}
`, input, input, expr)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Parse decodes data as a record of the given kind.
func Parse(ctx context.Context, kind Kind, data string) (Record, error) {
	keyErrs, err := schema.ValidateBytes(ctx, []byte(data))
	if err != nil {
		return nil, &MalformedError{Kind: kind, Err: err}
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		return nil, &MalformedError{Kind: kind, Err: errors.New(strings.Join(msgs, "; "))}
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, &MalformedError{Kind: kind, Err: err}
	}
	return rec, nil
}
