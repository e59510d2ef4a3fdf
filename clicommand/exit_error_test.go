package clicommand

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintMessageAndReturnExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{
			name:     "nil",
			err:      nil,
			wantCode: 0,
		},
		{
			name:     "plain error",
			err:      errors.New("llamas escaped"),
			wantCode: 1,
			wantOut:  "secrets-to-env: fatal: llamas escaped\n",
		},
		{
			name:     "exit error",
			err:      fmt.Errorf("wrapped: %w", NewExitError(3, errors.New("alpacas escaped"))),
			wantCode: 3,
			wantOut:  "secrets-to-env: fatal: wrapped: alpacas escaped\n",
		},
		{
			name:     "silent exit error",
			err:      NewSilentExitError(2),
			wantCode: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			assert.Equal(t, test.wantCode, PrintMessageAndReturnExitCode(&out, test.err))
			assert.Equal(t, test.wantOut, out.String())
		})
	}
}

func TestExitErrorIs(t *testing.T) {
	t.Parallel()

	err := NewExitError(4, errors.New("oops"))
	assert.ErrorIs(t, err, NewExitError(4, nil))
	assert.NotErrorIs(t, err, NewExitError(5, nil))
	assert.NotErrorIs(t, err, NewSilentExitError(4))
}
