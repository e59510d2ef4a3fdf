package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	rec, err := Parse(context.Background(), Secret, `{"API_KEY":"llama","github_token":"ghs_123"}`)
	require.NoError(t, err)

	assert.Equal(t, Record{"API_KEY": "llama", "github_token": "ghs_123"}, rec)
	assert.Equal(t, []string{"API_KEY", "github_token"}, rec.Keys())
}

func TestParseEmptyObject(t *testing.T) {
	t.Parallel()

	rec, err := Parse(context.Background(), Variable, `{}`)
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind Kind
		data string
		want string
	}{
		{
			name: "invalid secrets",
			kind: Secret,
			data: `{"API_KEY":`,
			want: "Cannot parse JSON secrets.\nMake sure you add the following to this action:\n\nwith:\n      secrets: ${{ toJSON(secrets) }}\n",
		},
		{
			name: "invalid variables",
			kind: Variable,
			data: `not json`,
			want: "Cannot parse JSON variables.\nMake sure you add the following to this action:\n\nwith:\n      variables: ${{ toJSON(vars) }}\n",
		},
		{
			name: "empty input",
			kind: Secret,
			data: ``,
			want: "Cannot parse JSON secrets.\nMake sure you add the following to this action:\n\nwith:\n      secrets: ${{ toJSON(secrets) }}\n",
		},
		{
			name: "array",
			kind: Variable,
			data: `["a", "b"]`,
			want: "Cannot parse JSON variables.\nMake sure you add the following to this action:\n\nwith:\n      variables: ${{ toJSON(vars) }}\n",
		},
		{
			name: "number value",
			kind: Variable,
			data: `{"N":1}`,
			want: "Cannot parse JSON variables.\nMake sure you add the following to this action:\n\nwith:\n      variables: ${{ toJSON(vars) }}\n",
		},
		{
			name: "nested object",
			kind: Secret,
			data: `{"A":{"B":"c"}}`,
			want: "Cannot parse JSON secrets.\nMake sure you add the following to this action:\n\nwith:\n      secrets: ${{ toJSON(secrets) }}\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			rec, err := Parse(context.Background(), test.kind, test.data)
			assert.Nil(t, rec)
			require.Error(t, err)

			var malformed *MalformedError
			require.True(t, errors.As(err, &malformed), "error should be a *MalformedError, got %T", err)
			assert.Equal(t, test.kind, malformed.Kind)
			assert.Equal(t, test.want, err.Error())
			assert.Error(t, errors.Unwrap(err))
		})
	}
}
