package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/wirevalue/values"
	"github.com/mcncl/wirevalue/wire"
)

func TestExtractPath(t *testing.T) {
	v, err := wire.DecodeString(`{"data": {"spells": [{"name": "fireball"}, {"name": "frostbolt"}]}}`)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected values.Value
		wantErr  string
	}{
		{
			name:     "object keys",
			path:     "data",
			expected: values.At(v, "data"),
		},
		{
			name:     "mixed keys and indices",
			path:     "data.spells.1.name",
			expected: values.StringV("frostbolt"),
		},
		{
			name:    "missing key",
			path:    "data.missing",
			wantErr: "Missing object key: missing",
		},
		{
			name:    "index out of bounds",
			path:    "data.spells.5",
			wantErr: "Missing array index: 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extracted, err := extractPath(v, tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.True(t, extracted.Equals(tt.expected))
		})
	}
}

func TestRenderOutput(t *testing.T) {
	v := values.Obj(values.Pair{Key: "a", Value: values.LongV(1)})

	CLI.Render = false
	CLI.Compact = true
	out, err := renderOutput(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	CLI.Compact = false
	out, err = renderOutput(v)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)

	CLI.Render = true
	out, err = renderOutput(v)
	require.NoError(t, err)
	assert.Equal(t, "{a: 1}", out)

	CLI.Render = false
}
