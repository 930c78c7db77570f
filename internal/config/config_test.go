package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crescent617/jsonscan/jsonpath"
)

func TestDecode_MixedEntryShapes(t *testing.T) {
	patterns, opts, err := Decode([]byte(`
patterns:
  - ["a"]
  - ["b", 1]
  - ["c", {range: [0, -1]}]
  - [{any_key: true}]
options:
  with_path: true
  allow_comments: true
`))
	require.NoError(t, err)
	require.Len(t, patterns, 4)

	assert.Equal(t, jsonpath.Pattern{jsonpath.Key("a")}, patterns[0])
	assert.Equal(t, jsonpath.Pattern{jsonpath.Key("b"), jsonpath.Index(1)}, patterns[1])
	assert.Equal(t, jsonpath.Pattern{jsonpath.Key("c"), jsonpath.Range(0, -1)}, patterns[2])
	assert.Equal(t, jsonpath.Pattern{jsonpath.AnyKey}, patterns[3])

	assert.True(t, opts.WithPath)
	assert.True(t, opts.AllowComments)
	assert.False(t, opts.AllowPartialValues)
}

func TestDecode_RejectsUnrecognizedMapping(t *testing.T) {
	_, _, err := Decode([]byte(`patterns: [[{bogus: true}]]`))
	require.Error(t, err)
}

func TestDecode_EmptyPatternDecodesToEmptyEntryList(t *testing.T) {
	patterns, _, err := Decode([]byte(`patterns: [[]]`))
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Empty(t, patterns[0])
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, _, err := Load("/nonexistent/patterns.yaml")
	require.Error(t, err)
}
