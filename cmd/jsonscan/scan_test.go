package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCmd_PrintsOneJSONLinePerMatch(t *testing.T) {
	dir := t.TempDir()

	patternsPath := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(patternsPath, []byte(`
patterns:
  - ["a"]
options:
  with_path: true
`), 0o644))

	inputPath := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(`{"a":1,"b":2}`), 0o644))

	patternsFile = ""
	withPath = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"scan", "--patterns", patternsPath, inputPath})
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var line matchLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, 0, line.Pattern)
	assert.Equal(t, uint64(5), line.Begin)
	assert.Equal(t, uint64(6), line.End)
	assert.Equal(t, "number", line.Kind)
	assert.NotEmpty(t, line.RunID)
}

func TestScanCmd_MissingPatternsFlagIsError(t *testing.T) {
	patternsFile = ""
	withPath = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"scan", filepath.Join(t.TempDir(), "missing.json")})
	err := rootCmd.Execute()
	require.Error(t, err)
}
