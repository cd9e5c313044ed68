package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.geojson")
	require.NoError(t, os.WriteFile(in, []byte("Name,Lat,Lon\nA,1,2\n"), 0o600))

	require.NoError(t, run([]string{in, out}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FeatureCollection"`)
}

func TestRun_MissingInput(t *testing.T) {
	err := run([]string{filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input CSV not found")
}
