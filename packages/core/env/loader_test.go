package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSystemEnv(t *testing.T) {
	t.Setenv("GIRAF_BASE_URL", "http://sys:5000")
	t.Setenv("OTHER_VAR", "x")

	vars := LoadSystemEnv(Prefix)
	assert.Equal(t, "http://sys:5000", vars["BASE_URL"])
	_, ok := vars["OTHER_VAR"]
	assert.False(t, ok)

	all := LoadSystemEnv("")
	assert.Equal(t, "x", all["OTHER_VAR"])
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "giraf.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GIRAF_BASE_URL=http://file:5000\nGIRAF_BAIL=true\nIGNORED=1\n"), 0644))
	t.Setenv("GIRAF_BASE_URL", "http://sys:5000")

	vars, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://sys:5000", vars["BASE_URL"])
	assert.Equal(t, "true", vars["BAIL"])
	_, ok := vars["IGNORED"]
	assert.False(t, ok)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := Merge(map[string]string{"A": "1", "B": "1"}, map[string]string{"B": "2"}, nil)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged)
}
