package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/aretw0/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "datamodel version "+datamodel.Version+"\n", out)
}

func TestValidate_MemoryStore(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	out, err := run(t, "validate", "--config", cfg, "--store", "memory", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "0 schemas and 0 records are valid")
}

func TestValidate_BadOverride(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := run(t, "validate", "--config", cfg, "--store", "etcd")
	assert.Error(t, err)
}
