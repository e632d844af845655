// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"context-bisect/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteRepoIndex marshals the index to repo-index.yaml under dir and
// returns its path.
func WriteRepoIndex(t *testing.T, dir string, index types.RepoIndexFile) string {
	t.Helper()
	raw, err := yaml.Marshal(index)
	require.NoError(t, err)
	path := filepath.Join(dir, "repo-index.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// WriteCheckScript writes an executable shell script under dir and
// returns its path.
func WriteCheckScript(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "check.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}
