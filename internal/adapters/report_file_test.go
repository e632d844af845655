package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"context-bisect/internal/types"
)

func TestReportFileWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary.yaml")
	summary := types.BisectSummary{
		LastGood: 1,
		FirstBad: 2,
		Diff: types.DiffResult{
			Newer: []types.ResolvedPackage{{Name: "foo", Version: "1.2.0"}},
		},
	}
	require.NoError(t, NewReportFileAdapter().WriteSummary(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded types.BisectSummary
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, summary, loaded)
}
