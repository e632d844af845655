package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"context-bisect/internal/ports"
	"context-bisect/internal/types"
)

// SnapshotSuffix is the reserved file suffix for serialized snapshots.
const SnapshotSuffix = ".ctx"

// IsSnapshotReference reports whether an input item names a snapshot
// file rather than a raw request string.
func IsSnapshotReference(item string) bool {
	return strings.HasSuffix(item, SnapshotSuffix)
}

type SnapshotFileAdapter struct{}

func NewSnapshotFileAdapter() SnapshotFileAdapter {
	return SnapshotFileAdapter{}
}

func (a SnapshotFileAdapter) Load(path string) (types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("snapshot file not found: " + path).
			WithCause(err)
	}
	var snapshot types.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid snapshot file: " + path).
			WithCause(err)
	}
	if snapshot.Scheme == "" {
		snapshot.Scheme = types.VersionSchemeDeb
	}
	return snapshot, nil
}

func (a SnapshotFileAdapter) Save(path string, snapshot types.Snapshot) error {
	if !IsSnapshotReference(path) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("snapshot path must end in " + SnapshotSuffix)
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize snapshot").
			WithCause(err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create snapshot directory").
				WithCause(err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write snapshot file").
			WithCause(err)
	}
	return nil
}

var _ ports.SnapshotStorePort = SnapshotFileAdapter{}
