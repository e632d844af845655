package ports

import "context-bisect/internal/types"

// SnapshotStorePort loads and saves serialized snapshot (.ctx) files.
// The file format is owned by the adapter; the core treats snapshots
// as opaque values.
type SnapshotStorePort interface {
	Load(path string) (types.Snapshot, error)
	Save(path string, snapshot types.Snapshot) error
}
