package ports

import "context-bisect/internal/types"

type RepoIndexPort interface {
	// Scheme reports the version-ordering rules this repository uses.
	Scheme() (types.VersionScheme, error)
	AvailableVersions(name string) ([]string, error)
	// Requires returns the request tokens pulled in by one exact
	// (name, version) pair.
	Requires(name string, version string) ([]string, error)
}
