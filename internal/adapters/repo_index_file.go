package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"context-bisect/internal/ports"
	"context-bisect/internal/types"
)

type RepoIndexFileAdapter struct {
	Path   string
	cached types.RepoIndexFile
	loaded bool
}

func NewRepoIndexFileAdapter(path string) *RepoIndexFileAdapter {
	return &RepoIndexFileAdapter{Path: path}
}

func (a *RepoIndexFileAdapter) Scheme() (types.VersionScheme, error) {
	index, err := a.load()
	if err != nil {
		return "", err
	}
	if index.Scheme == "" {
		return types.VersionSchemeDeb, nil
	}
	return index.Scheme, nil
}

func (a *RepoIndexFileAdapter) AvailableVersions(name string) ([]string, error) {
	index, err := a.load()
	if err != nil {
		return nil, err
	}
	entries := index.Packages[name]
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Version == "" {
			continue
		}
		versions = append(versions, entry.Version)
	}
	return versions, nil
}

func (a *RepoIndexFileAdapter) Requires(name string, version string) ([]string, error) {
	index, err := a.load()
	if err != nil {
		return nil, err
	}
	for _, entry := range index.Packages[name] {
		if entry.Version == version {
			return entry.Requires, nil
		}
	}
	return nil, nil
}

func (a *RepoIndexFileAdapter) load() (types.RepoIndexFile, error) {
	if a.loaded {
		return a.cached, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return types.RepoIndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("repo index file not found").
			WithCause(err)
	}
	var idx types.RepoIndexFile
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return types.RepoIndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid repo index format").
			WithCause(err)
	}
	if idx.Packages == nil {
		idx.Packages = map[string][]types.PackageVersionEntry{}
	}
	switch idx.Scheme {
	case "", types.VersionSchemeDeb, types.VersionSchemePep440:
	default:
		return types.RepoIndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown version scheme: " + string(idx.Scheme))
	}
	a.cached = idx
	a.loaded = true
	return idx, nil
}

var _ ports.RepoIndexPort = (*RepoIndexFileAdapter)(nil)
