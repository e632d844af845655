package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context-bisect/internal/types"
)

type testRepoIndex struct {
	scheme   types.VersionScheme
	versions map[string][]string
	requires map[string][]string
	lookups  int
}

func (t *testRepoIndex) Scheme() (types.VersionScheme, error) {
	if t.scheme == "" {
		return types.VersionSchemeDeb, nil
	}
	return t.scheme, nil
}

func (t *testRepoIndex) AvailableVersions(name string) ([]string, error) {
	t.lookups++
	return t.versions[name], nil
}

func (t *testRepoIndex) Requires(name string, version string) ([]string, error) {
	return t.requires[name+"-"+version], nil
}

func mustParse(t *testing.T, raw string) types.Request {
	t.Helper()
	request, err := ParseRequest(raw, "test")
	require.NoError(t, err)
	return request
}

func TestResolverPicksBestCompatible(t *testing.T) {
	repo := &testRepoIndex{
		versions: map[string][]string{
			"foo": {"1.0.0", "1.2.0", "2.0.0"},
		},
	}
	resolver := NewResolverCore(repo, nil)

	snapshot, err := resolver.Resolve(t.Context(), mustParse(t, "foo>=1.0 foo<2.0"))
	require.NoError(t, err)
	require.True(t, snapshot.Success)
	require.Len(t, snapshot.Packages, 1)
	assert.Equal(t, types.ResolvedPackage{Name: "foo", Version: "1.2.0"}, snapshot.Packages[0])
}

func TestResolverWalksRequires(t *testing.T) {
	repo := &testRepoIndex{
		versions: map[string][]string{
			"app": {"1.0.0", "1.2.0"},
			"lib": {"0.9.0", "1.0.0", "2.0.0"},
			"dep": {"3.0.0"},
		},
		requires: map[string][]string{
			"app-1.2.0": {"lib>=1.0", "lib<2.0"},
			"lib-1.0.0": {"dep"},
		},
	}
	resolver := NewResolverCore(repo, nil)

	snapshot, err := resolver.Resolve(t.Context(), mustParse(t, "app"))
	require.NoError(t, err)

	want := []types.ResolvedPackage{
		{Name: "app", Version: "1.2.0"},
		{Name: "dep", Version: "3.0.0"},
		{Name: "lib", Version: "1.0.0"},
	}
	assert.Equal(t, want, snapshot.Packages)
}

func TestResolverConflict(t *testing.T) {
	repo := &testRepoIndex{
		versions: map[string][]string{
			"foo": {"1.0.0", "1.2.0"},
		},
	}
	resolver := NewResolverCore(repo, nil)

	_, err := resolver.Resolve(t.Context(), mustParse(t, "foo>=2.0"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestResolverUnknownPackage(t *testing.T) {
	repo := &testRepoIndex{versions: map[string][]string{}}
	resolver := NewResolverCore(repo, nil)

	_, err := resolver.Resolve(t.Context(), mustParse(t, "ghost"))
	require.Error(t, err)
}

func TestResolverCacheHitAndClear(t *testing.T) {
	repo := &testRepoIndex{
		versions: map[string][]string{
			"foo": {"1.0.0"},
		},
	}
	cache := NewResolveCache()
	resolver := NewResolverCore(repo, cache)

	_, err := resolver.Resolve(t.Context(), mustParse(t, "foo"))
	require.NoError(t, err)
	lookupsAfterFirst := repo.lookups
	assert.Equal(t, 1, cache.Len())

	_, err = resolver.Resolve(t.Context(), mustParse(t, "foo"))
	require.NoError(t, err)
	assert.Equal(t, lookupsAfterFirst, repo.lookups, "second resolve should hit the cache")

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	_, err = resolver.Resolve(t.Context(), mustParse(t, "foo"))
	require.NoError(t, err)
	assert.Greater(t, repo.lookups, lookupsAfterFirst)
}

func TestResolverEmptyRequest(t *testing.T) {
	resolver := NewResolverCore(&testRepoIndex{}, nil)
	_, err := resolver.Resolve(t.Context(), types.Request{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestResolverPep440Scheme(t *testing.T) {
	repo := &testRepoIndex{
		scheme: types.VersionSchemePep440,
		versions: map[string][]string{
			"pandas": {"2.0.0", "2.1.3", "2.1.4"},
		},
	}
	resolver := NewResolverCore(repo, nil)

	snapshot, err := resolver.Resolve(t.Context(), mustParse(t, "pandas~=2.1.0"))
	require.NoError(t, err)
	assert.Equal(t, types.VersionSchemePep440, snapshot.Scheme)
	assert.Equal(t, "2.1.4", snapshot.Packages[0].Version)
}
