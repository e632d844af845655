package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"context-bisect/internal/types"
)

// Diff computes the classified delta between two successful snapshots.
// A package present in both sides with an identical version appears in
// no category; a name never appears in more than one category.
func Diff(before types.Snapshot, after types.Snapshot) (types.DiffResult, error) {
	if !before.Success || !after.Success {
		return types.DiffResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("cannot diff snapshots that did not resolve")
	}
	if before.Scheme != after.Scheme {
		return types.DiffResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("snapshot schemes differ: %s vs %s", before.Scheme, after.Scheme))
	}

	cache := newVersionCache(after.Scheme)
	beforeVersions := before.PackageVersions()
	afterVersions := after.PackageVersions()

	var result types.DiffResult
	for name, version := range afterVersions {
		previous, ok := beforeVersions[name]
		if !ok {
			result.Added = append(result.Added, types.ResolvedPackage{Name: name, Version: version})
			continue
		}
		if previous == version {
			continue
		}
		order, err := cache.compareStrict(version, previous)
		if err != nil {
			return types.DiffResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unparsable version for %s", name)).
				WithCause(err)
		}
		if order == 0 {
			// Spelled differently but the same version under the
			// scheme (e.g. "1.0" vs "1.00").
			continue
		}
		entry := types.ResolvedPackage{Name: name, Version: version}
		if order > 0 {
			result.Newer = append(result.Newer, entry)
		} else {
			result.Older = append(result.Older, entry)
		}
	}
	for name, version := range beforeVersions {
		if _, ok := afterVersions[name]; !ok {
			result.Removed = append(result.Removed, types.ResolvedPackage{Name: name, Version: version})
		}
	}

	sortPackages(result.Added)
	sortPackages(result.Removed)
	sortPackages(result.Newer)
	sortPackages(result.Older)
	return result, nil
}

func sortPackages(packages []types.ResolvedPackage) {
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
}
