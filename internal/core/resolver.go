package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"context-bisect/internal/ports"
	"context-bisect/internal/types"
)

// maxResolveRounds bounds the transitive-requires fixpoint loop so a
// cyclic index cannot spin forever.
const maxResolveRounds = 100

// ResolveCache memoizes resolved snapshots keyed by canonical request
// string. It is explicit state owned by the caller, with Clear exposed
// so tests can drop memoized resolves between scenarios.
type ResolveCache struct {
	snapshots map[string]types.Snapshot
}

func NewResolveCache() *ResolveCache {
	return &ResolveCache{snapshots: map[string]types.Snapshot{}}
}

func (c *ResolveCache) lookup(key string) (types.Snapshot, bool) {
	snapshot, ok := c.snapshots[key]
	return snapshot, ok
}

func (c *ResolveCache) store(key string, snapshot types.Snapshot) {
	c.snapshots[key] = snapshot
}

// Clear drops every memoized snapshot.
func (c *ResolveCache) Clear() {
	c.snapshots = map[string]types.Snapshot{}
}

// Len reports how many snapshots are memoized.
func (c *ResolveCache) Len() int {
	return len(c.snapshots)
}

// ResolverCore is the reference ResolverPort implementation: greedy
// best-compatible selection over a repo index, walking the requires of
// each selected version until the package set is stable.
type ResolverCore struct {
	RepoIndex ports.RepoIndexPort
	Cache     *ResolveCache
}

func NewResolverCore(repoIndex ports.RepoIndexPort, cache *ResolveCache) ResolverCore {
	if cache == nil {
		cache = NewResolveCache()
	}
	return ResolverCore{RepoIndex: repoIndex, Cache: cache}
}

func (r ResolverCore) Resolve(ctx context.Context, request types.Request) (types.Snapshot, error) {
	if r.RepoIndex == nil {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires a repo index port")
	}
	if len(request.Constraints) == 0 {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty request")
	}
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, err
	}

	key := request.String()
	if snapshot, ok := r.Cache.lookup(key); ok {
		return snapshot, nil
	}

	scheme, err := r.RepoIndex.Scheme()
	if err != nil {
		return types.Snapshot{}, err
	}
	versions := newVersionCache(scheme)

	constraintsByName := map[string][]types.Constraint{}
	seenConstraints := map[string]struct{}{}
	addConstraint := func(constraint types.Constraint) bool {
		token := constraint.Name + "\x00" + constraint.String()
		if _, ok := seenConstraints[token]; ok {
			return false
		}
		seenConstraints[token] = struct{}{}
		constraintsByName[constraint.Name] = append(constraintsByName[constraint.Name], constraint)
		return true
	}
	for _, constraint := range request.Constraints {
		addConstraint(constraint)
	}

	selected := map[string]string{}
	converged := false
	for round := 0; round < maxResolveRounds; round++ {
		changed := false
		for _, name := range sortedNames(constraintsByName) {
			available, err := r.RepoIndex.AvailableVersions(name)
			if err != nil {
				return types.Snapshot{}, err
			}
			version, err := bestCompatibleVersion(name, constraintsByName[name], available, versions)
			if err != nil {
				return types.Snapshot{}, errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg(fmt.Sprintf("request %q did not resolve", key)).
					WithCause(err)
			}
			if selected[name] == version {
				continue
			}
			selected[name] = version
			changed = true
			requires, err := r.RepoIndex.Requires(name, version)
			if err != nil {
				return types.Snapshot{}, err
			}
			for _, token := range requires {
				constraint, err := ParseConstraint(token, "requires:"+name)
				if err != nil {
					return types.Snapshot{}, err
				}
				addConstraint(constraint)
			}
		}
		if !changed {
			converged = true
			break
		}
	}
	if !converged {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("request %q did not converge", key))
	}

	snapshot := types.Snapshot{
		Requests: []string{key},
		Scheme:   scheme,
		Success:  true,
	}
	for _, name := range sortedNames(constraintsByName) {
		snapshot.Packages = append(snapshot.Packages, types.ResolvedPackage{
			Name:    name,
			Version: selected[name],
		})
	}
	r.Cache.store(key, snapshot)
	log.Ctx(ctx).Debug().Str("request", key).Int("packages", len(snapshot.Packages)).Msg("request resolved")
	return snapshot, nil
}

func sortedNames(constraints map[string][]types.Constraint) []string {
	names := make([]string, 0, len(constraints))
	for name := range constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ ports.ResolverPort = ResolverCore{}
