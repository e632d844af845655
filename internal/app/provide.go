package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"context-bisect/internal/adapters"
	"context-bisect/internal/core"
	"context-bisect/internal/ports"
	"context-bisect/internal/shared"
	"context-bisect/internal/types"
)

// ResolveOrLoadAll converts a mixed list of snapshot references and raw
// request strings into snapshots. It fails atomically: a validation
// pass collects every missing file and every failed resolve, and only
// when that pass finds zero errors does the construction pass assemble
// the result. Resolves from the validation pass are reused, not redone.
func (s Service) ResolveOrLoadAll(ctx context.Context, items []string, root string, resolver ports.ResolverPort) ([]types.Snapshot, error) {
	if len(items) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no snapshot references or requests given")
	}

	missing := map[string]struct{}{}
	failed := map[string]struct{}{}
	resolvedRequests := map[string]types.Snapshot{}

	for _, item := range items {
		if adapters.IsSnapshotReference(item) {
			path := normalizePath(item, root)
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				missing[item] = struct{}{}
			}
			continue
		}
		if _, ok := resolvedRequests[item]; ok {
			continue
		}
		request, err := core.ParseRequest(item, "input")
		if err != nil {
			failed[item] = struct{}{}
			continue
		}
		if resolver == nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("request %q requires a repo index to resolve", item))
		}
		snapshot, err := resolver.Resolve(ctx, request)
		if err != nil || !snapshot.Success {
			failed[item] = struct{}{}
			continue
		}
		resolvedRequests[item] = snapshot
	}

	if len(missing) > 0 || len(failed) > 0 {
		return nil, badRequest(missing, failed)
	}

	snapshots := make([]types.Snapshot, 0, len(items))
	for _, item := range items {
		if adapters.IsSnapshotReference(item) {
			snapshot, err := s.SnapshotStore.Load(normalizePath(item, root))
			if err != nil {
				return nil, err
			}
			snapshots = append(snapshots, snapshot)
			continue
		}
		snapshots = append(snapshots, resolvedRequests[item])
	}
	return snapshots, nil
}

// badRequest aggregates every offending input into one error, so the
// caller sees the full list rather than the first failure.
func badRequest(missing map[string]struct{}, failed map[string]struct{}) error {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("snapshot files [%s] do not exist on-disk", shared.JoinSorted(missing)))
	}
	if len(failed) > 0 {
		parts = append(parts, fmt.Sprintf("requests [%s] were not resolvable", shared.JoinSorted(failed)))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("bad request: " + strings.Join(parts, "; "))
}

func normalizePath(item string, root string) string {
	if filepath.IsAbs(item) || root == "" {
		return item
	}
	return filepath.Join(root, item)
}
