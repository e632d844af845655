package core

import (
	"context"
	"math"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context-bisect/internal/policies"
	"context-bisect/internal/types"
)

type fakeResolver struct {
	snapshots map[string]types.Snapshot
	failing   map[string]bool
	calls     []string
}

func (f *fakeResolver) Resolve(_ context.Context, request types.Request) (types.Snapshot, error) {
	key := request.String()
	f.calls = append(f.calls, key)
	if f.failing[key] {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("request " + key + " did not resolve")
	}
	snapshot, ok := f.snapshots[key]
	if !ok {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("unexpected request: " + key)
	}
	return snapshot, nil
}

func hasPackage(name string) func(context.Context, types.Snapshot) (bool, error) {
	return func(_ context.Context, snapshot types.Snapshot) (bool, error) {
		_, ok := snapshot.Resolved(name)
		return ok, nil
	}
}

func TestBisectSinglePackageRegression(t *testing.T) {
	versions := []string{"1.0.0", "1.1.0", "1.2.0", "1.2.1", "1.2.2", "1.3.0"}
	bad := map[string]bool{"1.2.0": true, "1.2.1": true, "1.2.2": true, "1.3.0": true}

	var snapshots []types.Snapshot
	for _, version := range versions {
		snapshots = append(snapshots, makeSnapshot(map[string]string{"foo": version}))
	}

	checks := 0
	hasIssue := func(_ context.Context, snapshot types.Snapshot) (bool, error) {
		checks++
		pkg, ok := snapshot.Resolved("foo")
		require.True(t, ok)
		return bad[pkg.Version], nil
	}

	summary, err := NewBisectEngine(nil).Bisect(t.Context(), hasIssue, snapshots)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LastGood)
	assert.Equal(t, 2, summary.FirstBad)
	require.Len(t, summary.Diff.Newer, 1)
	assert.Equal(t, types.ResolvedPackage{Name: "foo", Version: "1.2.0"}, summary.Diff.Newer[0])
	assert.Empty(t, summary.Diff.Added)
	assert.Empty(t, summary.Diff.Removed)
	assert.Empty(t, summary.Diff.Older)

	budget := int(math.Ceil(math.Log2(float64(len(snapshots)))))
	assert.LessOrEqual(t, checks, budget)
}

func TestBisectTwoSnapshotsSkipsCheck(t *testing.T) {
	snapshots := []types.Snapshot{
		makeSnapshot(map[string]string{"foo": "1.0.0"}),
		makeSnapshot(map[string]string{"foo": "2.0.0"}),
	}

	checks := 0
	hasIssue := func(context.Context, types.Snapshot) (bool, error) {
		checks++
		return true, nil
	}

	summary, err := NewBisectEngine(nil).Bisect(t.Context(), hasIssue, snapshots)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.LastGood)
	assert.Equal(t, 1, summary.FirstBad)
	assert.Equal(t, 0, checks)
}

func TestBisectTooFewSnapshots(t *testing.T) {
	engine := NewBisectEngine(nil)
	hasIssue := func(context.Context, types.Snapshot) (bool, error) { return false, nil }

	for _, snapshots := range [][]types.Snapshot{
		nil,
		{makeSnapshot(map[string]string{"foo": "1.0.0"})},
	} {
		_, err := engine.Bisect(t.Context(), hasIssue, snapshots)
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}

func TestBisectRejectsFailedSnapshot(t *testing.T) {
	snapshots := []types.Snapshot{
		makeSnapshot(map[string]string{"foo": "1.0.0"}),
		{Scheme: types.VersionSchemeDeb, Success: false},
		makeSnapshot(map[string]string{"foo": "2.0.0"}),
	}
	hasIssue := func(context.Context, types.Snapshot) (bool, error) { return true, nil }

	_, err := NewBisectEngine(nil).Bisect(t.Context(), hasIssue, snapshots)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestBisectCachesVerdicts(t *testing.T) {
	var snapshots []types.Snapshot
	for _, version := range []string{"1.0.0", "1.1.0", "1.2.0", "1.3.0", "1.4.0"} {
		snapshots = append(snapshots, makeSnapshot(map[string]string{"foo": version}))
	}

	seen := map[string]int{}
	hasIssue := func(_ context.Context, snapshot types.Snapshot) (bool, error) {
		pkg, _ := snapshot.Resolved("foo")
		seen[pkg.Version]++
		return pkg.Version >= "1.2.0", nil
	}

	_, err := NewBisectEngine(nil).Bisect(t.Context(), hasIssue, snapshots)
	require.NoError(t, err)
	for version, count := range seen {
		assert.Equal(t, 1, count, "version %s checked more than once", version)
	}
}

func TestValidateMonotonic(t *testing.T) {
	require.NoError(t, validateMonotonic(map[int]bool{1: false, 2: false, 3: true}))
	require.NoError(t, validateMonotonic(map[int]bool{}))

	err := validateMonotonic(map[int]bool{1: true, 3: false})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestMakeSummaryValidatesIndexes(t *testing.T) {
	snapshots := []types.Snapshot{
		makeSnapshot(map[string]string{"foo": "1.0.0"}),
		makeSnapshot(map[string]string{"foo": "2.0.0"}),
	}

	_, err := MakeSummary(0, 2, snapshots)
	require.Error(t, err)
	_, err = MakeSummary(1, 1, snapshots)
	require.Error(t, err)

	summary, err := MakeSummary(0, 1, snapshots)
	require.NoError(t, err)
	require.Len(t, summary.Diff.Newer, 1)
}

// ---------------------------------------------------------------------------
// partial mode
// ---------------------------------------------------------------------------

func partialFixture(t *testing.T) (*fakeResolver, []types.Request) {
	t.Helper()
	resolver := &fakeResolver{
		snapshots: map[string]types.Snapshot{
			"base==1.0.0":            makeSnapshot(map[string]string{"base": "1.0.0"}),
			"base==1.1.0":            makeSnapshot(map[string]string{"base": "1.1.0"}),
			"base==1.2.0 foo":        makeSnapshot(map[string]string{"base": "1.2.0", "foo": "1.0.0"}),
			"base==1.3.0 foo":        makeSnapshot(map[string]string{"base": "1.3.0", "foo": "1.0.0"}),
			"base==1.1.0 foo==1.0.0": makeSnapshot(map[string]string{"base": "1.1.0", "foo": "1.0.0"}),
		},
		failing: map[string]bool{},
	}
	var requests []types.Request
	for _, raw := range []string{"base==1.0.0", "base==1.1.0", "base==1.2.0 foo", "base==1.3.0 foo"} {
		request, err := ParseRequest(raw, "test")
		require.NoError(t, err)
		requests = append(requests, request)
	}
	return resolver, requests
}

func TestBisectRequestsAddedPackage(t *testing.T) {
	resolver, requests := partialFixture(t)
	matcher, err := policies.NewMatchPolicy([]string{"foo"})
	require.NoError(t, err)

	summary, err := NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests, matcher)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LastGood)
	assert.Equal(t, 2, summary.FirstBad)
	require.Len(t, summary.Diff.Added, 1)
	assert.Equal(t, "foo", summary.Diff.Added[0].Name)
	assert.Empty(t, summary.Diff.Newer)
}

func TestBisectRequestsNoMatcherReportsFullDiff(t *testing.T) {
	resolver, requests := partialFixture(t)

	summary, err := NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LastGood)
	assert.Equal(t, 2, summary.FirstBad)
	require.Len(t, summary.Diff.Added, 1)
	require.Len(t, summary.Diff.Newer, 1)
	assert.Equal(t, "base", summary.Diff.Newer[0].Name)
}

func TestBisectRequestsLazyResolution(t *testing.T) {
	resolver, requests := partialFixture(t)

	_, err := NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests, nil)
	require.NoError(t, err)

	// Only visited candidates resolve; with 4 requests the search needs
	// the two midpoints at most, plus the two boundary snapshots.
	for _, key := range resolver.calls {
		assert.Contains(t, resolver.snapshots, key)
	}
	assert.LessOrEqual(t, len(resolver.calls), 3)
}

func TestBisectRequestsResolveFailureIsFatal(t *testing.T) {
	resolver, requests := partialFixture(t)
	resolver.failing["base==1.1.0"] = true

	_, err := NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests, nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}

func TestBisectRequestsAmbiguousMatch(t *testing.T) {
	resolver, requests := partialFixture(t)
	matcher, err := policies.NewMatchPolicy([]string{"unrelated"})
	require.NoError(t, err)

	_, err = NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests, matcher)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestBisectRequestsMatchedPackagesMustReproduce(t *testing.T) {
	resolver, requests := partialFixture(t)
	// The check keys off base, not foo, so pinning foo alone onto the
	// last-good request does not reproduce the issue.
	badBase := map[string]bool{"1.2.0": true, "1.3.0": true}
	hasIssue := func(_ context.Context, snapshot types.Snapshot) (bool, error) {
		pkg, ok := snapshot.Resolved("base")
		return ok && badBase[pkg.Version], nil
	}
	matcher, err := policies.NewMatchPolicy([]string{"foo"})
	require.NoError(t, err)

	_, err = NewBisectEngine(resolver).BisectRequests(t.Context(), hasIssue, requests, matcher)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestBisectRequestsTooFew(t *testing.T) {
	resolver, requests := partialFixture(t)
	_, err := NewBisectEngine(resolver).BisectRequests(t.Context(), hasPackage("foo"), requests[:1], nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
