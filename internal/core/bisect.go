package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"context-bisect/internal/policies"
	"context-bisect/internal/ports"
	"context-bisect/internal/types"
)

// BisectEngine locates the boundary where a check flips from passing to
// failing. Exact mode searches a fixed snapshot sequence; partial mode
// resolves candidate requests on demand through the resolver port.
type BisectEngine struct {
	Resolver ports.ResolverPort
}

func NewBisectEngine(resolver ports.ResolverPort) BisectEngine {
	return BisectEngine{Resolver: resolver}
}

// Bisect finds (lastGood, firstBad) over snapshots. Index 0 is assumed
// good and the last index bad; with exactly 2 snapshots the boundary is
// (0, 1) and hasIssue is never invoked. Verdicts are cached per index,
// so the check runs at most ceil(log2(n)) times.
func (e BisectEngine) Bisect(ctx context.Context, hasIssue ports.CheckFunc, snapshots []types.Snapshot) (types.BisectSummary, error) {
	if err := validateSnapshots(snapshots); err != nil {
		return types.BisectSummary{}, err
	}
	if len(snapshots) == 2 {
		return MakeSummary(0, 1, snapshots)
	}
	if hasIssue == nil {
		return types.BisectSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bisect requires a check")
	}

	verdicts := map[int]bool{}
	verdictAt := func(index int) (bool, error) {
		if verdict, ok := verdicts[index]; ok {
			return verdict, nil
		}
		verdict, err := hasIssue(ctx, snapshots[index])
		if err != nil {
			return false, err
		}
		verdicts[index] = verdict
		log.Ctx(ctx).Debug().Int("index", index).Bool("has_issue", verdict).Msg("check finished")
		return verdict, nil
	}

	lastGood, firstBad, err := bisectRight(verdictAt, len(snapshots))
	if err != nil {
		return types.BisectSummary{}, err
	}
	if err := validateMonotonic(verdicts); err != nil {
		return types.BisectSummary{}, err
	}
	return MakeSummary(lastGood, firstBad, snapshots)
}

// BisectRequests is partial mode: candidates are requests, resolved
// lazily per visited index, and the reported diff is narrowed to the
// matcher's package names when a matcher is given.
func (e BisectEngine) BisectRequests(ctx context.Context, hasIssue ports.CheckFunc, requests []types.Request, matcher *policies.MatchPolicy) (types.BisectSummary, error) {
	if len(requests) < 2 {
		return types.BisectSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("bisect requires at least 2 requests, got %d", len(requests)))
	}
	if e.Resolver == nil {
		return types.BisectSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("partial bisect requires a resolver")
	}

	resolved := map[int]types.Snapshot{}
	resolveAt := func(index int) (types.Snapshot, error) {
		if snapshot, ok := resolved[index]; ok {
			return snapshot, nil
		}
		snapshot, err := e.resolve(ctx, requests[index])
		if err != nil {
			return types.Snapshot{}, err
		}
		resolved[index] = snapshot
		return snapshot, nil
	}

	lastGood := 0
	firstBad := len(requests) - 1
	if len(requests) > 2 {
		if hasIssue == nil {
			return types.BisectSummary{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bisect requires a check")
		}
		verdicts := map[int]bool{}
		verdictAt := func(index int) (bool, error) {
			if verdict, ok := verdicts[index]; ok {
				return verdict, nil
			}
			snapshot, err := resolveAt(index)
			if err != nil {
				return false, err
			}
			verdict, err := hasIssue(ctx, snapshot)
			if err != nil {
				return false, err
			}
			verdicts[index] = verdict
			log.Ctx(ctx).Debug().Int("index", index).Bool("has_issue", verdict).Msg("check finished")
			return verdict, nil
		}
		var err error
		lastGood, firstBad, err = bisectRight(verdictAt, len(requests))
		if err != nil {
			return types.BisectSummary{}, err
		}
		if err := validateMonotonic(verdicts); err != nil {
			return types.BisectSummary{}, err
		}
	}

	good, err := resolveAt(lastGood)
	if err != nil {
		return types.BisectSummary{}, err
	}
	bad, err := resolveAt(firstBad)
	if err != nil {
		return types.BisectSummary{}, err
	}
	diff, err := Diff(good, bad)
	if err != nil {
		return types.BisectSummary{}, err
	}

	if matcher != nil {
		diff, err = e.narrow(ctx, hasIssue, requests[lastGood], bad, diff, matcher)
		if err != nil {
			return types.BisectSummary{}, err
		}
	}
	return types.BisectSummary{LastGood: lastGood, FirstBad: firstBad, Diff: diff}, nil
}

// narrow filters the boundary diff to the matched package names and
// confirms the matched subset actually reproduces the issue by
// resolving a reduced request: the last-good request with only the
// matched changes applied.
func (e BisectEngine) narrow(ctx context.Context, hasIssue ports.CheckFunc, goodRequest types.Request, bad types.Snapshot, diff types.DiffResult, matcher *policies.MatchPolicy) (types.DiffResult, error) {
	filtered := matcher.FilterDiff(diff)
	if filtered.Empty() {
		return types.DiffResult{}, AmbiguousMatch(matcher.Tokens())
	}
	if hasIssue == nil {
		return filtered, nil
	}

	removed := map[string]struct{}{}
	for _, pkg := range filtered.Removed {
		removed[pkg.Name] = struct{}{}
	}
	reduced := types.Request{}
	for _, constraint := range goodRequest.Constraints {
		if _, dropped := removed[constraint.Name]; dropped {
			continue
		}
		reduced.Constraints = append(reduced.Constraints, constraint)
	}
	for _, pkg := range append(append(filtered.Added, filtered.Newer...), filtered.Older...) {
		reduced.Constraints = append(reduced.Constraints, types.Constraint{
			Name:    pkg.Name,
			Op:      types.ConstraintOpEq2,
			Version: pkg.Version,
			Source:  "narrow",
		})
	}
	if len(reduced.Constraints) == 0 {
		// Every good-side constraint named a matched removed package:
		// nothing left to resolve, the removal itself is the change.
		return filtered, nil
	}
	reduced.Raw = reduced.String()

	snapshot, err := e.resolve(ctx, reduced)
	if err != nil {
		return types.DiffResult{}, err
	}
	verdict, err := hasIssue(ctx, snapshot)
	if err != nil {
		return types.DiffResult{}, err
	}
	if !verdict {
		return types.DiffResult{}, AmbiguousMatch(matcher.Tokens())
	}
	log.Ctx(ctx).Debug().Str("request", reduced.Raw).Msg("matched packages reproduce the issue")
	return filtered, nil
}

// resolve wraps resolver failures during the search in the transient
// category: a failed resolve is never coerced into a verdict.
func (e BisectEngine) resolve(ctx context.Context, request types.Request) (types.Snapshot, error) {
	snapshot, err := e.Resolver.Resolve(ctx, request)
	if err != nil {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("transient resolution failure for request %q", request.String())).
			WithCause(err)
	}
	if !snapshot.Success {
		return types.Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("transient resolution failure for request %q", request.String()))
	}
	return snapshot, nil
}

// MakeSummary aggregates the boundary indexes and the diff of the two
// boundary snapshots.
func MakeSummary(lastGood int, firstBad int, snapshots []types.Snapshot) (types.BisectSummary, error) {
	if lastGood < 0 || firstBad >= len(snapshots) || firstBad != lastGood+1 {
		return types.BisectSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid boundary indexes (%d, %d)", lastGood, firstBad))
	}
	diff, err := Diff(snapshots[lastGood], snapshots[firstBad])
	if err != nil {
		return types.BisectSummary{}, err
	}
	return types.BisectSummary{LastGood: lastGood, FirstBad: firstBad, Diff: diff}, nil
}

// bisectRight finds the smallest index with a true verdict, assuming
// index 0 is false and index count-1 is true. Endpoints are pinned by
// that assumption and never evaluated.
func bisectRight(verdictAt func(int) (bool, error), count int) (int, int, error) {
	lo := 0
	hi := count - 1
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		verdict, err := verdictAt(mid)
		if err != nil {
			return 0, 0, err
		}
		if verdict {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo, hi, nil
}

// validateMonotonic rejects verdict sets that violate the single-flip
// assumption: every failing index must come after every passing index.
func validateMonotonic(verdicts map[int]bool) error {
	indexes := make([]int, 0, len(verdicts))
	for index := range verdicts {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	seenIssue := -1
	for _, index := range indexes {
		if verdicts[index] {
			if seenIssue < 0 {
				seenIssue = index
			}
			continue
		}
		if seenIssue >= 0 {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("inconsistent verdicts: index %d passed after index %d failed", index, seenIssue))
		}
	}
	return nil
}

func validateSnapshots(snapshots []types.Snapshot) error {
	if len(snapshots) < 2 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("bisect requires at least 2 snapshots, got %d", len(snapshots)))
	}
	for index, snapshot := range snapshots {
		if !snapshot.Success {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("snapshot %d did not resolve and cannot be checked", index))
		}
	}
	return nil
}

// AmbiguousMatch reports a match filter that selected no package
// involved in the boundary change.
func AmbiguousMatch(tokens []string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("ambiguous match: %v does not explain the boundary change", tokens))
}
