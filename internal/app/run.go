package app

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"context-bisect/internal/adapters"
	"context-bisect/internal/core"
	"context-bisect/internal/policies"
	"context-bisect/internal/ports"
	"context-bisect/internal/types"
)

// Run is the whole bisection pipeline: turn inputs into snapshots (or,
// in partial mode, lazily resolvable requests), search for the boundary
// and package the result.
func (s Service) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	assert.NotEmpty(ctx, req.CheckPath, "check path must be set")
	if strings.TrimSpace(req.CheckPath) == "" {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("check script path is required")
	}
	if len(req.Items) < 2 {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("run requires at least 2 snapshots or requests, got %d", len(req.Items)))
	}

	hasIssue, err := s.CheckRunner.MakeChecker(req.CheckPath)
	if err != nil {
		return RunResult{}, err
	}

	var resolver ports.ResolverPort
	if strings.TrimSpace(req.RepoIndex) != "" {
		resolver = core.NewResolverCore(s.RepoIndex(req.RepoIndex), s.Cache)
	}

	var matcher *policies.MatchPolicy
	if len(req.Matches) > 0 {
		matcher, err = policies.NewMatchPolicy(req.Matches)
		if err != nil {
			return RunResult{}, err
		}
	}

	engine := core.NewBisectEngine(resolver)

	var summary types.BisectSummary
	if req.Partial {
		summary, err = s.runPartial(ctx, engine, hasIssue, req, matcher)
	} else {
		summary, err = s.runExact(ctx, engine, hasIssue, req, resolver, matcher)
	}
	if err != nil {
		return RunResult{}, err
	}

	if strings.TrimSpace(req.ReportPath) != "" {
		if err := s.ReportWriter.WriteSummary(req.ReportPath, summary); err != nil {
			return RunResult{}, err
		}
	}
	log.Ctx(ctx).Debug().
		Int("last_good", summary.LastGood).
		Int("first_bad", summary.FirstBad).
		Msg("bisection finished")
	return RunResult{Summary: summary}, nil
}

func (s Service) runExact(ctx context.Context, engine core.BisectEngine, hasIssue ports.CheckFunc, req RunRequest, resolver ports.ResolverPort, matcher *policies.MatchPolicy) (types.BisectSummary, error) {
	snapshots, err := s.ResolveOrLoadAll(ctx, req.Items, req.Root, resolver)
	if err != nil {
		return types.BisectSummary{}, err
	}
	summary, err := engine.Bisect(ctx, hasIssue, snapshots)
	if err != nil {
		return types.BisectSummary{}, err
	}
	if matcher != nil {
		filtered := matcher.FilterDiff(summary.Diff)
		if filtered.Empty() {
			return types.BisectSummary{}, core.AmbiguousMatch(matcher.Tokens())
		}
		summary.Diff = filtered
	}
	return summary, nil
}

func (s Service) runPartial(ctx context.Context, engine core.BisectEngine, hasIssue ports.CheckFunc, req RunRequest, matcher *policies.MatchPolicy) (types.BisectSummary, error) {
	if engine.Resolver == nil {
		return types.BisectSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("partial mode requires a repo index")
	}
	requests := make([]types.Request, 0, len(req.Items))
	for _, item := range req.Items {
		if adapters.IsSnapshotReference(item) {
			return types.BisectSummary{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("partial mode takes raw requests, not snapshot files: " + item)
		}
		request, err := core.ParseRequest(item, "input")
		if err != nil {
			return types.BisectSummary{}, err
		}
		requests = append(requests, request)
	}
	return engine.BisectRequests(ctx, hasIssue, requests, matcher)
}
