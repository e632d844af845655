package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"context-bisect/internal/core"
)

// Resolve satisfies one request against a repo index and serializes the
// snapshot to a .ctx file.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if strings.TrimSpace(req.Request) == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("request is required")
	}
	if strings.TrimSpace(req.RepoIndex) == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repo index file is required")
	}
	if strings.TrimSpace(req.Output) == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}

	request, err := core.ParseRequest(req.Request, "input")
	if err != nil {
		return ResolveResult{}, err
	}
	resolver := core.NewResolverCore(s.RepoIndex(req.RepoIndex), s.Cache)
	snapshot, err := resolver.Resolve(ctx, request)
	if err != nil {
		return ResolveResult{}, err
	}
	if err := s.SnapshotStore.Save(req.Output, snapshot); err != nil {
		return ResolveResult{}, err
	}
	log.Ctx(ctx).Debug().Str("output", req.Output).Int("packages", len(snapshot.Packages)).Msg("snapshot written")
	return ResolveResult{OutputPath: req.Output, PackageCount: len(snapshot.Packages)}, nil
}
