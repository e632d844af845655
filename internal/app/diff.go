package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"context-bisect/internal/core"
	"context-bisect/internal/ports"
)

// Diff classifies the package delta between two items, each a snapshot
// file or a raw request string.
func (s Service) Diff(ctx context.Context, req DiffRequest) (DiffResult, error) {
	if strings.TrimSpace(req.Before) == "" || strings.TrimSpace(req.After) == "" {
		return DiffResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("diff requires a before and an after item")
	}

	var resolver ports.ResolverPort
	if strings.TrimSpace(req.RepoIndex) != "" {
		resolver = core.NewResolverCore(s.RepoIndex(req.RepoIndex), s.Cache)
	}
	snapshots, err := s.ResolveOrLoadAll(ctx, []string{req.Before, req.After}, req.Root, resolver)
	if err != nil {
		return DiffResult{}, err
	}
	diff, err := core.Diff(snapshots[0], snapshots[1])
	if err != nil {
		return DiffResult{}, err
	}
	return DiffResult{Diff: diff}, nil
}
