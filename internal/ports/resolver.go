package ports

import (
	"context"

	"context-bisect/internal/types"
)

// ResolverPort satisfies a request against a package repository,
// producing a snapshot. The bisection core consumes this contract; it
// never reimplements resolution.
type ResolverPort interface {
	Resolve(ctx context.Context, request types.Request) (types.Snapshot, error)
}
