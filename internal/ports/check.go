package ports

import (
	"context"

	"context-bisect/internal/types"
)

// CheckFunc runs the user's check against one snapshot. It returns
// true when the issue reproduced ("bad"), false when it did not
// ("good"). Errors are never verdicts: a check that could not run at
// all must surface as an error.
type CheckFunc func(ctx context.Context, snapshot types.Snapshot) (bool, error)

// CheckRunnerPort turns an executable on disk into a reusable
// CheckFunc. MakeChecker validates the executable up front so a
// missing or non-executable script fails before any bisection starts.
type CheckRunnerPort interface {
	MakeChecker(path string) (CheckFunc, error)
}
