package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"context-bisect/internal/ports"
	"context-bisect/internal/shared"
	"context-bisect/internal/types"
)

// EnvPrefix is prepended to the per-package environment variables the
// check script receives, e.g. CTX_FOO_VERSION=1.2.0.
const EnvPrefix = "CTX_"

// CheckScriptAdapter turns an executable on disk into a check
// predicate. Each verdict runs one fresh process inside the snapshot's
// environment; a non-zero exit status means the issue reproduced.
type CheckScriptAdapter struct{}

func NewCheckScriptAdapter() CheckScriptAdapter {
	return CheckScriptAdapter{}
}

func (a CheckScriptAdapter) MakeChecker(path string) (ports.CheckFunc, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("check script not found: " + path).
			WithCause(err)
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("check script is not executable: " + path)
	}

	return func(ctx context.Context, snapshot types.Snapshot) (bool, error) {
		cmd := exec.CommandContext(ctx, path)
		cmd.Env = snapshotEnviron(snapshot)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err == nil {
			return false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("check interrupted").
				WithCause(ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Ctx(ctx).Debug().
				Int("exit_code", exitErr.ExitCode()).
				Str("stderr", strings.TrimSpace(stderr.String())).
				Msg("check reported the issue")
			return true, nil
		}
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("check script failed to start: " + path).
			WithCause(shared.CommandError(stderr.Bytes(), err))
	}, nil
}

// snapshotEnviron extends the parent environment with the snapshot's
// resolved package set: CTX_<NAME>_VERSION per package plus a combined
// CTX_RESOLVE listing.
func snapshotEnviron(snapshot types.Snapshot) []string {
	env := os.Environ()
	tokens := make([]string, 0, len(snapshot.Packages))
	for _, pkg := range snapshot.Packages {
		env = append(env, fmt.Sprintf("%s%s_VERSION=%s", EnvPrefix, shared.EnvVarName(pkg.Name), pkg.Version))
		tokens = append(tokens, pkg.Name+"-"+pkg.Version)
	}
	env = append(env, EnvPrefix+"RESOLVE="+strings.Join(tokens, " "))
	return env
}

var _ ports.CheckRunnerPort = CheckScriptAdapter{}
