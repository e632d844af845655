// Package policies contains the package-name match filter applied to
// partial-mode bisection results.
package policies

import (
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"context-bisect/internal/types"
)

// MatchPolicy restricts a bisection report to a caller-selected set of
// package names. Tokens are exact names or shell-style globs
// ("foo", "qt_*").
type MatchPolicy struct {
	tokens []string
	exact  map[string]struct{}
	globs  []string
}

// NewMatchPolicy compiles the given tokens. At least one non-empty
// token is required.
func NewMatchPolicy(tokens []string) (*MatchPolicy, error) {
	policy := &MatchPolicy{exact: map[string]struct{}{}}
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		policy.tokens = append(policy.tokens, token)
		if strings.ContainsAny(token, "*?[") {
			if _, err := path.Match(token, ""); err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("invalid match pattern: " + token).
					WithCause(err)
			}
			policy.globs = append(policy.globs, token)
			continue
		}
		policy.exact[token] = struct{}{}
	}
	if len(policy.tokens) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("match policy requires at least one package name")
	}
	return policy, nil
}

// Tokens returns the compiled tokens for error messages.
func (p *MatchPolicy) Tokens() []string {
	return append([]string(nil), p.tokens...)
}

// Matches reports whether the package name is selected.
func (p *MatchPolicy) Matches(name string) bool {
	if _, ok := p.exact[name]; ok {
		return true
	}
	for _, glob := range p.globs {
		if matched, err := path.Match(glob, name); err == nil && matched {
			return true
		}
	}
	return false
}

// FilterDiff keeps only the matched package names in each category.
func (p *MatchPolicy) FilterDiff(diff types.DiffResult) types.DiffResult {
	return types.DiffResult{
		Added:   p.filter(diff.Added),
		Removed: p.filter(diff.Removed),
		Newer:   p.filter(diff.Newer),
		Older:   p.filter(diff.Older),
	}
}

func (p *MatchPolicy) filter(packages []types.ResolvedPackage) []types.ResolvedPackage {
	var out []types.ResolvedPackage
	for _, pkg := range packages {
		if p.Matches(pkg.Name) {
			out = append(out, pkg)
		}
	}
	return out
}
