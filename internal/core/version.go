package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"context-bisect/internal/types"
)

// preparedConstraint is a pre-parsed version constraint ready for
// repeated comparison. For the deb scheme it holds a parsed Debian
// version; for pep440 it holds a PEP 440 specifier set.
type preparedConstraint struct {
	op  types.ConstraintOp
	deb debversion.Version
	pep pep440.Specifiers
}

// versionCache memoizes parsed version objects to avoid repeated parsing
// during constraint evaluation and sorting.
type versionCache struct {
	scheme types.VersionScheme
	deb    map[string]debversion.Version
	pep    map[string]pep440.Version
	spec   map[string]pep440.Specifiers
}

// newVersionCache creates an empty cache for the given scheme.
func newVersionCache(scheme types.VersionScheme) *versionCache {
	return &versionCache{
		scheme: scheme,
		deb:    map[string]debversion.Version{},
		pep:    map[string]pep440.Version{},
		spec:   map[string]pep440.Specifiers{},
	}
}

// debVersion returns a parsed Debian version, caching the result.
func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *versionCache) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

// pepSpec returns parsed PEP 440 specifiers, caching the result.
func (c *versionCache) pepSpec(value string) (pep440.Specifiers, error) {
	if parsed, ok := c.spec[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	c.spec[value] = parsed
	return parsed, nil
}

// compareStrict returns -1, 0, or 1 comparing two version strings under
// the cache's scheme. Parse failures are returned, not masked.
func (c *versionCache) compareStrict(a string, b string) (int, error) {
	switch c.scheme {
	case types.VersionSchemePep440:
		v1, err := c.pepVersion(a)
		if err != nil {
			return 0, err
		}
		v2, err := c.pepVersion(b)
		if err != nil {
			return 0, err
		}
		return v1.Compare(v2), nil
	default:
		v1, err := c.debVersion(a)
		if err != nil {
			return 0, err
		}
		v2, err := c.debVersion(b)
		if err != nil {
			return 0, err
		}
		return v1.Compare(v2), nil
	}
}

// compare is the lenient form used for sorting candidates. Returns 0 on
// parse errors.
func (c *versionCache) compare(a string, b string) int {
	result, err := c.compareStrict(a, b)
	if err != nil {
		return 0
	}
	return result
}

// bestCompatibleVersion selects the highest version from available that
// satisfies all of the given constraints. Returns an error if no
// compatible version exists.
func bestCompatibleVersion(name string, constraints []types.Constraint, available []string, cache *versionCache) (string, error) {
	if len(available) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no available versions for %s", name))
	}
	parsedConstraints, err := prepareConstraints(cache.scheme, constraints, cache)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, version := range available {
		ok, err := satisfiesAll(cache.scheme, version, parsedConstraints, cache)
		if err != nil {
			return "", err
		}
		if ok {
			candidates = append(candidates, version)
		}
	}
	if len(candidates) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("no compatible version for %s", name))
	}
	sort.Slice(candidates, func(i, j int) bool {
		return cache.compare(candidates[i], candidates[j]) > 0
	})
	return candidates[0], nil
}

// prepareConstraints parses each constraint's version string upfront so
// it can be reused across multiple candidate comparisons.
func prepareConstraints(scheme types.VersionScheme, constraints []types.Constraint, cache *versionCache) ([]preparedConstraint, error) {
	var out []preparedConstraint
	for _, constraint := range constraints {
		if constraint.Op == types.ConstraintOpNone {
			continue
		}
		switch scheme {
		case types.VersionSchemePep440:
			spec, err := cache.pepSpec(toPep440Spec(constraint))
			if err != nil {
				return nil, err
			}
			out = append(out, preparedConstraint{op: constraint.Op, pep: spec})
		default:
			parsed, err := cache.debVersion(constraint.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, preparedConstraint{op: constraint.Op, deb: parsed})
		}
	}
	return out, nil
}

// satisfiesAll dispatches to the scheme-specific constraint checker.
func satisfiesAll(scheme types.VersionScheme, version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	if len(constraints) == 0 {
		return true, nil
	}
	switch scheme {
	case types.VersionSchemePep440:
		return satisfiesPep440(version, constraints, cache)
	default:
		return satisfiesDeb(version, constraints, cache)
	}
}

// satisfiesDeb checks a Debian version against all prepared constraints.
func satisfiesDeb(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	v, err := cache.debVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		c := constraint.deb
		switch constraint.op {
		case types.ConstraintOpEq, types.ConstraintOpEq2:
			if !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpNe:
			if v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGte:
			if v.LessThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpLte:
			if v.GreaterThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGt:
			if !v.GreaterThan(c) {
				return false, nil
			}
		case types.ConstraintOpLt:
			if !v.LessThan(c) {
				return false, nil
			}
		default:
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unsupported constraint operator")
		}
	}
	return true, nil
}

// satisfiesPep440 checks a PEP 440 version against all prepared specifiers.
func satisfiesPep440(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	parsed, err := cache.pepVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		if !constraint.pep.Check(parsed) {
			return false, nil
		}
	}
	return true, nil
}

// toPep440Spec converts an internal constraint to a PEP 440 specifier
// string (e.g. ">= 1.0", "~= 2.3").
func toPep440Spec(constraint types.Constraint) string {
	op := string(constraint.Op)
	switch constraint.Op {
	case types.ConstraintOpEq, types.ConstraintOpEq2:
		op = "=="
	case types.ConstraintOpNe:
		op = "!="
	case types.ConstraintOpCompat:
		op = "~="
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", op, constraint.Version))
}
