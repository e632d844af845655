package types

import "strings"

type Constraint struct {
	Name    string
	Op      ConstraintOp
	Version string
	Source  string
}

// String renders the constraint back into its request-token form.
func (c Constraint) String() string {
	if c.Op == ConstraintOpNone {
		return c.Name
	}
	return c.Name + string(c.Op) + c.Version
}

// Request is one parsed whitespace-separated request string, e.g.
// "foo>=1.2 bar==3.0.0". Value type; never mutated after parsing.
type Request struct {
	Raw         string
	Constraints []Constraint
}

// Names returns the requested package names in request order.
func (r Request) Names() []string {
	out := make([]string, 0, len(r.Constraints))
	for _, constraint := range r.Constraints {
		out = append(out, constraint.Name)
	}
	return out
}

// String joins the constraint tokens into a canonical request string.
func (r Request) String() string {
	tokens := make([]string, 0, len(r.Constraints))
	for _, constraint := range r.Constraints {
		tokens = append(tokens, constraint.String())
	}
	return strings.Join(tokens, " ")
}
