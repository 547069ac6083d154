package constraints

import (
	"fmt"
	"strings"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// AllDifferentConstraint requires its variables to take pairwise distinct
// values.
//
// The propagator removes the value of every fixed variable from the others
// and fails when fewer distinct values remain than variables (pigeonhole):
//
//	X, Y, Z in {1,2}: 3 variables, 2 values, fails at posting
//
// It has no Negation: "some pair is equal" is a disjunction.
type AllDifferentConstraint struct {
	vars []engine.VarID
}

// AllDifferent returns the all-different constraint over vars.
func AllDifferent(vars ...engine.VarID) AllDifferentConstraint {
	return AllDifferentConstraint{vars: append([]engine.VarID(nil), vars...)}
}

// Post implements Constraint.
func (c AllDifferentConstraint) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c AllDifferentConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

func (c AllDifferentConstraint) String() string {
	parts := make([]string, len(c.vars))
	for i, v := range c.vars {
		parts[i] = fmt.Sprintf("x%d", v)
	}
	return strings.Join(parts, ",")
}

// Propagator returns a new propagator enforcing c.
func (c AllDifferentConstraint) Propagator() engine.Propagator {
	return &allDifferentPropagator{c: c}
}

type allDifferentPropagator struct{ c AllDifferentConstraint }

func (p *allDifferentPropagator) Name() string { return "AllDifferent(" + p.c.String() + ")" }

func (p *allDifferentPropagator) Watch(w *engine.Watchers) {
	for _, v := range p.c.vars {
		w.Watch(v, engine.EventAssign)
	}
}

func (p *allDifferentPropagator) Propagate(ctx *engine.Context) error {
	vars := p.c.vars
	done := make([]bool, len(vars))
	for progress := true; progress; {
		progress = false
		for i, v := range vars {
			val, ok := ctx.Value(v)
			if done[i] || !ok {
				continue
			}
			done[i] = true
			progress = true
			for j, other := range vars {
				if j == i {
					continue
				}
				if err := ctx.Remove(other, val); err != nil {
					return err
				}
			}
		}
	}

	values := make(map[int]struct{})
	for _, v := range vars {
		ctx.Domain(v).IterateValues(func(val int) { values[val] = struct{}{} })
	}
	if len(values) < len(vars) {
		return ctx.Fail("only %d distinct values for %d variables", len(values), len(vars))
	}
	return nil
}

func (p *allDifferentPropagator) DetectInconsistency(v *engine.View) bool {
	seen := make(map[int]struct{}, len(p.c.vars))
	values := make(map[int]struct{})
	for _, x := range p.c.vars {
		if val, ok := v.Value(x); ok {
			if _, dup := seen[val]; dup {
				return true
			}
			seen[val] = struct{}{}
		}
		v.Domain(x).IterateValues(func(val int) { values[val] = struct{}{} })
	}
	return len(values) < len(p.c.vars)
}
