package constraints

import (
	"strings"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

func negateLiterals(lits []engine.Literal) []engine.Literal {
	out := make([]engine.Literal, len(lits))
	for i, l := range lits {
		out[i] = l.Not()
	}
	return out
}

// uniqueLiterals copies lits without repeats, keeping first-occurrence
// order. Clause propagation counts unknown literals, so a repeated literal
// would hide a unit clause.
func uniqueLiterals(lits []engine.Literal) []engine.Literal {
	out := make([]engine.Literal, 0, len(lits))
	seen := make(map[engine.Literal]bool, len(lits))
	for _, l := range lits {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func formatLiterals(lits []engine.Literal, sep string) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.String()
	}
	return strings.Join(parts, sep)
}

// ClauseConstraint is the disjunction of its literals. An empty clause is
// false.
type ClauseConstraint struct {
	lits []engine.Literal
}

// Clause returns l1 OR l2 OR ... OR ln. Repeated literals are dropped.
func Clause(lits ...engine.Literal) ClauseConstraint {
	return ClauseConstraint{lits: uniqueLiterals(lits)}
}

// Implies returns a -> b, the clause !a OR b.
func Implies(a, b engine.Literal) ClauseConstraint { return Clause(a.Not(), b) }

// Post implements Constraint.
func (c ClauseConstraint) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c ClauseConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns the conjunction of the negated literals.
func (c ClauseConstraint) Negation() NegatableConstraint {
	return Conjunction(negateLiterals(c.lits)...)
}

func (c ClauseConstraint) String() string { return "(" + formatLiterals(c.lits, " | ") + ")" }

// Propagator returns a new propagator enforcing c.
func (c ClauseConstraint) Propagator() engine.Propagator { return &clausePropagator{c: c} }

type clausePropagator struct{ c ClauseConstraint }

func (p *clausePropagator) Name() string { return "Clause" + p.c.String() }

func (p *clausePropagator) Watch(w *engine.Watchers) {
	for _, l := range p.c.lits {
		w.WatchLiteral(l)
	}
}

// Propagate fails when every literal is false and fixes the last unknown
// literal when all others are false.
func (p *clausePropagator) Propagate(ctx *engine.Context) error {
	unknown := -1
	for i, l := range p.c.lits {
		switch ctx.LiteralTruth(l) {
		case engine.True:
			return nil
		case engine.Unknown:
			if unknown >= 0 {
				return nil
			}
			unknown = i
		}
	}
	if unknown < 0 {
		return ctx.Fail("all literals false")
	}
	return ctx.AssignLiteral(p.c.lits[unknown])
}

func (p *clausePropagator) DetectInconsistency(v *engine.View) bool {
	for _, l := range p.c.lits {
		if v.LiteralTruth(l) != engine.False {
			return false
		}
	}
	return true
}

// ConjunctionConstraint is the conjunction of its literals. An empty
// conjunction is true.
type ConjunctionConstraint struct {
	lits []engine.Literal
}

// Conjunction returns l1 AND l2 AND ... AND ln. Repeated literals are
// dropped.
func Conjunction(lits ...engine.Literal) ConjunctionConstraint {
	return ConjunctionConstraint{lits: uniqueLiterals(lits)}
}

// Post implements Constraint.
func (c ConjunctionConstraint) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c ConjunctionConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns the clause of the negated literals.
func (c ConjunctionConstraint) Negation() NegatableConstraint {
	return Clause(negateLiterals(c.lits)...)
}

func (c ConjunctionConstraint) String() string { return "(" + formatLiterals(c.lits, " & ") + ")" }

// Propagator returns a new propagator enforcing c.
func (c ConjunctionConstraint) Propagator() engine.Propagator {
	return &conjunctionPropagator{c: c}
}

type conjunctionPropagator struct{ c ConjunctionConstraint }

func (p *conjunctionPropagator) Name() string { return "Conjunction" + p.c.String() }

func (p *conjunctionPropagator) Watch(w *engine.Watchers) {
	for _, l := range p.c.lits {
		w.WatchLiteral(l)
	}
}

func (p *conjunctionPropagator) Propagate(ctx *engine.Context) error {
	for _, l := range p.c.lits {
		if err := ctx.AssignLiteral(l); err != nil {
			return err
		}
	}
	return nil
}

func (p *conjunctionPropagator) DetectInconsistency(v *engine.View) bool {
	for _, l := range p.c.lits {
		if v.LiteralTruth(l) == engine.False {
			return true
		}
	}
	return false
}
