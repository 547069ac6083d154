package constraints

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// Term is weight * variable in a linear expression.
type Term struct {
	Var    engine.VarID
	Weight int
}

// Scaled returns weight * v.
func Scaled(v engine.VarID, weight int) Term { return Term{Var: v, Weight: weight} }

// Plain returns 1 * v.
func Plain(v engine.VarID) Term { return Term{Var: v, Weight: 1} }

func negateTerms(terms []Term) []Term {
	neg := make([]Term, len(terms))
	for i, t := range terms {
		neg[i] = Term{Var: t.Var, Weight: -t.Weight}
	}
	return neg
}

// copyTerms merges repeated variables by summing their weights and drops
// zero weights, keeping first-occurrence order. Bounds propagation reaches
// its fixed point in one pass only when every variable appears once.
func copyTerms(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	index := make(map[engine.VarID]int, len(terms))
	for _, t := range terms {
		if i, ok := index[t.Var]; ok {
			out[i].Weight += t.Weight
			continue
		}
		index[t.Var] = len(out)
		out = append(out, t)
	}
	return slices.DeleteFunc(out, func(t Term) bool { return t.Weight == 0 })
}

func formatLinear(terms []Term, op string, rhs int) string {
	var b strings.Builder
	for i, t := range terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%d*x%d", t.Weight, t.Var)
	}
	if len(terms) == 0 {
		b.WriteString("0")
	}
	fmt.Fprintf(&b, " %s %d", op, rhs)
	return b.String()
}

// termMin and termMax are the extreme contributions of t.
func termMin(v *engine.View, t Term) int {
	if t.Weight > 0 {
		return t.Weight * v.LowerBound(t.Var)
	}
	return t.Weight * v.UpperBound(t.Var)
}

func termMax(v *engine.View, t Term) int {
	if t.Weight > 0 {
		return t.Weight * v.UpperBound(t.Var)
	}
	return t.Weight * v.LowerBound(t.Var)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// propagateAtMost enforces sum(terms) <= rhs on bounds. It reports whether
// any domain changed.
func propagateAtMost(ctx *engine.Context, terms []Term, rhs int) (bool, error) {
	minSum := 0
	for _, t := range terms {
		minSum += termMin(&ctx.View, t)
	}
	if minSum > rhs {
		return false, ctx.Fail("minimum %d exceeds %d", minSum, rhs)
	}
	changed := false
	for _, t := range terms {
		slack := rhs - (minSum - termMin(&ctx.View, t))
		before := ctx.Domain(t.Var).Count()
		var err error
		if t.Weight > 0 {
			err = ctx.SetUpperBound(t.Var, floorDiv(slack, t.Weight))
		} else {
			err = ctx.SetLowerBound(t.Var, ceilDiv(slack, t.Weight))
		}
		if err != nil {
			return false, err
		}
		changed = changed || ctx.Domain(t.Var).Count() != before
	}
	return changed, nil
}

// LinearLessThanOrEqualsConstraint is sum(w_i * x_i) <= rhs, enforced on
// bounds.
type LinearLessThanOrEqualsConstraint struct {
	terms []Term
	rhs   int
}

// LinearLessThanOrEquals returns sum(terms) <= rhs. Repeated variables are
// merged and zero weights dropped.
func LinearLessThanOrEquals(terms []Term, rhs int) LinearLessThanOrEqualsConstraint {
	return LinearLessThanOrEqualsConstraint{terms: copyTerms(terms), rhs: rhs}
}

// LinearGreaterThanOrEquals returns sum(terms) >= rhs.
func LinearGreaterThanOrEquals(terms []Term, rhs int) LinearLessThanOrEqualsConstraint {
	return LinearLessThanOrEquals(negateTerms(terms), -rhs)
}

// Post implements Constraint.
func (c LinearLessThanOrEqualsConstraint) Post(r Registrar) error {
	return Adapt(c.Propagator).Post(r)
}

// ImpliedBy implements Constraint.
func (c LinearLessThanOrEqualsConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns sum(terms) > rhs, written sum(-terms) <= -rhs - 1.
func (c LinearLessThanOrEqualsConstraint) Negation() NegatableConstraint {
	return LinearLessThanOrEquals(negateTerms(c.terms), -c.rhs-1)
}

func (c LinearLessThanOrEqualsConstraint) String() string { return formatLinear(c.terms, "<=", c.rhs) }

// Propagator returns a new propagator enforcing c.
func (c LinearLessThanOrEqualsConstraint) Propagator() engine.Propagator {
	return &linearLessThanOrEqualsPropagator{c: c}
}

type linearLessThanOrEqualsPropagator struct{ c LinearLessThanOrEqualsConstraint }

func (p *linearLessThanOrEqualsPropagator) Name() string {
	return "LinearLessThanOrEquals(" + p.c.String() + ")"
}

func (p *linearLessThanOrEqualsPropagator) Watch(w *engine.Watchers) {
	for _, t := range p.c.terms {
		if t.Weight > 0 {
			w.Watch(t.Var, engine.EventLowerBound)
		} else {
			w.Watch(t.Var, engine.EventUpperBound)
		}
	}
}

func (p *linearLessThanOrEqualsPropagator) Propagate(ctx *engine.Context) error {
	_, err := propagateAtMost(ctx, p.c.terms, p.c.rhs)
	return err
}

func (p *linearLessThanOrEqualsPropagator) DetectInconsistency(v *engine.View) bool {
	minSum := 0
	for _, t := range p.c.terms {
		minSum += termMin(v, t)
	}
	return minSum > p.c.rhs
}

// LinearEqualsConstraint is sum(w_i * x_i) = rhs, enforced on bounds.
type LinearEqualsConstraint struct {
	terms []Term
	rhs   int
}

// LinearEquals returns sum(terms) = rhs. Zero weights are dropped.
func LinearEquals(terms []Term, rhs int) LinearEqualsConstraint {
	return LinearEqualsConstraint{terms: copyTerms(terms), rhs: rhs}
}

// Post implements Constraint.
func (c LinearEqualsConstraint) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c LinearEqualsConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns sum(terms) != rhs.
func (c LinearEqualsConstraint) Negation() NegatableConstraint {
	return LinearNotEqualsConstraint(c)
}

func (c LinearEqualsConstraint) String() string { return formatLinear(c.terms, "=", c.rhs) }

// Propagator returns a new propagator enforcing c.
func (c LinearEqualsConstraint) Propagator() engine.Propagator {
	return &linearEqualsPropagator{c: c, negated: negateTerms(c.terms)}
}

type linearEqualsPropagator struct {
	c       LinearEqualsConstraint
	negated []Term
}

func (p *linearEqualsPropagator) Name() string { return "LinearEquals(" + p.c.String() + ")" }

func (p *linearEqualsPropagator) Watch(w *engine.Watchers) {
	for _, t := range p.c.terms {
		w.Watch(t.Var, engine.EventBounds)
	}
}

// Propagate alternates the two halves sum <= rhs and -sum <= -rhs until
// neither changes a bound.
func (p *linearEqualsPropagator) Propagate(ctx *engine.Context) error {
	for {
		upper, err := propagateAtMost(ctx, p.c.terms, p.c.rhs)
		if err != nil {
			return err
		}
		lower, err := propagateAtMost(ctx, p.negated, -p.c.rhs)
		if err != nil {
			return err
		}
		if !upper && !lower {
			return nil
		}
	}
}

func (p *linearEqualsPropagator) DetectInconsistency(v *engine.View) bool {
	minSum, maxSum := 0, 0
	for _, t := range p.c.terms {
		minSum += termMin(v, t)
		maxSum += termMax(v, t)
	}
	return minSum > p.c.rhs || maxSum < p.c.rhs
}

// LinearNotEqualsConstraint is sum(w_i * x_i) != rhs. It prunes once all
// but one variable are fixed.
type LinearNotEqualsConstraint struct {
	terms []Term
	rhs   int
}

// LinearNotEquals returns sum(terms) != rhs. Zero weights are dropped.
func LinearNotEquals(terms []Term, rhs int) LinearNotEqualsConstraint {
	return LinearNotEqualsConstraint{terms: copyTerms(terms), rhs: rhs}
}

// Post implements Constraint.
func (c LinearNotEqualsConstraint) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c LinearNotEqualsConstraint) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns sum(terms) = rhs.
func (c LinearNotEqualsConstraint) Negation() NegatableConstraint {
	return LinearEqualsConstraint(c)
}

func (c LinearNotEqualsConstraint) String() string { return formatLinear(c.terms, "!=", c.rhs) }

// Propagator returns a new propagator enforcing c.
func (c LinearNotEqualsConstraint) Propagator() engine.Propagator {
	return &linearNotEqualsPropagator{c: c}
}

type linearNotEqualsPropagator struct{ c LinearNotEqualsConstraint }

func (p *linearNotEqualsPropagator) Name() string { return "LinearNotEquals(" + p.c.String() + ")" }

func (p *linearNotEqualsPropagator) Watch(w *engine.Watchers) {
	for _, t := range p.c.terms {
		w.Watch(t.Var, engine.EventAssign)
	}
}

func (p *linearNotEqualsPropagator) Propagate(ctx *engine.Context) error {
	fixedSum := 0
	free := -1
	for i, t := range p.c.terms {
		if val, ok := ctx.Value(t.Var); ok {
			fixedSum += t.Weight * val
			continue
		}
		if free >= 0 {
			return nil // two or more unfixed terms
		}
		free = i
	}
	if free < 0 {
		if fixedSum == p.c.rhs {
			return ctx.Fail("sum is %d", fixedSum)
		}
		return nil
	}
	t := p.c.terms[free]
	rest := p.c.rhs - fixedSum
	if rest%t.Weight != 0 {
		return nil
	}
	return ctx.Remove(t.Var, rest/t.Weight)
}

func (p *linearNotEqualsPropagator) DetectInconsistency(v *engine.View) bool {
	sum := 0
	for _, t := range p.c.terms {
		val, ok := v.Value(t.Var)
		if !ok {
			return false
		}
		sum += t.Weight * val
	}
	return sum == p.c.rhs
}
