package constraints

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// BinaryEquals is the constraint a = b + offset.
//
// Its propagator is domain consistent: each side keeps only the values with
// a support in the other side's domain.
//
// Example: a in {0..3}, b in {0..3}, Equals(a, b)
//   - nothing is removed at posting
//   - after a := 1, b becomes {1}
type BinaryEquals struct {
	a, b   engine.VarID
	offset int
}

// Equals returns a = b.
func Equals(a, b engine.VarID) BinaryEquals { return EqualsOffset(a, b, 0) }

// EqualsOffset returns a = b + offset.
func EqualsOffset(a, b engine.VarID, offset int) BinaryEquals {
	return BinaryEquals{a: a, b: b, offset: offset}
}

// Post implements Constraint.
func (c BinaryEquals) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c BinaryEquals) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns a != b + offset.
func (c BinaryEquals) Negation() NegatableConstraint {
	return NotEqualsOffset(c.a, c.b, c.offset)
}

func (c BinaryEquals) String() string { return fmt.Sprintf("x%d = x%d%+d", c.a, c.b, c.offset) }

// Propagator returns a new propagator enforcing c.
func (c BinaryEquals) Propagator() engine.Propagator { return &equalsPropagator{c: c} }

type equalsPropagator struct{ c BinaryEquals }

func (p *equalsPropagator) Name() string { return "Equals(" + p.c.String() + ")" }

func (p *equalsPropagator) Watch(w *engine.Watchers) {
	w.Watch(p.c.a, engine.EventRemoval)
	w.Watch(p.c.b, engine.EventRemoval)
}

func (p *equalsPropagator) Propagate(ctx *engine.Context) error {
	a, b, off := p.c.a, p.c.b, p.c.offset
	if err := ctx.Restrict(a, ctx.Domain(b).Shift(off)); err != nil {
		return err
	}
	return ctx.Restrict(b, ctx.Domain(a).Shift(-off))
}

func (p *equalsPropagator) DetectInconsistency(v *engine.View) bool {
	return v.Domain(p.c.a).Intersect(v.Domain(p.c.b).Shift(p.c.offset)).IsEmpty()
}

// BinaryNotEquals is the constraint a != b + offset. It prunes once one
// side is fixed.
type BinaryNotEquals struct {
	a, b   engine.VarID
	offset int
}

// NotEquals returns a != b.
func NotEquals(a, b engine.VarID) BinaryNotEquals { return NotEqualsOffset(a, b, 0) }

// NotEqualsOffset returns a != b + offset.
func NotEqualsOffset(a, b engine.VarID, offset int) BinaryNotEquals {
	return BinaryNotEquals{a: a, b: b, offset: offset}
}

// Post implements Constraint.
func (c BinaryNotEquals) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c BinaryNotEquals) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns a = b + offset.
func (c BinaryNotEquals) Negation() NegatableConstraint {
	return EqualsOffset(c.a, c.b, c.offset)
}

func (c BinaryNotEquals) String() string { return fmt.Sprintf("x%d != x%d%+d", c.a, c.b, c.offset) }

// Propagator returns a new propagator enforcing c.
func (c BinaryNotEquals) Propagator() engine.Propagator { return &notEqualsPropagator{c: c} }

type notEqualsPropagator struct{ c BinaryNotEquals }

func (p *notEqualsPropagator) Name() string { return "NotEquals(" + p.c.String() + ")" }

func (p *notEqualsPropagator) Watch(w *engine.Watchers) {
	w.Watch(p.c.a, engine.EventAssign)
	w.Watch(p.c.b, engine.EventAssign)
}

func (p *notEqualsPropagator) Propagate(ctx *engine.Context) error {
	a, b, off := p.c.a, p.c.b, p.c.offset
	for {
		changed := false
		if va, ok := ctx.Value(a); ok && ctx.Contains(b, va-off) {
			if err := ctx.Remove(b, va-off); err != nil {
				return err
			}
			changed = true
		}
		if vb, ok := ctx.Value(b); ok && ctx.Contains(a, vb+off) {
			if err := ctx.Remove(a, vb+off); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return nil
		}
	}
}

func (p *notEqualsPropagator) DetectInconsistency(v *engine.View) bool {
	va, okA := v.Value(p.c.a)
	vb, okB := v.Value(p.c.b)
	return okA && okB && va == vb+p.c.offset
}

// BinaryLessThanOrEquals is the constraint a <= b + offset, enforced on
// bounds.
type BinaryLessThanOrEquals struct {
	a, b   engine.VarID
	offset int
}

// LessThanOrEquals returns a <= b.
func LessThanOrEquals(a, b engine.VarID) BinaryLessThanOrEquals {
	return LessThanOrEqualsOffset(a, b, 0)
}

// LessThanOrEqualsOffset returns a <= b + offset.
func LessThanOrEqualsOffset(a, b engine.VarID, offset int) BinaryLessThanOrEquals {
	return BinaryLessThanOrEquals{a: a, b: b, offset: offset}
}

// LessThan returns a < b.
func LessThan(a, b engine.VarID) BinaryLessThanOrEquals {
	return LessThanOrEqualsOffset(a, b, -1)
}

// GreaterThanOrEquals returns a >= b.
func GreaterThanOrEquals(a, b engine.VarID) BinaryLessThanOrEquals {
	return LessThanOrEqualsOffset(b, a, 0)
}

// GreaterThan returns a > b.
func GreaterThan(a, b engine.VarID) BinaryLessThanOrEquals {
	return LessThanOrEqualsOffset(b, a, -1)
}

// Post implements Constraint.
func (c BinaryLessThanOrEquals) Post(r Registrar) error { return Adapt(c.Propagator).Post(r) }

// ImpliedBy implements Constraint.
func (c BinaryLessThanOrEquals) ImpliedBy(r Registrar, guard engine.Literal) error {
	return Adapt(c.Propagator).ImpliedBy(r, guard)
}

// Negation returns a > b + offset, written b <= a - offset - 1.
func (c BinaryLessThanOrEquals) Negation() NegatableConstraint {
	return LessThanOrEqualsOffset(c.b, c.a, -c.offset-1)
}

func (c BinaryLessThanOrEquals) String() string {
	return fmt.Sprintf("x%d <= x%d%+d", c.a, c.b, c.offset)
}

// Propagator returns a new propagator enforcing c.
func (c BinaryLessThanOrEquals) Propagator() engine.Propagator {
	return &lessThanOrEqualsPropagator{c: c}
}

type lessThanOrEqualsPropagator struct{ c BinaryLessThanOrEquals }

func (p *lessThanOrEqualsPropagator) Name() string { return "LessThanOrEquals(" + p.c.String() + ")" }

func (p *lessThanOrEqualsPropagator) Watch(w *engine.Watchers) {
	w.Watch(p.c.a, engine.EventLowerBound)
	w.Watch(p.c.b, engine.EventUpperBound)
}

func (p *lessThanOrEqualsPropagator) Propagate(ctx *engine.Context) error {
	a, b, off := p.c.a, p.c.b, p.c.offset
	if err := ctx.SetUpperBound(a, ctx.UpperBound(b)+off); err != nil {
		return err
	}
	return ctx.SetLowerBound(b, ctx.LowerBound(a)-off)
}

func (p *lessThanOrEqualsPropagator) DetectInconsistency(v *engine.View) bool {
	return v.LowerBound(p.c.a) > v.UpperBound(p.c.b)+p.c.offset
}
