package engine

// Reified wraps a propagator with a guard literal, enforcing guard -> inner.
//
// Propagation by guard value:
//   - False: the implication holds vacuously, nothing happens
//   - True: the inner propagator runs and its result is returned unchanged
//   - Unknown: if the inner propagator implements InconsistencyDetector and
//     reports its relation violated, the guard is fixed to false; no other
//     domain is touched
//
// Full reification (guard <-> C) is built from two Reified units, one for C
// under the guard and one for C's negation under the guard's complement.
type Reified struct {
	inner Propagator
	guard Literal
	name  string
}

// NewReified wraps inner so that it only fires when guard is true.
func NewReified(inner Propagator, guard Literal) *Reified {
	return &Reified{
		inner: inner,
		guard: guard,
		name:  "Reified(" + inner.Name() + ", " + guard.String() + ")",
	}
}

// Name implements Propagator.
func (r *Reified) Name() string { return r.name }

// Guard returns the guard literal.
func (r *Reified) Guard() Literal { return r.guard }

// Inner returns the wrapped propagator.
func (r *Reified) Inner() Propagator { return r.inner }

// Watch implements Propagator: the guard variable plus the inner watch set.
func (r *Reified) Watch(w *Watchers) {
	w.WatchLiteral(r.guard)
	r.inner.Watch(w)
}

// Propagate implements Propagator.
func (r *Reified) Propagate(ctx *Context) error {
	switch ctx.LiteralTruth(r.guard) {
	case False:
		return nil
	case True:
		return r.inner.Propagate(ctx)
	}

	if !ctx.e.config.DetectReifiedInconsistency {
		return nil
	}
	if d, ok := r.inner.(InconsistencyDetector); ok && d.DetectInconsistency(&ctx.View) {
		return ctx.AssignLiteral(r.guard.Not())
	}
	return nil
}

// DetectInconsistency implements InconsistencyDetector so reified units can
// be nested: guard true and inner violated.
func (r *Reified) DetectInconsistency(v *View) bool {
	if v.LiteralTruth(r.guard) != True {
		return false
	}
	d, ok := r.inner.(InconsistencyDetector)
	return ok && d.DetectInconsistency(v)
}
