package engine

import "fmt"

// PropagatorID is the index of a registered propagator in the engine's
// registration table.
type PropagatorID int

// Propagator is a propagation unit: it watches a set of variables and, when
// invoked, tightens domains or reports a contradiction.
//
// A Propagator is registered exactly once with AddPropagator and is owned by
// the engine afterwards. Only the fixed-point driver calls Propagate, and it
// never calls two propagators at the same time, so implementations may keep
// unsynchronized internal state.
type Propagator interface {
	// Name identifies the propagator in errors, logs and metrics.
	Name() string

	// Watch declares the variables and events that make the propagator
	// ready. It is called once, at registration.
	Watch(w *Watchers)

	// Propagate narrows domains through ctx. It returns nil at a local
	// fixed point, or an error (normally a *Conflict produced by ctx) when
	// the relation cannot hold. ctx must not be retained.
	Propagate(ctx *Context) error
}

// InconsistencyDetector is an optional capability of a Propagator: a
// side-effect free check that the relation is already violated under the
// current domains. Reified uses it to fix an undetermined guard to false.
type InconsistencyDetector interface {
	DetectInconsistency(v *View) bool
}

// Watchers collects a propagator's watch set during registration.
type Watchers struct {
	e   *Engine
	id  PropagatorID
	err error
}

// Watch subscribes the propagator to the given events on v. Watching the
// same variable twice merges the event masks.
func (w *Watchers) Watch(v VarID, events DomainEvent) {
	if w.err != nil {
		return
	}
	if !w.e.validVar(v) {
		w.err = fmt.Errorf("watch x%d: %w", v, ErrUnknownVariable)
		return
	}
	list := w.e.watchers[v]
	for i := range list {
		if list[i].id == w.id {
			list[i].events |= events
			return
		}
	}
	w.e.watchers[v] = append(list, watcher{id: w.id, events: events})
}

// WatchLiteral subscribes to the assignment of l's variable.
func (w *Watchers) WatchLiteral(l Literal) {
	if w.err == nil && w.e.validVar(l.Var()) && !w.e.vars[l.Var()].boolean {
		w.err = fmt.Errorf("watch literal %s: %w", l, ErrNotBoolean)
		return
	}
	w.Watch(l.Var(), EventAssign)
}

type watcher struct {
	id     PropagatorID
	events DomainEvent
}

// View is read-only access to the domain store for the duration of one
// propagator invocation. Reading a released view panics with
// ErrContextReleased; that is always a propagator bug.
type View struct {
	e      *Engine
	active bool
}

func (v *View) engine() *Engine {
	if !v.active {
		panic(ErrContextReleased)
	}
	return v.e
}

// Domain returns the current domain of x.
func (v *View) Domain(x VarID) Domain { return v.engine().vars[x].domain }

// LowerBound returns the smallest value left for x.
func (v *View) LowerBound(x VarID) int { return v.Domain(x).Min() }

// UpperBound returns the largest value left for x.
func (v *View) UpperBound(x VarID) int { return v.Domain(x).Max() }

// Contains reports whether val is still possible for x.
func (v *View) Contains(x VarID, val int) bool { return v.Domain(x).Has(val) }

// IsFixed reports whether x has a single value left.
func (v *View) IsFixed(x VarID) bool { return v.Domain(x).IsSingleton() }

// Value returns the value of a fixed variable.
func (v *View) Value(x VarID) (int, bool) { return v.Domain(x).SingletonValue() }

// LiteralTruth returns the truth value of l.
func (v *View) LiteralTruth(l Literal) Truth { return v.engine().literalTruth(l) }

// DecisionLevel returns the current decision level.
func (v *View) DecisionLevel() int { return v.engine().DecisionLevel() }

// Context is the mutable handle the fixed-point driver lends to exactly one
// propagator invocation. Every tightening goes through it so that the trail
// can attribute it to the current decision level.
type Context struct {
	View
	id   PropagatorID
	name string
}

// SetLowerBound removes every value of x below b.
func (c *Context) SetLowerBound(x VarID, b int) error {
	return c.update(x, func(d Domain) Domain { return d.RemoveBelow(b) }, fmt.Sprintf("x%d >= %d", x, b))
}

// SetUpperBound removes every value of x above b.
func (c *Context) SetUpperBound(x VarID, b int) error {
	return c.update(x, func(d Domain) Domain { return d.RemoveAbove(b) }, fmt.Sprintf("x%d <= %d", x, b))
}

// Remove removes val from the domain of x.
func (c *Context) Remove(x VarID, val int) error {
	return c.update(x, func(d Domain) Domain { return d.Remove(val) }, fmt.Sprintf("x%d != %d", x, val))
}

// Assign fixes x to val.
func (c *Context) Assign(x VarID, val int) error {
	return c.update(x, func(d Domain) Domain {
		if d.Has(val) {
			return NewDomainFromValues(val)
		}
		return Domain{}
	}, fmt.Sprintf("x%d = %d", x, val))
}

// Restrict intersects the domain of x with allowed.
func (c *Context) Restrict(x VarID, allowed Domain) error {
	return c.update(x, func(d Domain) Domain { return d.Intersect(allowed) }, fmt.Sprintf("x%d in %s", x, allowed))
}

// AssignLiteral makes l true.
func (c *Context) AssignLiteral(l Literal) error {
	return c.Assign(l.Var(), l.satisfyingValue())
}

// Fail returns a conflict attributed to this propagator. Propagators use it
// when their relation is violated without a specific domain wipe-out.
func (c *Context) Fail(format string, args ...any) error {
	return &Conflict{
		Propagator: c.name,
		Var:        -1,
		Level:      c.e.DecisionLevel(),
		Reason:     fmt.Sprintf(format, args...),
	}
}

func (c *Context) update(x VarID, narrow func(Domain) Domain, reason string) error {
	if !c.active {
		return ErrContextReleased
	}
	return c.e.tighten(x, narrow(c.e.vars[x].domain), c.id, c.name, reason)
}

func (c *Context) release() { c.active = false }
