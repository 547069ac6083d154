package engine

import "fmt"

// trailEntry remembers the domain a variable had before one tightening.
type trailEntry struct {
	v      VarID
	prev   Domain
	level  int
	source string
}

// Change describes one tightening for the search layer.
type Change struct {
	Var    VarID
	Level  int
	Before Domain
	After  Domain
	// Source is the propagator name, or "decision".
	Source string
}

// DecisionLevel returns the number of open decision levels. Level 0 is the
// root, where constraints are added.
func (e *Engine) DecisionLevel() int { return len(e.levels) }

// PushLevel opens a new decision level and returns it.
func (e *Engine) PushLevel() int {
	e.levels = append(e.levels, len(e.trail))
	return len(e.levels)
}

// Decide opens a new decision level and fixes x to val. The returned error
// is a *Conflict when val is not in the domain of x; the level stays open
// and the caller is expected to Backtrack. Call FixedPoint afterwards.
func (e *Engine) Decide(x VarID, val int) error {
	if !e.validVar(x) {
		return fmt.Errorf("decide x%d: %w", x, ErrUnknownVariable)
	}
	if e.infeasible {
		return fmt.Errorf("decide: %w", ErrInfeasibleState)
	}
	e.PushLevel()
	e.stats.Decisions++
	nd := Domain{}
	if e.vars[x].domain.Has(val) {
		nd = NewDomainFromValues(val)
	}
	return e.tighten(x, nd, noSource, "decision", fmt.Sprintf("x%d = %d", x, val))
}

// DecideLiteral opens a new decision level and makes l true.
func (e *Engine) DecideLiteral(l Literal) error {
	return e.Decide(l.Var(), l.satisfyingValue())
}

// Backtrack restores every domain to its state when level was current and
// drops all ready propagators. Backtrack(0) returns to the root.
func (e *Engine) Backtrack(level int) error {
	if level < 0 || level > e.DecisionLevel() {
		return fmt.Errorf("backtrack to level %d from level %d: invalid level", level, e.DecisionLevel())
	}
	if level == e.DecisionLevel() {
		return nil
	}
	mark := e.levels[level]
	for i := len(e.trail) - 1; i >= mark; i-- {
		t := e.trail[i]
		e.vars[t.v].domain = t.prev
	}
	e.trail = e.trail[:mark]
	e.levels = e.levels[:level]
	e.clearQueue()
	e.stats.Backtracks++
	return nil
}

// TrailSize returns the number of undoable tightenings recorded.
func (e *Engine) TrailSize() int { return len(e.trail) }

// Changes returns the tightenings made at the given decision level, oldest
// first.
func (e *Engine) Changes(level int) []Change {
	var changes []Change
	for i, t := range e.trail {
		if t.level != level {
			continue
		}
		after := e.vars[t.v].domain
		for _, next := range e.trail[i+1:] {
			if next.v == t.v {
				after = next.prev
				break
			}
		}
		changes = append(changes, Change{Var: t.v, Level: t.level, Before: t.prev, After: after, Source: t.source})
	}
	return changes
}
