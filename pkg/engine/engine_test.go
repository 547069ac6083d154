package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPropagator adapts closures to the Propagator interface and counts
// invocations.
type testPropagator struct {
	name      string
	watch     func(w *Watchers)
	propagate func(ctx *Context) error
	calls     int
}

func (p *testPropagator) Name() string { return p.name }

func (p *testPropagator) Watch(w *Watchers) {
	if p.watch != nil {
		p.watch(w)
	}
}

func (p *testPropagator) Propagate(ctx *Context) error {
	p.calls++
	if p.propagate != nil {
		return p.propagate(ctx)
	}
	return nil
}

// detectingPropagator adds an InconsistencyDetector to testPropagator.
type detectingPropagator struct {
	testPropagator
	detect func(v *View) bool
}

func (p *detectingPropagator) DetectInconsistency(v *View) bool { return p.detect(v) }

// watching returns a propagator that only counts invocations.
func watching(name string, x VarID, events DomainEvent) *testPropagator {
	return &testPropagator{name: name, watch: func(w *Watchers) { w.Watch(x, events) }}
}

// lessOrEqual enforces a <= b on bounds.
func lessOrEqual(a, b VarID) *testPropagator {
	return &testPropagator{
		name: "le",
		watch: func(w *Watchers) {
			w.Watch(a, EventLowerBound)
			w.Watch(b, EventUpperBound)
		},
		propagate: func(ctx *Context) error {
			if err := ctx.SetUpperBound(a, ctx.UpperBound(b)); err != nil {
				return err
			}
			return ctx.SetLowerBound(b, ctx.LowerBound(a))
		},
	}
}

// copyOf enforces dst = src by domain intersection.
func copyOf(dst, src VarID) *testPropagator {
	return &testPropagator{
		name: "copy",
		watch: func(w *Watchers) {
			w.Watch(src, EventRemoval)
			w.Watch(dst, EventRemoval)
		},
		propagate: func(ctx *Context) error {
			if err := ctx.Restrict(dst, ctx.Domain(src)); err != nil {
				return err
			}
			return ctx.Restrict(src, ctx.Domain(dst))
		},
	}
}

type recordingObserver struct {
	registered  []string
	invoked     []string
	tightened   []VarID
	conflicts   []bool
	fixedPoints []int
}

func (o *recordingObserver) PropagatorRegistered(name string) {
	o.registered = append(o.registered, name)
}
func (o *recordingObserver) PropagatorInvoked(name string) { o.invoked = append(o.invoked, name) }
func (o *recordingObserver) DomainTightened(v VarID)       { o.tightened = append(o.tightened, v) }
func (o *recordingObserver) Conflict(_ string, root bool)  { o.conflicts = append(o.conflicts, root) }
func (o *recordingObserver) FixedPointReached(n int)       { o.fixedPoints = append(o.fixedPoints, n) }

func TestNewEngine(t *testing.T) {
	e := New()
	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID()))
	assert.True(t, e.Config().DetectReifiedInconsistency)
	assert.Zero(t, e.NumVars())
	assert.Zero(t, e.DecisionLevel())
	assert.False(t, e.IsInfeasible())
}

func TestWithConfigCopies(t *testing.T) {
	cfg := &Config{MaxInvocations: 3}
	e := New(WithConfig(cfg))
	cfg.MaxInvocations = 10
	assert.Equal(t, 3, e.Config().MaxInvocations)
	assert.False(t, e.Config().DetectReifiedInconsistency)
}

func TestVariables(t *testing.T) {
	e := New()
	x := e.NewNamedIntVar("x", 2, 5)
	anon := e.NewIntVar(0, 1)
	b := e.NewNamedBoolVar("b")
	vars := e.NewIntVars(3, -1, 1)

	assert.Equal(t, 6, e.NumVars())
	assert.Equal(t, "x", e.Name(x))
	assert.Equal(t, "x1", e.Name(anon))
	assert.Equal(t, "b", e.Name(b.Var()))
	assert.Equal(t, 2, e.LowerBound(x))
	assert.Equal(t, 5, e.UpperBound(x))
	assert.Equal(t, Unknown, e.LiteralTruth(b))
	assert.Len(t, vars, 3)
	assert.Equal(t, "{-1..1}", e.Domain(vars[2]).String())

	holes := e.NewVarFromValues(9, 1, 5)
	assert.Equal(t, "{1,5,9}", e.Domain(holes).String())
	assert.Equal(t, "x6", e.Name(holes))
}

func TestNewVarEmptyDomainMakesEngineInfeasible(t *testing.T) {
	e := New()
	e.NewIntVar(3, 2)
	assert.True(t, e.IsInfeasible())

	err := e.AddPropagator(&testPropagator{name: "p"})
	assert.ErrorIs(t, err, ErrInfeasibleState)
	assert.True(t, IsRootConflict(err))
}

func TestAddPropagatorRunsFixedPoint(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	y := e.NewIntVar(0, 9)
	z := e.NewIntVar(0, 4)

	require.NoError(t, e.AddPropagator(lessOrEqual(x, y)))
	require.NoError(t, e.AddPropagator(lessOrEqual(y, z)))

	assert.Equal(t, 4, e.UpperBound(y))
	assert.Equal(t, 4, e.UpperBound(x), "x must follow y transitively")
	assert.Equal(t, 2, e.NumPropagators())
	assert.Equal(t, 2, e.Stats().PropagatorsAdded)
}

func TestAddPropagatorRootConflict(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)

	err := e.AddPropagator(&testPropagator{
		name:      "too-big",
		propagate: func(ctx *Context) error { return ctx.SetLowerBound(x, 5) },
	})
	require.Error(t, err)

	var opErr *ConstraintOperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "too-big", opErr.Propagator)
	assert.ErrorIs(t, err, ErrInfeasiblePropagator)
	require.NotNil(t, opErr.Conflict)
	assert.Equal(t, x, opErr.Conflict.Var)
	assert.Zero(t, opErr.Conflict.Level)
	assert.True(t, IsRootConflict(err))
	assert.True(t, e.IsInfeasible())

	err = e.AddPropagator(&testPropagator{name: "later"})
	assert.ErrorIs(t, err, ErrInfeasibleState)

	err = e.FixedPoint(context.Background())
	assert.ErrorIs(t, err, ErrInfeasibleState)
}

func TestAddPropagatorRequiresRoot(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)
	require.NoError(t, e.Decide(x, 1))

	err := e.AddPropagator(&testPropagator{name: "p"})
	assert.ErrorIs(t, err, ErrNotAtRoot)
	assert.False(t, IsRootConflict(err))
	assert.Zero(t, e.NumPropagators())
}

func TestAddPropagatorUnknownVariable(t *testing.T) {
	e := New()
	e.NewIntVar(0, 3)

	err := e.AddPropagator(watching("p", 7, EventAny))
	assert.ErrorIs(t, err, ErrUnknownVariable)
	assert.Zero(t, e.NumPropagators())
	assert.False(t, e.IsInfeasible())
}

func TestWatchLiteralRequiresBoolean(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)

	err := e.AddPropagator(&testPropagator{
		name:  "p",
		watch: func(w *Watchers) { w.WatchLiteral(NewLiteral(x)) },
	})
	assert.ErrorIs(t, err, ErrNotBoolean)
}

func TestSourceIsNotReenqueued(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)

	p := &testPropagator{
		name:  "shrink",
		watch: func(w *Watchers) { w.Watch(x, EventAny) },
		propagate: func(ctx *Context) error {
			return ctx.SetUpperBound(x, ctx.UpperBound(x)-1)
		},
	}
	require.NoError(t, e.AddPropagator(p))

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 8, e.UpperBound(x))
}

func TestReadyQueueDeduplicates(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)

	counter := watching("counter", x, EventAny)
	require.NoError(t, e.AddPropagator(counter))
	require.Equal(t, 1, counter.calls)

	require.NoError(t, e.AddPropagator(&testPropagator{
		name: "twice",
		propagate: func(ctx *Context) error {
			if err := ctx.SetUpperBound(x, 8); err != nil {
				return err
			}
			return ctx.SetUpperBound(x, 7)
		},
	}))

	assert.Equal(t, 2, counter.calls, "two changes, one wake-up")
}

func TestWatchEventsFilterWakeUps(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)

	lower := watching("lower", x, EventLowerBound)
	require.NoError(t, e.AddPropagator(lower))
	require.NoError(t, e.AddPropagator(&testPropagator{
		name:      "cap",
		propagate: func(ctx *Context) error { return ctx.SetUpperBound(x, 5) },
	}))

	assert.Equal(t, 1, lower.calls, "an upper bound change must not wake a lower bound watcher")
}

func TestFixedPointShortCircuitsOnConflict(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)

	failing := &testPropagator{
		name:  "failing",
		watch: func(w *Watchers) { w.Watch(x, EventAssign) },
		propagate: func(ctx *Context) error {
			if ctx.IsFixed(x) {
				return ctx.Fail("x is fixed")
			}
			return nil
		},
	}
	later := watching("later", x, EventAssign)
	require.NoError(t, e.AddPropagator(failing))
	require.NoError(t, e.AddPropagator(later))
	laterCalls := later.calls

	require.NoError(t, e.Decide(x, 3))
	err := e.FixedPoint(context.Background())
	require.Error(t, err)

	var conflict *Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "failing", conflict.Propagator)
	assert.Equal(t, VarID(-1), conflict.Var)
	assert.Equal(t, 1, conflict.Level)
	assert.Equal(t, "conflict in failing at level 1: x is fixed", conflict.Error())
	assert.Equal(t, laterCalls, later.calls, "no propagator runs after a conflict")
	assert.False(t, e.IsInfeasible(), "a search conflict is not a root conflict")
	assert.Equal(t, 1, e.Stats().Conflicts)

	invocations := e.Stats().Invocations
	require.NoError(t, e.FixedPoint(context.Background()), "the queue is cleared")
	assert.Equal(t, invocations, e.Stats().Invocations)
}

func TestFixedPointWrapsPropagatorErrors(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	boom := errors.New("boom")

	require.NoError(t, e.AddPropagator(&testPropagator{
		name:  "broken",
		watch: func(w *Watchers) { w.Watch(x, EventAssign) },
		propagate: func(ctx *Context) error {
			if ctx.IsFixed(x) {
				return boom
			}
			return nil
		},
	}))

	require.NoError(t, e.Decide(x, 1))
	err := e.FixedPoint(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsConflict(err))
	assert.EqualError(t, err, "propagator broken: boom")
}

func TestMaxInvocationsKeepsQueue(t *testing.T) {
	e := New(WithConfig(&Config{MaxInvocations: 1}))
	x := e.NewIntVar(0, 9)

	first := watching("first", x, EventAssign)
	second := watching("second", x, EventAssign)
	require.NoError(t, e.AddPropagator(first))
	require.NoError(t, e.AddPropagator(second))

	require.NoError(t, e.Decide(x, 4))
	err := e.FixedPoint(context.Background())
	assert.ErrorIs(t, err, ErrInvocationLimit)
	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 1, second.calls)

	require.NoError(t, e.FixedPoint(context.Background()))
	assert.Equal(t, 2, second.calls, "the second call resumes the kept queue")
}

func TestCancelledContextKeepsQueue(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	p := watching("p", x, EventAssign)
	require.NoError(t, e.AddPropagator(p))
	require.NoError(t, e.Decide(x, 4))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.FixedPoint(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)

	require.NoError(t, e.FixedPoint(context.Background()))
	assert.Equal(t, 2, p.calls)
}

func TestContextIsReleasedAfterInvocation(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)

	var kept *Context
	require.NoError(t, e.AddPropagator(&testPropagator{
		name: "leaky",
		propagate: func(ctx *Context) error {
			kept = ctx
			return nil
		},
	}))
	require.NotNil(t, kept)

	assert.ErrorIs(t, kept.Remove(x, 1), ErrContextReleased)
	assert.PanicsWithValue(t, ErrContextReleased, func() { kept.Domain(x) })
	assert.Equal(t, 10, e.Domain(x).Count())
}

func TestObserverReceivesEvents(t *testing.T) {
	obs := &recordingObserver{}
	e := New(WithObserver(obs))
	x := e.NewIntVar(0, 9)
	y := e.NewIntVar(0, 5)

	require.NoError(t, e.AddPropagator(copyOf(x, y)))
	assert.Equal(t, []string{"copy"}, obs.registered)
	assert.Equal(t, []string{"copy"}, obs.invoked)
	assert.Equal(t, []VarID{x}, obs.tightened)
	assert.Equal(t, []int{1}, obs.fixedPoints)

	err := e.AddPropagator(&testPropagator{
		name:      "fail",
		propagate: func(ctx *Context) error { return ctx.Fail("no") },
	})
	require.Error(t, err)
	assert.Equal(t, []bool{true}, obs.conflicts)
}

func TestStatsString(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	require.NoError(t, e.AddPropagator(watching("p", x, EventAny)))
	s := e.Stats().String()
	assert.Contains(t, s, "Engine Statistics:")
	assert.Contains(t, s, "Propagators: 1 added")
}
