package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideAndBacktrack(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)
	y := e.NewIntVar(0, 3)
	require.NoError(t, e.AddPropagator(copyOf(y, x)))

	require.NoError(t, e.Decide(x, 1))
	assert.Equal(t, 1, e.DecisionLevel())
	require.NoError(t, e.FixedPoint(context.Background()))
	v, ok := e.Value(y)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, e.Backtrack(0))
	assert.Zero(t, e.DecisionLevel())
	assert.Equal(t, "{0..3}", e.Domain(x).String())
	assert.Equal(t, "{0..3}", e.Domain(y).String())
	assert.Zero(t, e.TrailSize())
	assert.Equal(t, 1, e.Stats().Decisions)
	assert.Equal(t, 1, e.Stats().Backtracks)
}

func TestBacktrackRestoresIntermediateLevel(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	y := e.NewIntVar(0, 9)

	require.NoError(t, e.Decide(x, 5))
	require.NoError(t, e.Decide(y, 2))
	assert.Equal(t, 2, e.DecisionLevel())

	require.NoError(t, e.Backtrack(1))
	assert.Equal(t, "{5}", e.Domain(x).String())
	assert.Equal(t, "{0..9}", e.Domain(y).String())
}

func TestBacktrackInvalidLevel(t *testing.T) {
	e := New()
	e.NewIntVar(0, 9)

	assert.Error(t, e.Backtrack(1))
	assert.Error(t, e.Backtrack(-1))
	assert.NoError(t, e.Backtrack(0))
}

func TestBacktrackClearsReadyQueue(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 9)
	p := watching("p", x, EventAssign)
	require.NoError(t, e.AddPropagator(p))

	require.NoError(t, e.Decide(x, 3))
	require.NoError(t, e.Backtrack(0))
	require.NoError(t, e.FixedPoint(context.Background()))
	assert.Equal(t, 1, p.calls)
}

func TestDecideOutsideDomainConflicts(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)

	err := e.Decide(x, 7)
	var conflict *Conflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "decision", conflict.Propagator)
	assert.Equal(t, x, conflict.Var)
	assert.Equal(t, 1, e.DecisionLevel(), "the level stays open")
	assert.False(t, e.IsInfeasible())

	require.NoError(t, e.Backtrack(0))
}

func TestDecideUnknownVariable(t *testing.T) {
	e := New()
	assert.ErrorIs(t, e.Decide(4, 1), ErrUnknownVariable)
}

func TestDecideLiteral(t *testing.T) {
	e := New()
	b := e.NewBoolVar()

	require.NoError(t, e.DecideLiteral(b.Not()))
	assert.Equal(t, False, e.LiteralTruth(b))
	assert.Equal(t, True, e.LiteralTruth(b.Not()))
}

func TestChanges(t *testing.T) {
	e := New()
	x := e.NewIntVar(0, 3)
	y := e.NewIntVar(0, 5)
	require.NoError(t, e.AddPropagator(copyOf(y, x)))

	root := e.Changes(0)
	require.Len(t, root, 1)
	assert.Equal(t, y, root[0].Var)
	assert.Equal(t, "copy", root[0].Source)
	assert.Equal(t, "{0..5}", root[0].Before.String())
	assert.Equal(t, "{0..3}", root[0].After.String())

	require.NoError(t, e.Decide(x, 2))
	require.NoError(t, e.FixedPoint(context.Background()))

	changes := e.Changes(1)
	require.Len(t, changes, 2)
	assert.Equal(t, x, changes[0].Var)
	assert.Equal(t, "decision", changes[0].Source)
	assert.Equal(t, 1, changes[0].Level)
	assert.Equal(t, "{0..3}", changes[0].Before.String())
	assert.Equal(t, "{2}", changes[0].After.String())
	assert.Equal(t, y, changes[1].Var)
	assert.Equal(t, "copy", changes[1].Source)
	assert.Equal(t, "{2}", changes[1].After.String())
}
