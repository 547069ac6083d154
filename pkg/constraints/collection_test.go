package constraints_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gitrdm/gokanprop/pkg/constraints"
	"github.com/gitrdm/gokanprop/pkg/constraints/mocks"
	"github.com/gitrdm/gokanprop/pkg/engine"
)

func TestCollectionPostShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)
	c1 := mocks.NewMockConstraint(ctrl)
	c2 := mocks.NewMockConstraint(ctrl)
	c3 := mocks.NewMockConstraint(ctrl)
	boom := errors.New("boom")

	gomock.InOrder(
		c1.EXPECT().Post(registrar).Return(nil),
		c2.EXPECT().Post(registrar).Return(boom),
	)

	err := constraints.All(c1, c2, c3).Post(registrar)
	assert.Same(t, boom, err, "the element's error is returned unchanged")
}

func TestCollectionImpliedByUsesOneGuard(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)
	c1 := mocks.NewMockConstraint(ctrl)
	c2 := mocks.NewMockConstraint(ctrl)
	guard := engine.NewLiteral(4).Not()

	gomock.InOrder(
		c1.EXPECT().ImpliedBy(registrar, guard).Return(nil),
		c2.EXPECT().ImpliedBy(registrar, guard).Return(nil),
	)

	require.NoError(t, constraints.All(c1, c2).ImpliedBy(registrar, guard))
}

func TestCollectionImpliedByShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)
	c1 := mocks.NewMockConstraint(ctrl)
	c2 := mocks.NewMockConstraint(ctrl)
	guard := engine.NewLiteral(0)

	c1.EXPECT().ImpliedBy(registrar, guard).Return(engine.ErrInfeasibleState)

	err := constraints.All(c1, c2).ImpliedBy(registrar, guard)
	assert.ErrorIs(t, err, engine.ErrInfeasibleState)
}

func TestEmptyCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)

	assert.NoError(t, constraints.All().Post(registrar))
	assert.NoError(t, constraints.All().ImpliedBy(registrar, engine.NewLiteral(0)))
}

func TestCollectionReifyIsUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)
	c1 := mocks.NewMockConstraint(ctrl)

	err := constraints.All(c1).Reify(registrar, engine.NewLiteral(2))
	assert.ErrorIs(t, err, constraints.ErrUnsupported)
	assert.EqualError(t, err, "reify collection of 1 constraints under x2: unsupported operation")
}

func TestCollectionPostsRealConstraints(t *testing.T) {
	e := engine.New()
	x := e.NewIntVar(0, 9)
	y := e.NewIntVar(0, 9)
	z := e.NewIntVar(0, 9)

	err := constraints.All(
		constraints.LessThan(x, y),
		constraints.LessThan(y, z),
		constraints.LinearLessThanOrEquals([]constraints.Term{constraints.Plain(z)}, 4),
	).Post(e)
	require.NoError(t, err)

	assert.Equal(t, "{0..2}", e.Domain(x).String())
	assert.Equal(t, "{1..3}", e.Domain(y).String())
	assert.Equal(t, "{2..4}", e.Domain(z).String())
}

func TestUnsupportedFailsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockRegistrar(ctrl)
	u := constraints.Unsupported("cumulative")

	err := u.Post(registrar)
	assert.ErrorIs(t, err, constraints.ErrNotImplemented)
	assert.EqualError(t, err, "post cumulative: constraint not implemented")

	err = u.ImpliedBy(registrar, engine.NewLiteral(0))
	assert.ErrorIs(t, err, constraints.ErrNotImplemented)
}

func TestUnsupportedInsideCollectionStopsPosting(t *testing.T) {
	e := engine.New()
	x := e.NewIntVar(0, 9)
	y := e.NewIntVar(0, 9)

	err := constraints.All(
		constraints.Unsupported("table"),
		constraints.Equals(x, y),
	).Post(e)
	assert.ErrorIs(t, err, constraints.ErrNotImplemented)
	assert.Zero(t, e.NumPropagators())
	assert.False(t, e.IsInfeasible())
}
