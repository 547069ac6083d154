package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntervalDomain(t *testing.T) {
	d := NewIntervalDomain(-3, 70)
	assert.Equal(t, 74, d.Count())
	assert.Equal(t, -3, d.Min())
	assert.Equal(t, 70, d.Max())
	assert.True(t, d.Has(-3))
	assert.True(t, d.Has(64))
	assert.False(t, d.Has(71))
	assert.False(t, d.Has(-4))

	assert.True(t, NewIntervalDomain(5, 4).IsEmpty())
}

func TestNewDomainFromValues(t *testing.T) {
	d := NewDomainFromValues(7, 2, 7, 200)
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, []int{2, 7, 200}, d.Values())
	assert.Equal(t, "{2,7,200}", d.String())
}

func TestValidateSpan(t *testing.T) {
	require.NoError(t, ValidateSpan(-5, 5))
	require.NoError(t, ValidateSpan(7, 7))
	require.NoError(t, ValidateSpan(0, MaxDomainWidth-1))

	tests := []struct {
		name   string
		lo, hi int
	}{
		{"empty", 3, 1},
		{"one too wide", 0, MaxDomainWidth},
		{"full int range", math.MinInt, math.MaxInt},
		{"overflowing width", -1, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSpan(tt.lo, tt.hi), ErrInvalidDomain)
		})
	}
}

func TestOversizedDomainsPanic(t *testing.T) {
	assert.Panics(t, func() { NewIntervalDomain(math.MinInt, math.MaxInt) })
	assert.Panics(t, func() { NewIntervalDomain(0, 1<<62) })
	assert.Panics(t, func() { NewDomainFromValues(0, 1<<62) })
}

func TestDomainZeroValueIsEmpty(t *testing.T) {
	var d Domain
	assert.True(t, d.IsEmpty())
	assert.False(t, d.Has(0))
	assert.Equal(t, 0, d.Min())
	assert.Equal(t, 0, d.Max())
	assert.Equal(t, "{}", d.String())
	_, ok := d.SingletonValue()
	assert.False(t, ok)
}

func TestDomainOperationsAreImmutable(t *testing.T) {
	d := NewIntervalDomain(0, 9)

	tests := []struct {
		name string
		got  Domain
		want []int
	}{
		{"remove", d.Remove(4), []int{0, 1, 2, 3, 5, 6, 7, 8, 9}},
		{"remove absent", d.Remove(42), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"remove below", d.RemoveBelow(7), []int{7, 8, 9}},
		{"remove above", d.RemoveAbove(2), []int{0, 1, 2}},
		{"remove below everything", d.RemoveBelow(10), []int{}},
		{"intersect", d.Intersect(NewDomainFromValues(-1, 3, 9, 12)), []int{3, 9}},
		{"shift", d.RemoveAbove(2).Shift(-5), []int{-5, -4, -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.Values())
			assert.Equal(t, len(tt.want), tt.got.Count())
		})
	}

	assert.Equal(t, 10, d.Count(), "receiver must not change")
}

func TestDomainSingleton(t *testing.T) {
	d := NewIntervalDomain(0, 5).RemoveBelow(3).RemoveAbove(3)
	require.True(t, d.IsSingleton())
	v, ok := d.SingletonValue()
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, "{3}", d.String())
}

func TestDomainEqual(t *testing.T) {
	a := NewIntervalDomain(1, 3)
	b := NewDomainFromValues(3, 2, 1)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.Remove(2)))
	assert.Equal(t, "{1..3}", a.String())
}

func TestDomainStringTruncates(t *testing.T) {
	values := make([]int, 0, 30)
	for i := 0; i < 30; i++ {
		values = append(values, 2*i)
	}
	s := NewDomainFromValues(values...).String()
	assert.Contains(t, s, ",...+10 more}")
}

func TestEventsBetween(t *testing.T) {
	d := NewIntervalDomain(0, 9)

	tests := []struct {
		name  string
		after Domain
		want  DomainEvent
	}{
		{"hole", d.Remove(5), EventRemoval},
		{"lower bound", d.RemoveBelow(2), EventRemoval | EventLowerBound},
		{"upper bound", d.RemoveAbove(7), EventRemoval | EventUpperBound},
		{"assign", NewDomainFromValues(4), EventAny},
		{"assign to max", NewDomainFromValues(9), EventRemoval | EventAssign | EventLowerBound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventsBetween(d, tt.after))
		})
	}
}

func TestLiteral(t *testing.T) {
	l := NewLiteral(3)
	assert.Equal(t, VarID(3), l.Var())
	assert.False(t, l.IsNegated())
	assert.True(t, l.Not().IsNegated())
	assert.Equal(t, l, l.Not().Not())
	assert.Equal(t, "x3", l.String())
	assert.Equal(t, "!x3", l.Not().String())
	assert.Equal(t, 1, l.satisfyingValue())
	assert.Equal(t, 0, l.Not().satisfyingValue())
}
