package engine_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// atMost enforces x <= limit.
type atMost struct {
	x     engine.VarID
	limit int
}

func (p atMost) Name() string { return fmt.Sprintf("AtMost(x%d, %d)", p.x, p.limit) }

func (p atMost) Watch(w *engine.Watchers) { w.Watch(p.x, engine.EventLowerBound) }

func (p atMost) Propagate(ctx *engine.Context) error { return ctx.SetUpperBound(p.x, p.limit) }

func ExampleEngine_AddPropagator() {
	e := engine.New()
	x := e.NewNamedIntVar("x", 0, 9)

	if err := e.AddPropagator(atMost{x: x, limit: 4}); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(e.Name(x), e.Domain(x))

	err := e.AddPropagator(atMost{x: x, limit: -1})
	fmt.Println(errors.Is(err, engine.ErrInfeasiblePropagator))
	fmt.Println(e.IsInfeasible())
	// Output:
	// x {0..4}
	// true
	// true
}

func ExampleEngine_Backtrack() {
	e := engine.New()
	x := e.NewIntVar(0, 3)

	_ = e.Decide(x, 2)
	_ = e.FixedPoint(context.Background())
	fmt.Println(e.DecisionLevel(), e.Domain(x))

	_ = e.Backtrack(0)
	fmt.Println(e.DecisionLevel(), e.Domain(x))
	// Output:
	// 1 {2}
	// 0 {0..3}
}
