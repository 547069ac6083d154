// Package constraints defines the constraints that can be added to an
// engine.Engine out of the box.
//
// A constraint is a relation over variables. The engine enforces it through
// propagators, so a constraint can be viewed as a recipe for one or more
// propagators. Every constraint can be posted (enforced unconditionally) or
// posted under a guard literal with ImpliedBy. Constraints with a
// well-defined negation implement NegatableConstraint and can be fully
// reified with Reify.
//
//	e := engine.New()
//	a := e.NewIntVar(0, 3)
//	b := e.NewIntVar(0, 3)
//	if err := constraints.Equals(a, b).Post(e); err != nil {
//		// the model is inconsistent at the root
//	}
package constraints

//go:generate mockgen -source=constraint.go -destination=mocks/mocks.go -package=mocks Registrar,Constraint,NegatableConstraint

import (
	"errors"
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

var (
	// ErrUnsupported means the operation has no sound definition for the
	// constraint, such as reifying a Collection.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrNotImplemented is returned by Unsupported placeholders.
	ErrNotImplemented = errors.New("constraint not implemented")
	// ErrConsumed means a single-use constraint was posted twice.
	ErrConsumed = errors.New("constraint already consumed")
)

// Registrar accepts propagators. *engine.Engine implements it.
type Registrar interface {
	AddPropagator(p engine.Propagator) error
}

// Constraint is a relation over variables that can be added to an engine.
//
// Post and ImpliedBy return an error wrapping engine.ErrInfeasiblePropagator
// or engine.ErrInfeasibleState when the addition leads to a root-level
// conflict. After such an error the model must be abandoned.
type Constraint interface {
	// Post adds the constraint unconditionally.
	Post(r Registrar) error

	// ImpliedBy adds guard -> constraint. Assignments where guard is false
	// are not constrained.
	ImpliedBy(r Registrar, guard engine.Literal) error
}

// NegatableConstraint is a Constraint with a well-defined negation, which
// makes full reification possible. For example the negation of a = b is
// a != b.
//
// Negation is pure: it registers nothing. Negating twice yields a
// constraint that accepts the same assignments as the original.
type NegatableConstraint interface {
	Constraint
	Negation() NegatableConstraint
}

// Reify adds guard <-> c: c is implied by guard, and c's negation is
// implied by !guard. The negation is computed before anything is
// registered; if the first half fails the second is not attempted.
func Reify(r Registrar, c NegatableConstraint, guard engine.Literal) error {
	negation := c.Negation()
	if err := c.ImpliedBy(r, guard); err != nil {
		return err
	}
	return negation.ImpliedBy(r, guard.Not())
}

// Adapt turns a propagator factory into a Constraint. Every Post or
// ImpliedBy builds a fresh propagator, so posting twice registers two
// independent units. This is the only glue a propagator author needs.
func Adapt(newPropagator func() engine.Propagator) Constraint {
	return adapter{newPropagator: newPropagator}
}

type adapter struct {
	newPropagator func() engine.Propagator
}

func (a adapter) Post(r Registrar) error {
	return r.AddPropagator(a.newPropagator())
}

func (a adapter) ImpliedBy(r Registrar, guard engine.Literal) error {
	return r.AddPropagator(engine.NewReified(a.newPropagator(), guard))
}

// FromPropagator turns an existing propagator into a single-use
// Constraint. Ownership of p passes to the engine on the first Post or
// ImpliedBy; any later use returns ErrConsumed.
func FromPropagator(p engine.Propagator) Constraint {
	return &singleUse{p: p}
}

type singleUse struct {
	p        engine.Propagator
	consumed bool
}

func (s *singleUse) take() (engine.Propagator, error) {
	if s.consumed {
		return nil, fmt.Errorf("%s: %w", s.p.Name(), ErrConsumed)
	}
	s.consumed = true
	return s.p, nil
}

func (s *singleUse) Post(r Registrar) error {
	p, err := s.take()
	if err != nil {
		return err
	}
	return r.AddPropagator(p)
}

func (s *singleUse) ImpliedBy(r Registrar, guard engine.Literal) error {
	p, err := s.take()
	if err != nil {
		return err
	}
	return r.AddPropagator(engine.NewReified(p, guard))
}
