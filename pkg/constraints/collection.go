package constraints

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// Collection is an ordered sequence of constraints acting as their
// conjunction. Posting stops at the first failure and returns that error
// unchanged; later elements are never posted.
//
// A Collection has no Negation: negating a conjunction needs disjunctive
// reasoning the engine does not provide. Reify therefore fails with
// ErrUnsupported instead of producing an unsound encoding.
type Collection []Constraint

// All returns the conjunction of cs.
func All(cs ...Constraint) Collection {
	return Collection(cs)
}

// Post posts every element in order.
func (cs Collection) Post(r Registrar) error {
	for _, c := range cs {
		if err := c.Post(r); err != nil {
			return err
		}
	}
	return nil
}

// ImpliedBy posts every element under the same guard, in order.
func (cs Collection) ImpliedBy(r Registrar, guard engine.Literal) error {
	for _, c := range cs {
		if err := c.ImpliedBy(r, guard); err != nil {
			return err
		}
	}
	return nil
}

// Reify always fails with ErrUnsupported and registers nothing.
func (cs Collection) Reify(_ Registrar, guard engine.Literal) error {
	return fmt.Errorf("reify collection of %d constraints under %s: %w", len(cs), guard, ErrUnsupported)
}

// UnsupportedConstraint stands in for a constraint that has not been
// implemented. Every operation fails immediately with ErrNotImplemented.
type UnsupportedConstraint struct {
	Feature string
}

// Unsupported returns a placeholder for the named feature.
func Unsupported(feature string) UnsupportedConstraint {
	return UnsupportedConstraint{Feature: feature}
}

// Post implements Constraint.
func (u UnsupportedConstraint) Post(Registrar) error {
	return fmt.Errorf("post %s: %w", u.Feature, ErrNotImplemented)
}

// ImpliedBy implements Constraint.
func (u UnsupportedConstraint) ImpliedBy(Registrar, engine.Literal) error {
	return fmt.Errorf("post %s under a guard: %w", u.Feature, ErrNotImplemented)
}
