package engine

import "fmt"

// VarID identifies a variable owned by an Engine. Propagators reference
// variables by identifier only and read domains through a Context.
type VarID int

// Truth is the three-valued state of a literal under the current domains.
type Truth int8

const (
	// Unknown means the literal's variable is not fixed yet.
	Unknown Truth = iota
	// True means the literal holds.
	True
	// False means the literal's complement holds.
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Literal is a Boolean proposition over a 0/1 variable with a polarity bit.
// A positive literal holds when its variable is 1, a negated literal holds
// when it is 0. Negation never allocates a new variable.
type Literal struct {
	variable VarID
	negated  bool
}

// NewLiteral returns the positive literal of v. The engine checks that v is
// a Boolean variable when the literal is used as a guard.
func NewLiteral(v VarID) Literal { return Literal{variable: v} }

// Var returns the underlying Boolean variable.
func (l Literal) Var() VarID { return l.variable }

// IsNegated reports whether l is the complement of its variable.
func (l Literal) IsNegated() bool { return l.negated }

// Not returns the complement of l.
func (l Literal) Not() Literal { return Literal{variable: l.variable, negated: !l.negated} }

// satisfyingValue is the value of the variable that makes l true.
func (l Literal) satisfyingValue() int {
	if l.negated {
		return 0
	}
	return 1
}

func (l Literal) String() string {
	if l.negated {
		return fmt.Sprintf("!x%d", l.variable)
	}
	return fmt.Sprintf("x%d", l.variable)
}

// variable is the store's record of one variable.
type variable struct {
	name    string
	domain  Domain
	boolean bool
}

// DomainEvent describes how a domain changed. Watchers subscribe to a mask.
type DomainEvent uint8

const (
	// EventAssign fires when a domain becomes a singleton.
	EventAssign DomainEvent = 1 << iota
	// EventLowerBound fires when the minimum increases.
	EventLowerBound
	// EventUpperBound fires when the maximum decreases.
	EventUpperBound
	// EventRemoval fires on every change, including holes.
	EventRemoval

	// EventBounds is EventLowerBound|EventUpperBound|EventAssign.
	EventBounds = EventLowerBound | EventUpperBound | EventAssign
	// EventAny matches every change.
	EventAny = EventAssign | EventLowerBound | EventUpperBound | EventRemoval
)

// eventsBetween classifies the change from before to after.
func eventsBetween(before, after Domain) DomainEvent {
	ev := EventRemoval
	if after.IsSingleton() {
		ev |= EventAssign
	}
	if after.Min() > before.Min() {
		ev |= EventLowerBound
	}
	if after.Max() < before.Max() {
		ev |= EventUpperBound
	}
	return ev
}
