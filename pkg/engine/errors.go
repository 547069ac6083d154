package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine. Callers match them with errors.Is;
// most are wrapped in a ConstraintOperationError or a fmt.Errorf chain.
var (
	// ErrInfeasiblePropagator means a newly added propagator proved the
	// model inconsistent before any decision was made.
	ErrInfeasiblePropagator = errors.New("propagator is infeasible at the root")
	// ErrInfeasibleState means the engine already holds a root-level
	// conflict and rejects further constraints.
	ErrInfeasibleState = errors.New("engine is in an infeasible state")
	// ErrNotAtRoot means an operation that requires decision level 0 was
	// attempted during search.
	ErrNotAtRoot = errors.New("operation requires decision level 0")
	// ErrContextReleased means a propagator used its Context after the
	// invocation it was lent for returned.
	ErrContextReleased = errors.New("propagation context used after release")
	// ErrInvocationLimit means the fixed point did not settle within the
	// configured number of propagator invocations.
	ErrInvocationLimit = errors.New("propagator invocation limit reached")
	// ErrUnknownVariable means a VarID does not belong to this engine.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrNotBoolean means a literal was built over a non 0/1 variable.
	ErrNotBoolean = errors.New("variable is not boolean")
	// ErrInvalidDomain means a variable declaration describes an empty domain.
	ErrInvalidDomain = errors.New("invalid domain")
)

// Conflict is a propagation contradiction: some domain would become empty,
// or a propagator found its relation violated. During search it is the
// normal trigger for backtracking and never a fatal error.
type Conflict struct {
	// Propagator is the name of the unit that detected the contradiction.
	Propagator string
	// Var is the variable whose domain was wiped out, or -1.
	Var VarID
	// Level is the decision level at which the contradiction occurred.
	Level int
	// Reason is a short human-readable explanation.
	Reason string
}

func (c *Conflict) Error() string {
	if c.Var >= 0 {
		return fmt.Sprintf("conflict in %s on x%d at level %d: %s", c.Propagator, c.Var, c.Level, c.Reason)
	}
	return fmt.Sprintf("conflict in %s at level %d: %s", c.Propagator, c.Level, c.Reason)
}

// IsConflict reports whether err carries a propagation contradiction.
func IsConflict(err error) bool {
	var c *Conflict
	return errors.As(err, &c)
}

// ConstraintOperationError reports that adding a constraint to the engine
// failed at the root level. The model must be treated as rejected.
type ConstraintOperationError struct {
	// Propagator is the name of the unit being added.
	Propagator string
	// Err is ErrInfeasiblePropagator, ErrInfeasibleState or ErrNotAtRoot.
	Err error
	// Conflict is the contradiction that made the propagator infeasible,
	// when there was one.
	Conflict *Conflict
}

func (e *ConstraintOperationError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("adding %s: %v: %v", e.Propagator, e.Err, e.Conflict)
	}
	return fmt.Sprintf("adding %s: %v", e.Propagator, e.Err)
}

func (e *ConstraintOperationError) Unwrap() error { return e.Err }

// IsRootConflict reports whether err rejected a model at the root level.
func IsRootConflict(err error) bool {
	return errors.Is(err, ErrInfeasiblePropagator) || errors.Is(err, ErrInfeasibleState)
}
