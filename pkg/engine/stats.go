package engine

import "fmt"

// Stats holds counters about one engine's propagation work.
type Stats struct {
	// Registration
	PropagatorsAdded int

	// Propagation
	Invocations int // propagator invocations
	Tightenings int // domain changes recorded on the trail
	Conflicts   int // contradictions returned by FixedPoint
	FixedPoints int // FixedPoint calls that reached a fixed point

	// Search bookkeeping
	Decisions  int
	Backtracks int

	// Memory
	PeakTrailSize int
	PeakQueueSize int
}

// String returns a formatted summary.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Engine Statistics:\n"+
			"  Propagators: %d added\n"+
			"  Propagation: %d invocations, %d tightenings, %d conflicts, %d fixed points\n"+
			"  Search: %d decisions, %d backtracks\n"+
			"  Memory: peak trail %d, peak queue %d",
		s.PropagatorsAdded,
		s.Invocations, s.Tightenings, s.Conflicts, s.FixedPoints,
		s.Decisions, s.Backtracks,
		s.PeakTrailSize, s.PeakQueueSize,
	)
}

// Observer receives engine events. Implementations must be cheap; they are
// called from the fixed-point loop.
type Observer interface {
	PropagatorRegistered(name string)
	PropagatorInvoked(name string)
	DomainTightened(v VarID)
	Conflict(propagator string, root bool)
	FixedPointReached(invocations int)
}

type nopObserver struct{}

func (nopObserver) PropagatorRegistered(string) {}
func (nopObserver) PropagatorInvoked(string)    {}
func (nopObserver) DomainTightened(VarID)       {}
func (nopObserver) Conflict(string, bool)       {}
func (nopObserver) FixedPointReached(int)       {}
