// Package metrics exports engine activity as Prometheus metrics.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// Collector implements engine.Observer. Propagators are labelled by family,
// the part of their name before the first "(", so label cardinality stays
// bounded by the number of constraint kinds. One Collector may be shared by
// engines running in different goroutines.
type Collector struct {
	// Propagators registered, by family
	Registered *prometheus.CounterVec

	// Propagator invocations, by family
	Invocations *prometheus.CounterVec

	// Domain tightenings recorded on a trail
	Tightenings prometheus.Counter

	// Contradictions by family and level ("root" or "search")
	Conflicts *prometheus.CounterVec

	// Invocations needed to reach each fixed point
	FixedPointInvocations prometheus.Histogram
}

// New creates a Collector whose metrics are registered with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Registered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gokanprop_propagators_registered_total",
			Help: "Total propagators added to an engine by family",
		}, []string{"family"}),

		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gokanprop_propagator_invocations_total",
			Help: "Total propagator invocations by family",
		}, []string{"family"}),

		Tightenings: factory.NewCounter(prometheus.CounterOpts{
			Name: "gokanprop_domain_tightenings_total",
			Help: "Total domain tightenings recorded on the trail",
		}),

		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gokanprop_conflicts_total",
			Help: "Total propagation contradictions by family and level",
		}, []string{"family", "level"}), // level: "root", "search"

		FixedPointInvocations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gokanprop_fixed_point_invocations",
			Help:    "Propagator invocations needed to reach a fixed point",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
}

var _ engine.Observer = (*Collector)(nil)

// Family returns the constraint family of a propagator name:
// "Reified(Equals(x0 = x1+0), x2)" belongs to "Reified".
func Family(name string) string {
	family, _, _ := strings.Cut(name, "(")
	return family
}

// PropagatorRegistered implements engine.Observer.
func (c *Collector) PropagatorRegistered(name string) {
	if c != nil {
		c.Registered.WithLabelValues(Family(name)).Inc()
	}
}

// PropagatorInvoked implements engine.Observer.
func (c *Collector) PropagatorInvoked(name string) {
	if c != nil {
		c.Invocations.WithLabelValues(Family(name)).Inc()
	}
}

// DomainTightened implements engine.Observer.
func (c *Collector) DomainTightened(engine.VarID) {
	if c != nil {
		c.Tightenings.Inc()
	}
}

// Conflict implements engine.Observer.
func (c *Collector) Conflict(propagator string, root bool) {
	if c == nil {
		return
	}
	level := "search"
	if root {
		level = "root"
	}
	c.Conflicts.WithLabelValues(Family(propagator), level).Inc()
}

// FixedPointReached implements engine.Observer.
func (c *Collector) FixedPointReached(invocations int) {
	if c != nil {
		c.FixedPointInvocations.Observe(float64(invocations))
	}
}
