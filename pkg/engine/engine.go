// Package engine provides the propagation core of a finite-domain
// constraint solver.
//
// # Architecture Overview
//
// The Engine owns three things:
//
//	Domain store:
//	  - one immutable Domain per variable
//	  - a trail of previous domains, tagged with the decision level
//
//	Registration table:
//	  - every Propagator added with AddPropagator
//	  - per-variable watch lists built from each propagator's Watch call
//
//	Ready queue:
//	  - propagators whose watched variables changed since their last run
//
// FixedPoint pops ready propagators one at a time and lends each a Context,
// the only mutable handle on the store. A tightening made through a Context
// enqueues every other propagator watching that variable. The loop stops
// when the queue is empty (fixed point) or on the first contradiction.
//
// Example with Equals(a, b), a, b in {0..3}:
//
//	AddPropagator:  queue=[eq]      run eq: nothing to remove, fixed point
//	Decide(a, 1):   level 1, a={1}  queue=[eq]
//	FixedPoint:     run eq: b={1}   queue=[] fixed point
//	Backtrack(0):   a={0..3}, b={0..3}
//
// The engine is single-threaded. Independent engines may be used from
// different goroutines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gitrdm/gokanprop/pkg/engine"

// noSource marks tightenings that come from decisions rather than a
// propagator; they notify every watcher.
const noSource PropagatorID = -1

// Config holds engine parameters.
type Config struct {
	// MaxInvocations bounds the propagator invocations of one FixedPoint
	// call. Zero means unlimited.
	MaxInvocations int `yaml:"max_invocations" json:"max_invocations"`

	// DetectReifiedInconsistency lets a Reified propagator with an
	// undetermined guard run its inner unit's InconsistencyDetector and
	// fix the guard to false.
	DetectReifiedInconsistency bool `yaml:"detect_reified_inconsistency" json:"detect_reified_inconsistency"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		MaxInvocations:             0,
		DetectReifiedInconsistency: true,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration. A nil config is ignored.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			c := *cfg
			e.config = &c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer used for AddPropagator and
// FixedPoint spans. Without it the engine uses the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithObserver installs an observer for engine events, such as a
// metrics.Collector.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Engine hosts propagators and drives them to a joint fixed point.
type Engine struct {
	id       uuid.UUID
	config   *Config
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer

	vars     []variable
	watchers [][]watcher

	propagators []Propagator
	queue       []PropagatorID
	queued      []bool

	trail  []trailEntry
	levels []int // levels[i] is the trail length when level i+1 was pushed

	infeasible bool
	stats      Stats
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		id:       uuid.New(),
		config:   DefaultConfig(),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("engine", e.id.String())
	return e
}

// ID returns the engine's session identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return *e.config }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Stats returns a snapshot of the engine statistics.
func (e *Engine) Stats() Stats { return e.stats }

// IsInfeasible reports whether a root-level conflict has been found. An
// infeasible engine rejects further constraints.
func (e *Engine) IsInfeasible() bool { return e.infeasible }

// NewVar creates a variable with the given domain. An empty domain is a
// root-level inconsistency: the engine becomes infeasible.
func (e *Engine) NewVar(name string, d Domain) VarID {
	id := VarID(len(e.vars))
	boolean := d.Count() > 0 && d.Min() >= 0 && d.Max() <= 1
	e.vars = append(e.vars, variable{name: name, domain: d, boolean: boolean})
	e.watchers = append(e.watchers, nil)
	if d.IsEmpty() {
		e.infeasible = true
		e.logger.Warn("variable created with empty domain", "var", name, "id", int(id))
	}
	return id
}

// NewIntVar creates an integer variable with domain {lo..hi}.
func (e *Engine) NewIntVar(lo, hi int) VarID {
	return e.NewVar("", NewIntervalDomain(lo, hi))
}

// NewNamedIntVar creates a named integer variable with domain {lo..hi}.
func (e *Engine) NewNamedIntVar(name string, lo, hi int) VarID {
	return e.NewVar(name, NewIntervalDomain(lo, hi))
}

// NewIntVars creates count integer variables with domain {lo..hi}.
func (e *Engine) NewIntVars(count, lo, hi int) []VarID {
	vars := make([]VarID, count)
	for i := range vars {
		vars[i] = e.NewIntVar(lo, hi)
	}
	return vars
}

// NewVarFromValues creates an anonymous variable whose domain is exactly
// values.
func (e *Engine) NewVarFromValues(values ...int) VarID {
	return e.NewVar("", NewDomainFromValues(values...))
}

// NewBoolVar creates a 0/1 variable and returns its positive literal.
func (e *Engine) NewBoolVar() Literal {
	return NewLiteral(e.NewVar("", NewIntervalDomain(0, 1)))
}

// NewNamedBoolVar creates a named 0/1 variable and returns its positive literal.
func (e *Engine) NewNamedBoolVar(name string) Literal {
	return NewLiteral(e.NewVar(name, NewIntervalDomain(0, 1)))
}

// NumVars returns the number of variables.
func (e *Engine) NumVars() int { return len(e.vars) }

// Name returns the name of v, or "x<id>" for anonymous variables.
func (e *Engine) Name(v VarID) string {
	if e.validVar(v) && e.vars[v].name != "" {
		return e.vars[v].name
	}
	return fmt.Sprintf("x%d", v)
}

// Domain returns the current domain of v.
func (e *Engine) Domain(v VarID) Domain { return e.vars[v].domain }

// LowerBound returns the smallest value left for v.
func (e *Engine) LowerBound(v VarID) int { return e.vars[v].domain.Min() }

// UpperBound returns the largest value left for v.
func (e *Engine) UpperBound(v VarID) int { return e.vars[v].domain.Max() }

// Value returns the value of v if it is fixed.
func (e *Engine) Value(v VarID) (int, bool) { return e.vars[v].domain.SingletonValue() }

// LiteralTruth returns the current truth value of l.
func (e *Engine) LiteralTruth(l Literal) Truth { return e.literalTruth(l) }

func (e *Engine) literalTruth(l Literal) Truth {
	d := e.vars[l.Var()].domain
	val, fixed := d.SingletonValue()
	if !fixed {
		return Unknown
	}
	if val == l.satisfyingValue() {
		return True
	}
	return False
}

func (e *Engine) validVar(v VarID) bool { return v >= 0 && int(v) < len(e.vars) }

// NumPropagators returns the size of the registration table.
func (e *Engine) NumPropagators() int { return len(e.propagators) }

// AddPropagator registers p and propagates to a fixed point.
//
// It only works at decision level 0. If the engine is already infeasible,
// or if propagation after adding p yields a contradiction, it returns a
// *ConstraintOperationError and the model must be treated as rejected.
func (e *Engine) AddPropagator(p Propagator) error {
	name := p.Name()
	ctx, span := e.tracer.Start(context.Background(), "engine.AddPropagator",
		trace.WithAttributes(attribute.String("propagator", name)))
	defer span.End()

	if e.infeasible {
		return &ConstraintOperationError{Propagator: name, Err: ErrInfeasibleState}
	}
	if e.DecisionLevel() != 0 {
		return &ConstraintOperationError{Propagator: name, Err: ErrNotAtRoot}
	}

	id := PropagatorID(len(e.propagators))
	w := &Watchers{e: e, id: id}
	p.Watch(w)
	if w.err != nil {
		e.unwatch(id)
		return fmt.Errorf("adding %s: %w", name, w.err)
	}

	e.propagators = append(e.propagators, p)
	e.queued = append(e.queued, false)
	e.stats.PropagatorsAdded++
	e.observer.PropagatorRegistered(name)
	e.logger.Debug("propagator registered", "propagator", name, "id", int(id))

	e.enqueue(id)
	if err := e.FixedPoint(ctx); err != nil {
		var conflict *Conflict
		if errors.As(err, &conflict) {
			span.SetStatus(codes.Error, "root-level conflict")
			e.logger.Warn("root-level conflict", "propagator", name, "conflict", conflict.Error())
			return &ConstraintOperationError{Propagator: name, Err: ErrInfeasiblePropagator, Conflict: conflict}
		}
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}

// FixedPoint runs ready propagators until none is ready or one reports a
// contradiction, which is returned as a *Conflict.
//
// Cancellation of ctx and Config.MaxInvocations are checked between
// invocations; in both cases the ready queue is kept so a later call
// resumes where this one stopped. A contradiction clears the queue, and at
// decision level 0 it also makes the engine infeasible.
func (e *Engine) FixedPoint(ctx context.Context) error {
	if e.infeasible {
		return fmt.Errorf("fixed point: %w", ErrInfeasibleState)
	}
	ctx, span := e.tracer.Start(ctx, "engine.FixedPoint",
		trace.WithAttributes(attribute.Int("level", e.DecisionLevel())))
	defer span.End()

	invocations := 0
	for len(e.queue) > 0 {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return err
		}
		if limit := e.config.MaxInvocations; limit > 0 && invocations >= limit {
			return fmt.Errorf("fixed point after %d invocations: %w", invocations, ErrInvocationLimit)
		}

		id := e.dequeue()
		p := e.propagators[id]
		c := &Context{View: View{e: e, active: true}, id: id, name: p.Name()}
		err := p.Propagate(c)
		c.release()

		invocations++
		e.stats.Invocations++
		e.observer.PropagatorInvoked(c.name)

		if err == nil {
			continue
		}
		e.clearQueue()
		var conflict *Conflict
		if !errors.As(err, &conflict) {
			span.RecordError(err)
			return fmt.Errorf("propagator %s: %w", c.name, err)
		}
		root := e.DecisionLevel() == 0
		if root {
			e.infeasible = true
		}
		e.stats.Conflicts++
		e.observer.Conflict(c.name, root)
		span.SetStatus(codes.Error, conflict.Error())
		return conflict
	}

	e.stats.FixedPoints++
	e.observer.FixedPointReached(invocations)
	span.SetAttributes(attribute.Int("invocations", invocations))
	return nil
}

// tighten replaces the domain of x by nd, which must be a subset of the
// current domain. It records the change on the trail and wakes watchers.
func (e *Engine) tighten(x VarID, nd Domain, source PropagatorID, name, reason string) error {
	if !e.validVar(x) {
		return fmt.Errorf("tighten x%d: %w", x, ErrUnknownVariable)
	}
	old := e.vars[x].domain
	if nd.Count() == old.Count() {
		return nil
	}
	if nd.IsEmpty() {
		return &Conflict{
			Propagator: name,
			Var:        x,
			Level:      e.DecisionLevel(),
			Reason:     fmt.Sprintf("%s empties %s", reason, old),
		}
	}

	e.trail = append(e.trail, trailEntry{v: x, prev: old, level: e.DecisionLevel(), source: name})
	e.vars[x].domain = nd
	e.stats.Tightenings++
	e.stats.PeakTrailSize = max(e.stats.PeakTrailSize, len(e.trail))
	e.observer.DomainTightened(x)

	ev := eventsBetween(old, nd)
	for _, w := range e.watchers[x] {
		if w.id != source && w.events&ev != 0 {
			e.enqueue(w.id)
		}
	}
	return nil
}

func (e *Engine) enqueue(id PropagatorID) {
	if e.queued[id] {
		return
	}
	e.queued[id] = true
	e.queue = append(e.queue, id)
	e.stats.PeakQueueSize = max(e.stats.PeakQueueSize, len(e.queue))
}

func (e *Engine) dequeue() PropagatorID {
	id := e.queue[0]
	e.queue = e.queue[1:]
	e.queued[id] = false
	return id
}

func (e *Engine) clearQueue() {
	for _, id := range e.queue {
		e.queued[id] = false
	}
	e.queue = e.queue[:0]
}

// unwatch drops the watch entries of a propagator whose registration failed.
func (e *Engine) unwatch(id PropagatorID) {
	for v, list := range e.watchers {
		kept := list[:0]
		for _, w := range list {
			if w.id != id {
				kept = append(kept, w)
			}
		}
		e.watchers[v] = kept
	}
}
