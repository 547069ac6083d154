// Package search enumerates solutions of an engine.Engine model with plain
// chronological backtracking.
//
// The search only uses the engine's search-layer surface: Decide opens a
// decision level, FixedPoint propagates, and Backtrack undoes everything
// recorded on the trail since a level. A *engine.Conflict from either call is
// a dead end, never an error.
package search

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// VariableHeuristic selects the next variable to branch on.
type VariableHeuristic int

const (
	// HeuristicDom picks the unfixed variable with the smallest domain.
	HeuristicDom VariableHeuristic = iota
	// HeuristicLex picks the first unfixed variable in declaration order.
	HeuristicLex
)

func (h VariableHeuristic) String() string {
	switch h {
	case HeuristicLex:
		return "lex"
	default:
		return "dom"
	}
}

// ParseHeuristic converts "dom" or "lex" to a VariableHeuristic.
func ParseHeuristic(s string) (VariableHeuristic, error) {
	switch s {
	case "", "dom":
		return HeuristicDom, nil
	case "lex":
		return HeuristicLex, nil
	}
	return HeuristicDom, errors.New("unknown heuristic " + s + ": must be dom or lex")
}

// Option configures a Solver.
type Option func(*Solver)

// WithHeuristic sets the variable selection heuristic.
func WithHeuristic(h VariableHeuristic) Option {
	return func(s *Solver) { s.heuristic = h }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Solver performs depth-first search over an engine's variables.
//
// Thread safety: a Solver drives a single engine and is not safe for
// concurrent use.
type Solver struct {
	e         *engine.Engine
	vars      []engine.VarID
	heuristic VariableHeuristic
	logger    *slog.Logger
	nodes     int
}

// New returns a solver that branches on vars, or on every variable of e
// when vars is empty. Solutions report the values of those variables.
func New(e *engine.Engine, vars []engine.VarID, opts ...Option) *Solver {
	if len(vars) == 0 {
		vars = make([]engine.VarID, e.NumVars())
		for i := range vars {
			vars[i] = engine.VarID(i)
		}
	}
	s := &Solver{
		e:      e,
		vars:   append([]engine.VarID(nil), vars...),
		logger: e.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nodes returns the number of decisions tried so far.
func (s *Solver) Nodes() int { return s.nodes }

// Solve returns up to maxSolutions solutions, or all of them when
// maxSolutions <= 0. Each solution lists the values of the solver's
// variables in order. The engine is returned to the decision level it had
// on entry. An infeasible model yields no solutions and no error.
func (s *Solver) Solve(ctx context.Context, maxSolutions int) ([][]int, error) {
	solutions := [][]int{}
	if s.e.IsInfeasible() {
		return solutions, nil
	}
	base := s.e.DecisionLevel()
	defer func() {
		if err := s.e.Backtrack(base); err != nil {
			s.logger.Debug("restoring decision level failed", "level", base, "error", err)
		}
	}()

	if err := s.e.FixedPoint(ctx); err != nil {
		if engine.IsConflict(err) {
			return solutions, nil
		}
		return nil, err
	}

	err := s.search(ctx, &solutions, maxSolutions)
	s.logger.Debug("search finished", "solutions", len(solutions), "nodes", s.nodes)
	return solutions, err
}

// Satisfiable reports whether at least one solution exists.
func (s *Solver) Satisfiable(ctx context.Context) (bool, error) {
	solutions, err := s.Solve(ctx, 1)
	return len(solutions) > 0, err
}

// search is an iterative depth-first search with an explicit stack. Each
// frame remembers the decision level to restore before trying its next
// value.
func (s *Solver) search(ctx context.Context, solutions *[][]int, maxSolutions int) error {
	type frame struct {
		level  int
		v      engine.VarID
		values []int
		next   int
	}

	v, values, ok := s.selectVariable()
	if !ok {
		*solutions = append(*solutions, s.extractSolution())
		return nil
	}
	stack := []*frame{{level: s.e.DecisionLevel(), v: v, values: values}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		f := stack[len(stack)-1]
		if err := s.e.Backtrack(f.level); err != nil {
			return err
		}
		if f.next >= len(f.values) {
			stack = stack[:len(stack)-1]
			continue
		}

		val := f.values[f.next]
		f.next++
		s.nodes++

		if err := s.e.Decide(f.v, val); err != nil {
			if engine.IsConflict(err) {
				continue
			}
			return err
		}
		if err := s.e.FixedPoint(ctx); err != nil {
			if engine.IsConflict(err) {
				continue
			}
			return err
		}

		nv, nvalues, ok := s.selectVariable()
		if !ok {
			*solutions = append(*solutions, s.extractSolution())
			if maxSolutions > 0 && len(*solutions) >= maxSolutions {
				return nil
			}
			continue
		}
		stack = append(stack, &frame{level: s.e.DecisionLevel(), v: nv, values: nvalues})
	}
	return nil
}

// selectVariable returns the branching variable and its values in
// ascending order, or false when every variable is fixed.
func (s *Solver) selectVariable() (engine.VarID, []int, bool) {
	best := -1
	bestSize := 0
	for i, v := range s.vars {
		size := s.e.Domain(v).Count()
		if size <= 1 {
			continue
		}
		if s.heuristic == HeuristicLex {
			best = i
			break
		}
		if best < 0 || size < bestSize {
			best, bestSize = i, size
		}
	}
	if best < 0 {
		return 0, nil, false
	}
	v := s.vars[best]
	return v, s.e.Domain(v).Values(), true
}

func (s *Solver) extractSolution() []int {
	solution := make([]int, len(s.vars))
	for i, v := range s.vars {
		solution[i], _ = s.e.Value(v)
	}
	return solution
}
