package model

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/constraints"
	"github.com/gitrdm/gokanprop/pkg/engine"
)

// unimplemented lists constraint kinds that parse but have no propagator
// yet. They compile to constraints.Unsupported and fail when posted.
var unimplemented = map[string]bool{
	"element":    true,
	"table":      true,
	"cumulative": true,
	"circuit":    true,
	"regular":    true,
}

// compile turns every spec into a constraint before anything is posted, so
// that a typo late in the file does not leave a half-built engine.
func (m *Model) compile(specs []ConstraintSpec) (constraints.Collection, error) {
	out := make(constraints.Collection, 0, len(specs))
	for i, spec := range specs {
		c, err := m.compileOne(spec)
		if err != nil {
			return nil, fmt.Errorf("constraint %d (%s): %w", i+1, spec.Type, err)
		}
		out = append(out, labeled{index: i + 1, kind: spec.Type, c: c})
	}
	return out, nil
}

func (m *Model) compileOne(spec ConstraintSpec) (constraints.Constraint, error) {
	if spec.Reify != "" && spec.ImpliedBy != "" {
		return nil, fmt.Errorf("%w: reify and implied_by are exclusive", ErrInvalidModel)
	}

	c, negatable, err := m.family(spec)
	if err != nil {
		return nil, err
	}

	switch {
	case spec.Reify != "":
		guard, err := m.literal(spec.Reify)
		if err != nil {
			return nil, err
		}
		if negatable == nil {
			return nil, fmt.Errorf("%s cannot be reified: %w", spec.Type, constraints.ErrUnsupported)
		}
		return reified{c: negatable, guard: guard}, nil
	case spec.ImpliedBy != "":
		guard, err := m.literal(spec.ImpliedBy)
		if err != nil {
			return nil, err
		}
		return implied{c: c, guard: guard}, nil
	}
	return c, nil
}

// family builds the constraint named by spec.Type. The second result is
// non-nil when the constraint has a negation.
func (m *Model) family(spec ConstraintSpec) (constraints.Constraint, constraints.NegatableConstraint, error) {
	if unimplemented[spec.Type] {
		return constraints.Unsupported(spec.Type), nil, nil
	}

	var n constraints.NegatableConstraint
	switch spec.Type {
	case "equals", "not_equals", "less_than_or_equals", "less_than", "greater_than_or_equals":
		a, b, err := m.pair(spec.Vars)
		if err != nil {
			return nil, nil, err
		}
		off := spec.Offset
		switch spec.Type {
		case "equals":
			n = constraints.EqualsOffset(a, b, off)
		case "not_equals":
			n = constraints.NotEqualsOffset(a, b, off)
		case "less_than_or_equals":
			n = constraints.LessThanOrEqualsOffset(a, b, off)
		case "less_than":
			n = constraints.LessThanOrEqualsOffset(a, b, off-1)
		case "greater_than_or_equals":
			n = constraints.LessThanOrEqualsOffset(b, a, -off)
		}

	case "linear_less_than_or_equals", "linear_greater_than_or_equals", "linear_equals", "linear_not_equals":
		terms, err := m.terms(spec)
		if err != nil {
			return nil, nil, err
		}
		switch spec.Type {
		case "linear_less_than_or_equals":
			n = constraints.LinearLessThanOrEquals(terms, spec.RHS)
		case "linear_greater_than_or_equals":
			n = constraints.LinearGreaterThanOrEquals(terms, spec.RHS)
		case "linear_equals":
			n = constraints.LinearEquals(terms, spec.RHS)
		case "linear_not_equals":
			n = constraints.LinearNotEquals(terms, spec.RHS)
		}

	case "clause", "conjunction", "implies":
		lits := make([]engine.Literal, len(spec.Literals))
		for i, s := range spec.Literals {
			l, err := m.literal(s)
			if err != nil {
				return nil, nil, err
			}
			lits[i] = l
		}
		switch spec.Type {
		case "clause":
			n = constraints.Clause(lits...)
		case "conjunction":
			n = constraints.Conjunction(lits...)
		case "implies":
			if len(lits) != 2 {
				return nil, nil, fmt.Errorf("%w: implies takes 2 literals, got %d", ErrInvalidModel, len(lits))
			}
			n = constraints.Implies(lits[0], lits[1])
		}

	case "all_different":
		vars, err := m.variables(spec.Vars)
		if err != nil {
			return nil, nil, err
		}
		return constraints.AllDifferent(vars...), nil, nil

	case "":
		return nil, nil, fmt.Errorf("%w: missing type", ErrInvalidModel)
	default:
		return nil, nil, fmt.Errorf("%w: unknown type %q", ErrInvalidModel, spec.Type)
	}
	return n, n, nil
}

func (m *Model) variables(names []string) ([]engine.VarID, error) {
	vars := make([]engine.VarID, len(names))
	for i, name := range names {
		v, err := m.variable(name)
		if err != nil {
			return nil, err
		}
		vars[i] = v
	}
	return vars, nil
}

func (m *Model) pair(names []string) (engine.VarID, engine.VarID, error) {
	if len(names) != 2 {
		return 0, 0, fmt.Errorf("%w: need 2 vars, got %d", ErrInvalidModel, len(names))
	}
	vars, err := m.variables(names)
	if err != nil {
		return 0, 0, err
	}
	return vars[0], vars[1], nil
}

// terms reads spec.Terms, or spec.Vars as unit weights when no terms are
// given.
func (m *Model) terms(spec ConstraintSpec) ([]constraints.Term, error) {
	if len(spec.Terms) == 0 {
		vars, err := m.variables(spec.Vars)
		if err != nil {
			return nil, err
		}
		terms := make([]constraints.Term, len(vars))
		for i, v := range vars {
			terms[i] = constraints.Plain(v)
		}
		return terms, nil
	}
	if len(spec.Vars) > 0 {
		return nil, fmt.Errorf("%w: use either vars or terms", ErrInvalidModel)
	}

	terms := make([]constraints.Term, len(spec.Terms))
	for i, t := range spec.Terms {
		v, err := m.variable(t.Var)
		if err != nil {
			return nil, err
		}
		w := 1
		if t.Weight != nil {
			w = *t.Weight
		}
		terms[i] = constraints.Scaled(v, w)
	}
	return terms, nil
}

// labeled names the model entry in posting errors.
type labeled struct {
	index int
	kind  string
	c     constraints.Constraint
}

func (l labeled) Post(r constraints.Registrar) error {
	if err := l.c.Post(r); err != nil {
		return fmt.Errorf("constraint %d (%s): %w", l.index, l.kind, err)
	}
	return nil
}

func (l labeled) ImpliedBy(r constraints.Registrar, guard engine.Literal) error {
	if err := l.c.ImpliedBy(r, guard); err != nil {
		return fmt.Errorf("constraint %d (%s): %w", l.index, l.kind, err)
	}
	return nil
}

// reified posts guard <-> c.
type reified struct {
	c     constraints.NegatableConstraint
	guard engine.Literal
}

func (r reified) Post(reg constraints.Registrar) error { return constraints.Reify(reg, r.c, r.guard) }

func (r reified) ImpliedBy(constraints.Registrar, engine.Literal) error {
	return fmt.Errorf("nested guard on a reification: %w", constraints.ErrUnsupported)
}

// implied posts guard -> c.
type implied struct {
	c     constraints.Constraint
	guard engine.Literal
}

func (i implied) Post(reg constraints.Registrar) error { return i.c.ImpliedBy(reg, i.guard) }

func (i implied) ImpliedBy(constraints.Registrar, engine.Literal) error {
	return fmt.Errorf("nested guard on an implication: %w", constraints.ErrUnsupported)
}
