// Package model reads constraint models from YAML files and posts them on
// an engine.
//
// A model file declares variables and constraints by name:
//
//	name: reified-equality
//	variables:
//	  - {name: a, min: 0, max: 3}
//	  - {name: b, values: [1, 3, 5]}
//	  - {name: r, bool: true}
//	constraints:
//	  - {type: equals, vars: [a, b], reify: r}
//	  - {type: linear_less_than_or_equals, terms: [{var: a, weight: 2}, {var: b}], rhs: 7}
//	  - {type: clause, literals: [r, "!s"]}
//	  - {type: not_equals, vars: [a, b], implied_by: "!r"}
package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// ErrInvalidModel is wrapped by every structural problem in a model file.
var ErrInvalidModel = errors.New("invalid model")

// File is the decoded form of a model file.
type File struct {
	Name        string           `yaml:"name"`
	Variables   []VariableSpec   `yaml:"variables"`
	Constraints []ConstraintSpec `yaml:"constraints"`
}

// VariableSpec declares one variable. Exactly one of Bool, Values or the
// Min/Max pair must be set.
type VariableSpec struct {
	Name   string `yaml:"name"`
	Min    *int   `yaml:"min,omitempty"`
	Max    *int   `yaml:"max,omitempty"`
	Values []int  `yaml:"values,omitempty"`
	Bool   bool   `yaml:"bool,omitempty"`
}

// ConstraintSpec declares one constraint. Which fields apply depends on
// Type; Reify and ImpliedBy name a guard literal such as "r" or "!r".
type ConstraintSpec struct {
	Type      string     `yaml:"type"`
	Vars      []string   `yaml:"vars,omitempty"`
	Offset    int        `yaml:"offset,omitempty"`
	Terms     []TermSpec `yaml:"terms,omitempty"`
	RHS       int        `yaml:"rhs,omitempty"`
	Literals  []string   `yaml:"literals,omitempty"`
	Reify     string     `yaml:"reify,omitempty"`
	ImpliedBy string     `yaml:"implied_by,omitempty"`
}

// TermSpec is weight * var. A missing weight means 1.
type TermSpec struct {
	Var    string `yaml:"var"`
	Weight *int   `yaml:"weight,omitempty"`
}

// Parse decodes a model, rejecting unknown keys.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidModel)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return &f, nil
}

// Load reads and parses the model file at path. A model without a name is
// named after the file.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = path
	}
	return f, nil
}

// Model is a File whose variables exist on an engine.
type Model struct {
	Name   string
	Engine *engine.Engine
	// Vars lists the variables in declaration order.
	Vars []engine.VarID

	ids map[string]engine.VarID
}

// Lookup returns the variable declared with name.
func (m *Model) Lookup(name string) (engine.VarID, bool) {
	v, ok := m.ids[name]
	return v, ok
}

// Build creates the variables of f on e and posts its constraints in
// order. Structural errors wrap ErrInvalidModel and leave e untouched by
// constraints. A root-level conflict is returned as the engine reports it
// (see engine.IsRootConflict) together with the partially posted model; so
// is an engine that was already infeasible before any constraint.
func Build(e *engine.Engine, f *File) (*Model, error) {
	m := &Model{Name: f.Name, Engine: e, ids: make(map[string]engine.VarID, len(f.Variables))}
	for i, spec := range f.Variables {
		if err := m.declare(spec); err != nil {
			return nil, fmt.Errorf("variable %d: %w", i+1, err)
		}
	}

	if e.IsInfeasible() {
		return m, &engine.ConstraintOperationError{Propagator: "variables", Err: engine.ErrInfeasibleState}
	}

	compiled, err := m.compile(f.Constraints)
	if err != nil {
		return nil, err
	}
	if err := compiled.Post(e); err != nil {
		return m, err
	}
	return m, nil
}

func (m *Model) declare(spec VariableSpec) error {
	name := spec.Name
	switch {
	case name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidModel)
	case strings.HasPrefix(name, "!"):
		return fmt.Errorf("%w: name %q must not start with '!'", ErrInvalidModel, name)
	}
	if _, dup := m.ids[name]; dup {
		return fmt.Errorf("%w: %s declared twice", ErrInvalidModel, name)
	}

	forms := 0
	if spec.Bool {
		forms++
	}
	if len(spec.Values) > 0 {
		forms++
	}
	if spec.Min != nil || spec.Max != nil {
		forms++
		if spec.Min == nil || spec.Max == nil {
			return fmt.Errorf("%w: %s needs both min and max", ErrInvalidModel, name)
		}
	}
	if forms != 1 {
		return fmt.Errorf("%w: %s needs exactly one of bool, values or min/max", ErrInvalidModel, name)
	}

	var d engine.Domain
	switch {
	case spec.Bool:
		d = engine.NewIntervalDomain(0, 1)
	case len(spec.Values) > 0:
		if err := engine.ValidateSpan(slices.Min(spec.Values), slices.Max(spec.Values)); err != nil {
			return fmt.Errorf("%w: %s values: %w", ErrInvalidModel, name, err)
		}
		d = engine.NewDomainFromValues(spec.Values...)
	default:
		if err := engine.ValidateSpan(*spec.Min, *spec.Max); err != nil {
			return fmt.Errorf("%w: %s min/max: %w", ErrInvalidModel, name, err)
		}
		d = engine.NewIntervalDomain(*spec.Min, *spec.Max)
	}

	v := m.Engine.NewVar(name, d)
	m.ids[name] = v
	m.Vars = append(m.Vars, v)
	return nil
}

func (m *Model) variable(name string) (engine.VarID, error) {
	v, ok := m.ids[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown variable %q", ErrInvalidModel, name)
	}
	return v, nil
}

// literal parses "r" or "!r" over a 0/1 variable.
func (m *Model) literal(s string) (engine.Literal, error) {
	name, negated := strings.CutPrefix(strings.TrimSpace(s), "!")
	v, err := m.variable(name)
	if err != nil {
		return engine.Literal{}, err
	}
	if d := m.Engine.Domain(v); d.Min() < 0 || d.Max() > 1 {
		return engine.Literal{}, fmt.Errorf("%w: literal %q: %w", ErrInvalidModel, s, engine.ErrNotBoolean)
	}
	l := engine.NewLiteral(v)
	if negated {
		l = l.Not()
	}
	return l, nil
}
