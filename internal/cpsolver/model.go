// Package cpsolver provides a small constraint model over boolean decision
// variables (linear constraints with integer coefficients and a linear
// maximization objective) together with a budgeted parallel branch-and-bound
// search. It is sized for selection problems with hundreds of variables, not
// for general integer programming.
package cpsolver

import "math"

// BoolVar is an index into the model's variable table.
type BoolVar int

// Term is one coefficient-variable pair of a linear expression.
type Term struct {
	Var  BoolVar
	Coef int64
}

// NoLower and NoUpper mark one-sided linear constraints. They are kept well
// away from the int64 limits so bound arithmetic cannot overflow.
const (
	NoLower int64 = math.MinInt64 / 4
	NoUpper int64 = math.MaxInt64 / 4
)

type constraint struct {
	terms []Term
	lo    int64
	hi    int64
}

// Model accumulates variables, constraints and the objective. A model is
// owned by a single generation request; it is not safe for concurrent
// mutation.
type Model struct {
	names []string
	cons  []constraint
	obj   map[BoolVar]int64
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{obj: make(map[BoolVar]int64)}
}

// NewBoolVar registers a fresh boolean variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	m.names = append(m.names, name)
	return BoolVar(len(m.names) - 1)
}

// NumVars returns the number of registered variables.
func (m *Model) NumVars() int { return len(m.names) }

// Name returns the label a variable was registered with.
func (m *Model) Name(v BoolVar) string { return m.names[v] }

// AddLinear constrains lo <= sum(terms) <= hi.
func (m *Model) AddLinear(terms []Term, lo, hi int64) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.cons = append(m.cons, constraint{terms: cp, lo: lo, hi: hi})
}

// Fix pins a variable to a constant value.
func (m *Model) Fix(v BoolVar, value bool) {
	val := int64(0)
	if value {
		val = 1
	}
	m.AddLinear([]Term{{Var: v, Coef: 1}}, val, val)
}

// AddSumAtMost constrains the plain sum of vars to at most bound.
func (m *Model) AddSumAtMost(vars []BoolVar, bound int64) {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	m.AddLinear(terms, NoLower, bound)
}

// AddAtMostOne constrains at most one of vars to be selected.
func (m *Model) AddAtMostOne(vars []BoolVar) {
	if len(vars) < 2 {
		return
	}
	m.AddSumAtMost(vars, 1)
}

// AddProduct constrains z to equal x AND y using the standard linearization.
func (m *Model) AddProduct(z, x, y BoolVar) {
	m.AddLinear([]Term{{z, 1}, {x, -1}}, NoLower, 0)
	m.AddLinear([]Term{{z, 1}, {y, -1}}, NoLower, 0)
	m.AddLinear([]Term{{x, 1}, {y, 1}, {z, -1}}, NoLower, 1)
}

// AddObjectiveTerm accumulates coef onto the variable's objective
// coefficient.
func (m *Model) AddObjectiveTerm(v BoolVar, coef int64) {
	if coef == 0 {
		return
	}
	m.obj[v] += coef
}

// ObjectiveTerms returns the objective as a term list, suitable for reuse as
// a linear constraint (e.g. a quality floor in a second solve phase).
func (m *Model) ObjectiveTerms() []Term {
	terms := make([]Term, 0, len(m.obj))
	for v := BoolVar(0); int(v) < len(m.names); v++ {
		if coef, ok := m.obj[v]; ok && coef != 0 {
			terms = append(terms, Term{Var: v, Coef: coef})
		}
	}
	return terms
}

// AddObjectiveAtLeast constrains the objective expression to at least floor.
func (m *Model) AddObjectiveAtLeast(floor int64) {
	m.AddLinear(m.ObjectiveTerms(), floor, NoUpper)
}

// ForbidAssignment adds a no-good cut excluding the exact assignment of the
// given variables: at least one selected variable must flip off or one
// unselected variable must flip on.
func (m *Model) ForbidAssignment(selected, unselected []BoolVar) {
	terms := make([]Term, 0, len(selected)+len(unselected))
	for _, v := range selected {
		terms = append(terms, Term{Var: v, Coef: 1})
	}
	for _, v := range unselected {
		terms = append(terms, Term{Var: v, Coef: -1})
	}
	m.AddLinear(terms, NoLower, int64(len(selected))-1)
}

// Evaluate computes the objective value of a complete assignment.
func (m *Model) Evaluate(values []bool) int64 {
	var total int64
	for v, coef := range m.obj {
		if values[v] {
			total += coef
		}
	}
	return total
}

// CheckFeasible reports whether a complete assignment satisfies every
// constraint. Used by tests and as a final guard on solver output.
func (m *Model) CheckFeasible(values []bool) bool {
	for _, c := range m.cons {
		var sum int64
		for _, t := range c.terms {
			if values[t.Var] {
				sum += t.Coef
			}
		}
		if sum < c.lo || sum > c.hi {
			return false
		}
	}
	return true
}
