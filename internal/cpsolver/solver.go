package cpsolver

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status reports the outcome of a solve.
type Status int

const (
	// StatusUnknown means the budget expired before any assignment was found.
	StatusUnknown Status = iota
	// StatusOptimal means the search space was exhausted and the incumbent is
	// provably the maximum.
	StatusOptimal
	// StatusFeasible means the budget expired with at least one assignment in
	// hand, not proven optimal.
	StatusFeasible
	// StatusInfeasible means the constraint set admits no assignment.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether the result carries a usable assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options bound one solve invocation.
type Options struct {
	// Timeout is the wall-clock budget. Expiry returns the best assignment
	// found so far rather than an error.
	Timeout time.Duration
	// Workers is the parallel search width; values below one mean a single
	// worker.
	Workers int
}

const defaultTimeout = 10 * time.Second

// Result is the outcome of Solve.
type Result struct {
	Status    Status
	Objective int64
	Values    []bool
	Nodes     int64
}

// Solve maximizes the model's objective with a prefix-split parallel
// branch-and-bound. The model is read-only during the call.
func Solve(ctx context.Context, m *Model, opts Options) Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	deadline := time.Now().Add(timeout)

	best := &incumbent{}
	best.obj.Store(NoLower)
	var timedOut atomic.Bool

	base := newSearchState(m, deadline, best, &timedOut)
	if !base.rootPropagate() {
		return Result{Status: StatusInfeasible, Nodes: base.nodes}
	}

	splitVars := base.pickSplitVars(workers)
	prefixCount := 1 << len(splitVars)
	jobs := make(chan uint32, prefixCount)
	for p := 0; p < prefixCount; p++ {
		jobs <- uint32(p)
	}
	close(jobs)

	var totalNodes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			st := base.clone()
			st.ctx = gctx
			defer totalNodes.Add(st.nodes)
			for prefix := range jobs {
				if timedOut.Load() {
					return nil
				}
				mark := len(st.trail)
				ok := true
				for i, v := range splitVars {
					if !st.assign(v, int8((prefix>>uint(i))&1)) {
						ok = false
						break
					}
				}
				if ok && !st.dfs() {
					st.undoTo(mark)
					return nil
				}
				st.undoTo(mark)
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		timedOut.Store(true)
	}

	exhausted := !timedOut.Load()
	result := Result{Nodes: totalNodes.Load() + base.nodes}
	values, objective, found := best.snapshot()
	switch {
	case found && exhausted:
		result.Status = StatusOptimal
	case found:
		result.Status = StatusFeasible
	case exhausted:
		result.Status = StatusInfeasible
	default:
		result.Status = StatusUnknown
	}
	if found {
		result.Objective = objective
		result.Values = values
	}
	return result
}

// --- Shared incumbent ---

type incumbent struct {
	obj    atomic.Int64
	mu     sync.Mutex
	found  bool
	values []bool
}

// offer installs the assignment if it beats the current best.
func (b *incumbent) offer(objective int64, value []int8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.found && objective <= b.obj.Load() {
		return
	}
	if b.values == nil {
		b.values = make([]bool, len(value))
	}
	for i, v := range value {
		b.values[i] = v == 1
	}
	b.found = true
	b.obj.Store(objective)
}

// bound returns the current best objective, or NoLower when none exists.
func (b *incumbent) bound() int64 { return b.obj.Load() }

func (b *incumbent) snapshot() ([]bool, int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.found {
		return nil, 0, false
	}
	cp := make([]bool, len(b.values))
	copy(cp, b.values)
	return cp, b.obj.Load(), true
}

// --- Search state ---

type searchState struct {
	m       *Model
	varCons [][]int32
	order   []BoolVar
	objCoef []int64

	value    []int8 // -1 unfixed
	curMin   []int64
	curMax   []int64
	objFixed int64
	sumPos   int64 // optimistic unfixed objective contribution
	trail    []BoolVar

	nodes    int64
	deadline time.Time
	ctx      context.Context
	best     *incumbent
	timedOut *atomic.Bool
}

func newSearchState(m *Model, deadline time.Time, best *incumbent, timedOut *atomic.Bool) *searchState {
	n := m.NumVars()
	st := &searchState{
		m:        m,
		varCons:  make([][]int32, n),
		objCoef:  make([]int64, n),
		value:    make([]int8, n),
		curMin:   make([]int64, len(m.cons)),
		curMax:   make([]int64, len(m.cons)),
		deadline: deadline,
		ctx:      context.Background(),
		best:     best,
		timedOut: timedOut,
	}
	for i := range st.value {
		st.value[i] = -1
	}
	for v, coef := range m.obj {
		st.objCoef[v] = coef
		if coef > 0 {
			st.sumPos += coef
		}
	}
	for ci, c := range m.cons {
		for _, t := range c.terms {
			st.varCons[t.Var] = append(st.varCons[t.Var], int32(ci))
			if t.Coef < 0 {
				st.curMin[ci] += t.Coef
			} else {
				st.curMax[ci] += t.Coef
			}
		}
	}
	st.order = make([]BoolVar, n)
	for i := range st.order {
		st.order[i] = BoolVar(i)
	}
	sort.SliceStable(st.order, func(a, b int) bool {
		return absI64(st.objCoef[st.order[a]]) > absI64(st.objCoef[st.order[b]])
	})
	return st
}

// clone copies the mutable search state; model-derived tables are shared.
func (s *searchState) clone() *searchState {
	cp := *s
	cp.value = append([]int8(nil), s.value...)
	cp.curMin = append([]int64(nil), s.curMin...)
	cp.curMax = append([]int64(nil), s.curMax...)
	cp.trail = nil
	cp.nodes = 0
	return &cp
}

// rootPropagate fixes everything the constraints force before any branching.
// Returns false when the model is infeasible at the root.
func (s *searchState) rootPropagate() bool {
	for {
		changed := false
		for ci := range s.m.cons {
			c := &s.m.cons[ci]
			if s.curMin[ci] > c.hi || s.curMax[ci] < c.lo {
				return false
			}
			for _, t := range c.terms {
				if s.value[t.Var] != -1 {
					continue
				}
				forced, val, feasible := s.forcedValue(ci, c, t.Coef)
				if !feasible {
					return false
				}
				if forced {
					if !s.assign(t.Var, val) {
						return false
					}
					changed = true
				}
			}
		}
		if !changed {
			return true
		}
	}
}

// forcedValue inspects whether an unfixed variable with the given coefficient
// has only one viable value in constraint ci.
func (s *searchState) forcedValue(ci int, c *constraint, coef int64) (forced bool, val int8, feasible bool) {
	min1 := s.curMin[ci] + coef - minI64(0, coef)
	max1 := s.curMax[ci] + coef - maxI64(0, coef)
	cannotBe1 := min1 > c.hi || max1 < c.lo
	min0 := s.curMin[ci] - minI64(0, coef)
	max0 := s.curMax[ci] - maxI64(0, coef)
	cannotBe0 := min0 > c.hi || max0 < c.lo
	switch {
	case cannotBe0 && cannotBe1:
		return false, 0, false
	case cannotBe1:
		return true, 0, true
	case cannotBe0:
		return true, 1, true
	default:
		return false, 0, true
	}
}

// assign fixes v and runs unit propagation. On failure the trail holds the
// partial fixes; the caller unwinds with undoTo.
func (s *searchState) assign(v BoolVar, val int8) bool {
	if !s.fix(v, val) {
		return false
	}
	queue := []BoolVar{v}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, ci := range s.varCons[u] {
			c := &s.m.cons[ci]
			if s.curMin[ci] > c.hi || s.curMax[ci] < c.lo {
				return false
			}
			for _, t := range c.terms {
				if s.value[t.Var] != -1 {
					continue
				}
				forced, fval, feasible := s.forcedValue(int(ci), c, t.Coef)
				if !feasible {
					return false
				}
				if forced {
					if !s.fix(t.Var, fval) {
						return false
					}
					queue = append(queue, t.Var)
				}
			}
		}
	}
	return true
}

// fix records a single variable assignment and updates constraint bounds.
func (s *searchState) fix(v BoolVar, val int8) bool {
	if s.value[v] != -1 {
		return s.value[v] == val
	}
	s.value[v] = val
	s.trail = append(s.trail, v)
	for _, ci := range s.varCons[v] {
		coef := s.termCoef(ci, v)
		s.curMin[ci] += coef*int64(val) - minI64(0, coef)
		s.curMax[ci] += coef*int64(val) - maxI64(0, coef)
	}
	s.objFixed += s.objCoef[v] * int64(val)
	s.sumPos -= maxI64(0, s.objCoef[v])
	return true
}

func (s *searchState) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		val := s.value[v]
		for _, ci := range s.varCons[v] {
			coef := s.termCoef(ci, v)
			s.curMin[ci] -= coef*int64(val) - minI64(0, coef)
			s.curMax[ci] -= coef*int64(val) - maxI64(0, coef)
		}
		s.objFixed -= s.objCoef[v] * int64(val)
		s.sumPos += maxI64(0, s.objCoef[v])
		s.value[v] = -1
	}
}

func (s *searchState) termCoef(ci int32, v BoolVar) int64 {
	for _, t := range s.m.cons[ci].terms {
		if t.Var == v {
			return t.Coef
		}
	}
	return 0
}

// dfs explores the subtree below the current partial assignment. Returns
// false only when the budget expired and the search must unwind.
func (s *searchState) dfs() bool {
	s.nodes++
	if s.nodes&0xff == 0 {
		if time.Now().After(s.deadline) || s.ctx.Err() != nil {
			s.timedOut.Store(true)
			return false
		}
	}
	if s.timedOut.Load() {
		return false
	}
	if s.objFixed+s.sumPos <= s.best.bound() {
		return true
	}
	v := s.nextUnfixed()
	if v < 0 {
		s.best.offer(s.objFixed, s.value)
		return true
	}
	first, second := int8(1), int8(0)
	if s.objCoef[v] < 0 {
		first, second = 0, 1
	}
	for _, val := range [2]int8{first, second} {
		mark := len(s.trail)
		if s.assign(v, val) {
			if !s.dfs() {
				s.undoTo(mark)
				return false
			}
		}
		s.undoTo(mark)
	}
	return true
}

func (s *searchState) nextUnfixed() BoolVar {
	for _, v := range s.order {
		if s.value[v] == -1 {
			return v
		}
	}
	return -1
}

// pickSplitVars selects the leading unfixed branch variables used to carve
// the tree into independent worker jobs.
func (s *searchState) pickSplitVars(workers int) []BoolVar {
	want := 0
	for 1<<want < workers*4 && want < 10 {
		want++
	}
	var split []BoolVar
	for _, v := range s.order {
		if len(split) == want {
			break
		}
		if s.value[v] == -1 {
			split = append(split, v)
		}
	}
	return split
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func absI64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
