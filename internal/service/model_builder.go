package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/cpsolver"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// Objective weights. Graduation priority is amplified so degree progress
// dominates soft preferences of similar magnitude.
const (
	graduationPriorityWeight = 10
	sameYearRequiredBonus    = 200
	sameYearElectiveBonus    = 100
	genEdExactFitBonus       = 50
	gapHourPenalty           = 40
	adjacencyBonus           = 15
)

type walkingTimer interface {
	WalkMinutes(ctx context.Context, from, to string) int
}

// BuiltModel bundles the constraint model with the candidate-to-variable
// mapping the enumeration loop needs to read solutions back out.
type BuiltModel struct {
	Model      *cpsolver.Model
	Vars       []cpsolver.BoolVar
	Candidates []models.CandidateCourse
}

// SelectedCourses maps a complete solver assignment back to courses.
func (bm *BuiltModel) SelectedCourses(values []bool) []models.CandidateCourse {
	selected := make([]models.CandidateCourse, 0, 8)
	for i, v := range bm.Vars {
		if values[v] {
			selected = append(selected, bm.Candidates[i])
		}
	}
	return selected
}

// ModelBuilder turns a scored candidate set into a boolean selection model:
// one decision variable per offering, hard credit and conflict constraints,
// and a linear objective assembled from the score components.
type ModelBuilder struct {
	distances walkingTimer
	logger    *zap.Logger
}

// NewModelBuilder wires the builder dependencies.
func NewModelBuilder(distances walkingTimer, logger *zap.Logger) *ModelBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelBuilder{distances: distances, logger: logger}
}

// Build assembles the full selection model. An unsatisfiable combination of
// forced courses or credit targets yields an infeasible model, never an error;
// the solver reports that as a normal outcome.
func (b *ModelBuilder) Build(
	ctx context.Context,
	profile models.StudentProfile,
	params models.ConstraintParameters,
	candidates []models.CandidateCourse,
) *BuiltModel {
	m := cpsolver.NewModel()
	vars := make([]cpsolver.BoolVar, len(candidates))
	for i, c := range candidates {
		vars[i] = m.NewBoolVar(fmt.Sprintf("course_%d_%s", c.ID, c.Section))
		if c.Forced {
			m.Fix(vars[i], true)
		}
	}
	b.warnForcedConflicts(candidates)

	b.addCreditConstraints(m, vars, params, candidates)
	b.addConflictConstraints(m, vars, candidates)
	b.addWalkingConstraints(ctx, m, vars, params, candidates)
	b.addObjective(m, vars, profile, params, candidates)
	if params.PreferCompact {
		b.addCompactnessTerms(m, vars, candidates)
	}

	b.logger.Debug("selection model built",
		zap.Int("candidates", len(candidates)),
		zap.Int("variables", m.NumVars()))
	return &BuiltModel{Model: m, Vars: vars, Candidates: candidates}
}

// warnForcedConflicts surfaces slot overlaps between forced courses early.
// The model stays infeasible either way; the log line explains why.
func (b *ModelBuilder) warnForcedConflicts(candidates []models.CandidateCourse) {
	occupied := make(map[models.SlotKey]int64)
	for _, c := range candidates {
		if !c.Forced {
			continue
		}
		for _, slot := range c.OccupiedSlots() {
			if prev, ok := occupied[slot]; ok {
				b.logger.Warn("forced courses overlap, request cannot be satisfied",
					zap.Int64("courseId", c.ID),
					zap.Int64("conflictsWith", prev),
					zap.String("day", slot.Day.String()),
					zap.Int("period", slot.Period))
				continue
			}
			occupied[slot] = c.ID
		}
	}
}

func (b *ModelBuilder) addCreditConstraints(
	m *cpsolver.Model,
	vars []cpsolver.BoolVar,
	params models.ConstraintParameters,
	candidates []models.CandidateCourse,
) {
	total := make([]cpsolver.Term, 0, len(candidates))
	var major, elective []cpsolver.Term
	byGroup := make(map[string][]cpsolver.Term)
	for i, c := range candidates {
		term := cpsolver.Term{Var: vars[i], Coef: int64(c.Credits)}
		total = append(total, term)
		if c.Category.IsMajor() {
			major = append(major, term)
		} else {
			elective = append(elective, term)
		}
		if c.Category == models.CategoryGeneralEducation && c.GenEdGroup != "" {
			byGroup[c.GenEdGroup] = append(byGroup[c.GenEdGroup], term)
		}
	}

	m.AddLinear(total, int64(params.TargetTotalCredits), int64(params.TargetTotalCredits))
	m.AddLinear(major, int64(params.TargetMajorCredits), int64(params.TargetMajorCredits))
	m.AddLinear(elective, int64(params.TargetElectiveCredits), int64(params.TargetElectiveCredits))

	// Subcategory credits never exceed their remaining shortage; selecting
	// more would not count toward graduation.
	for group, terms := range byGroup {
		if shortage, ok := params.GenEdShortages[group]; ok {
			m.AddLinear(terms, cpsolver.NoLower, int64(shortage))
		}
	}
}

func (b *ModelBuilder) addConflictConstraints(
	m *cpsolver.Model,
	vars []cpsolver.BoolVar,
	candidates []models.CandidateCourse,
) {
	bySlot := make(map[models.SlotKey][]cpsolver.BoolVar)
	byName := make(map[string][]cpsolver.BoolVar)
	for i, c := range candidates {
		for _, slot := range c.OccupiedSlots() {
			bySlot[slot] = append(bySlot[slot], vars[i])
		}
		byName[c.Name] = append(byName[c.Name], vars[i])
	}
	for _, group := range bySlot {
		m.AddAtMostOne(group)
	}
	// One section per course name: parallel sections of the same course are
	// mutually exclusive even when their meeting times differ.
	for _, group := range byName {
		m.AddAtMostOne(group)
	}
}

// addWalkingConstraints excludes pairs of back-to-back meetings whose
// buildings are further apart than the student can walk in the break.
func (b *ModelBuilder) addWalkingConstraints(
	ctx context.Context,
	m *cpsolver.Model,
	vars []cpsolver.BoolVar,
	params models.ConstraintParameters,
	candidates []models.CandidateCourse,
) {
	if params.MaxWalkingMinutes == models.NoWalkingLimit {
		return
	}
	excluded := 0
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if b.tooFarApart(ctx, params.MaxWalkingMinutes, candidates[i], candidates[j]) {
				m.AddSumAtMost([]cpsolver.BoolVar{vars[i], vars[j]}, 1)
				excluded++
			}
		}
	}
	if excluded > 0 {
		b.logger.Debug("walking-distance exclusions added", zap.Int("pairs", excluded))
	}
}

func (b *ModelBuilder) tooFarApart(ctx context.Context, maxMinutes int, a, c models.CandidateCourse) bool {
	for _, blockA := range a.Blocks {
		for _, blockC := range c.Blocks {
			if blockA.Day != blockC.Day {
				continue
			}
			backToBack := blockA.EndPeriod()+1 == blockC.StartPeriod() ||
				blockC.EndPeriod()+1 == blockA.StartPeriod()
			if !backToBack {
				continue
			}
			if b.distances.WalkMinutes(ctx, blockA.Building, blockC.Building) > maxMinutes {
				return true
			}
		}
	}
	return false
}

func (b *ModelBuilder) addObjective(
	m *cpsolver.Model,
	vars []cpsolver.BoolVar,
	profile models.StudentProfile,
	params models.ConstraintParameters,
	candidates []models.CandidateCourse,
) {
	for i, c := range candidates {
		coef := int64(c.GraduationPriority)*graduationPriorityWeight +
			int64(c.PreferenceScore) + int64(c.RatingScore)
		switch {
		case c.Category == models.CategoryMajorRequired && c.TargetYear == profile.Year:
			coef += sameYearRequiredBonus
		case c.Category == models.CategoryMajorElective && c.TargetYear == profile.Year:
			coef += sameYearElectiveBonus
		}
		if c.Category == models.CategoryGeneralEducation && c.GenEdGroup != "" {
			if shortage, ok := params.GenEdShortages[c.GenEdGroup]; ok && c.Credits == shortage {
				coef += genEdExactFitBonus
			}
		}
		m.AddObjectiveTerm(vars[i], coef)
	}
}

// addCompactnessTerms penalizes free periods squeezed between classes and
// rewards back-to-back meetings. Per (day, period) cell it derives an
// occupancy variable plus before/after indicators, and a gap variable forced
// on exactly when the cell is empty but classes meet both earlier and later
// that day.
func (b *ModelBuilder) addCompactnessTerms(
	m *cpsolver.Model,
	vars []cpsolver.BoolVar,
	candidates []models.CandidateCourse,
) {
	bySlot := make(map[models.SlotKey][]cpsolver.BoolVar)
	days := make(map[models.Weekday]bool)
	maxPeriod := 0
	for i, c := range candidates {
		for _, slot := range c.OccupiedSlots() {
			bySlot[slot] = append(bySlot[slot], vars[i])
			days[slot.Day] = true
			if slot.Period > maxPeriod {
				maxPeriod = slot.Period
			}
		}
	}

	orderedDays := make([]models.Weekday, 0, len(days))
	for day := range days {
		orderedDays = append(orderedDays, day)
	}
	sort.Slice(orderedDays, func(i, j int) bool { return orderedDays[i] < orderedDays[j] })

	for _, day := range orderedDays {
		occ := make([]cpsolver.BoolVar, maxPeriod+1)
		for p := 1; p <= maxPeriod; p++ {
			occ[p] = m.NewBoolVar(fmt.Sprintf("occ_%s_%d", day, p))
			courses := bySlot[models.SlotKey{Day: day, Period: p}]
			occTerms := make([]cpsolver.Term, 0, len(courses)+1)
			occTerms = append(occTerms, cpsolver.Term{Var: occ[p], Coef: -1})
			for _, v := range courses {
				// occ >= x for every course in the cell.
				m.AddLinear([]cpsolver.Term{{Var: v, Coef: 1}, {Var: occ[p], Coef: -1}}, cpsolver.NoLower, 0)
				occTerms = append(occTerms, cpsolver.Term{Var: v, Coef: 1})
			}
			// occ <= sum(x): an empty cell cannot pretend to be occupied.
			m.AddLinear(occTerms, 0, cpsolver.NoUpper)
		}
		// Interior cells only; the first and last period of a day cannot be a
		// gap.
		for p := 2; p < maxPeriod; p++ {
			before := m.NewBoolVar(fmt.Sprintf("before_%s_%d", day, p))
			after := m.NewBoolVar(fmt.Sprintf("after_%s_%d", day, p))
			beforeTerms := []cpsolver.Term{{Var: before, Coef: -1}}
			for q := 1; q < p; q++ {
				m.AddLinear([]cpsolver.Term{{Var: occ[q], Coef: 1}, {Var: before, Coef: -1}}, cpsolver.NoLower, 0)
				beforeTerms = append(beforeTerms, cpsolver.Term{Var: occ[q], Coef: 1})
			}
			m.AddLinear(beforeTerms, 0, cpsolver.NoUpper)
			afterTerms := []cpsolver.Term{{Var: after, Coef: -1}}
			for q := p + 1; q <= maxPeriod; q++ {
				m.AddLinear([]cpsolver.Term{{Var: occ[q], Coef: 1}, {Var: after, Coef: -1}}, cpsolver.NoLower, 0)
				afterTerms = append(afterTerms, cpsolver.Term{Var: occ[q], Coef: 1})
			}
			m.AddLinear(afterTerms, 0, cpsolver.NoUpper)

			gap := m.NewBoolVar(fmt.Sprintf("gap_%s_%d", day, p))
			// gap - before - after + occ >= -1 forces gap on when the cell is
			// an enclosed hole.
			m.AddLinear([]cpsolver.Term{
				{Var: gap, Coef: 1},
				{Var: before, Coef: -1},
				{Var: after, Coef: -1},
				{Var: occ[p], Coef: 1},
			}, -1, cpsolver.NoUpper)
			m.AddObjectiveTerm(gap, -gapHourPenalty)
		}
	}

	// A flat bonus per selected pair meeting back to back on the same day, so
	// an adjacent section beats an equally gap-free one on another day.
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if !hasAdjacentBlocks(candidates[i], candidates[j]) {
				continue
			}
			adj := m.NewBoolVar(fmt.Sprintf("adj_%d_%d", i, j))
			m.AddProduct(adj, vars[i], vars[j])
			m.AddObjectiveTerm(adj, adjacencyBonus)
		}
	}
}

func hasAdjacentBlocks(a, c models.CandidateCourse) bool {
	for _, blockA := range a.Blocks {
		for _, blockC := range c.Blocks {
			if blockA.Day != blockC.Day {
				continue
			}
			if blockA.EndPeriod()+1 == blockC.StartPeriod() ||
				blockC.EndPeriod()+1 == blockA.StartPeriod() {
				return true
			}
		}
	}
	return false
}
