package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/cpsolver"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
)

// Preset names a search-effort profile. Higher presets enumerate more
// timetables with longer budgets and accept a lower quality floor.
type Preset string

const (
	PresetBasic    Preset = "BASIC"
	PresetAdvanced Preset = "ADVANCED"
	PresetExpert   Preset = "EXPERT"
	PresetUltra    Preset = "ULTRA"
)

// FinderOptions control the two-phase search.
type FinderOptions struct {
	MaxSolutions       int
	Phase1Timeout      time.Duration
	Phase2SolveTimeout time.Duration
	Workers            int
	// QualityFloor is the fraction of the phase-one optimum every enumerated
	// solution must reach, in (0, 1].
	QualityFloor float64
	// StrictDiversity applies the swap-out cut even when only one or two
	// non-forced courses are selected, guaranteeing every later solution
	// drops at least one of them. The default falls back to forbidding the
	// exact combination below three swappable courses, which prunes less on
	// small candidate pools.
	StrictDiversity bool
}

// OptionsForPreset maps a preset to its tuned budgets. Unknown presets fall
// back to BASIC.
func OptionsForPreset(p Preset) FinderOptions {
	switch p {
	case PresetAdvanced:
		return FinderOptions{MaxSolutions: 50, Phase1Timeout: 10 * time.Second,
			Phase2SolveTimeout: 2 * time.Second, Workers: 6, QualityFloor: 0.85}
	case PresetExpert:
		return FinderOptions{MaxSolutions: 100, Phase1Timeout: 20 * time.Second,
			Phase2SolveTimeout: 3 * time.Second, Workers: 8, QualityFloor: 0.80}
	case PresetUltra:
		return FinderOptions{MaxSolutions: 300, Phase1Timeout: 40 * time.Second,
			Phase2SolveTimeout: 5 * time.Second, Workers: 12, QualityFloor: 0.75}
	default:
		return FinderOptions{MaxSolutions: 20, Phase1Timeout: 5 * time.Second,
			Phase2SolveTimeout: time.Second, Workers: 4, QualityFloor: 0.90}
	}
}

// SolutionFinder runs the two-phase search: phase one finds the best
// timetable, phase two enumerates distinct alternatives above the quality
// floor until the budget or the solution count runs out.
type SolutionFinder struct {
	logger *zap.Logger
}

// NewSolutionFinder constructs the finder.
func NewSolutionFinder(logger *zap.Logger) *SolutionFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolutionFinder{logger: logger}
}

// FindSolutions searches the built model. An infeasible model or an exhausted
// budget returns normally with whatever was found; the status describes the
// phase-one outcome.
func (f *SolutionFinder) FindSolutions(
	ctx context.Context,
	bm *BuiltModel,
	opts FinderOptions,
) ([]models.TimetableSolution, cpsolver.Status) {
	first := cpsolver.Solve(ctx, bm.Model, cpsolver.Options{
		Timeout: opts.Phase1Timeout,
		Workers: opts.Workers,
	})
	if !first.Status.HasSolution() {
		f.logger.Info("phase one found no timetable",
			zap.String("status", first.Status.String()),
			zap.Int64("nodes", first.Nodes))
		return nil, first.Status
	}

	optimum := first.Objective
	floor := qualityFloor(optimum, opts.QualityFloor)
	bm.Model.AddObjectiveAtLeast(floor)
	f.logger.Info("phase one complete",
		zap.Int64("optimum", optimum),
		zap.Int64("qualityFloor", floor),
		zap.String("status", first.Status.String()))

	solutions := []models.TimetableSolution{f.extract(bm, first, optimum)}
	f.addDiversityCut(bm, first.Values, opts.StrictDiversity)

	for len(solutions) < opts.MaxSolutions {
		if ctx.Err() != nil {
			break
		}
		res := cpsolver.Solve(ctx, bm.Model, cpsolver.Options{
			Timeout: opts.Phase2SolveTimeout,
			Workers: opts.Workers,
		})
		if !res.Status.HasSolution() {
			break
		}
		solutions = append(solutions, f.extract(bm, res, optimum))
		f.addDiversityCut(bm, res.Values, opts.StrictDiversity)
	}

	f.logger.Info("phase two complete", zap.Int("solutions", len(solutions)))
	return solutions, first.Status
}

// qualityFloor scales the optimum by the floor fraction, rounding away from
// the optimum so the optimum itself always passes.
func qualityFloor(optimum int64, fraction float64) int64 {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	if optimum >= 0 {
		return int64(math.Floor(float64(optimum) * fraction))
	}
	return int64(math.Floor(float64(optimum) / fraction))
}

func (f *SolutionFinder) extract(bm *BuiltModel, res cpsolver.Result, optimum int64) models.TimetableSolution {
	pct := 100.0
	if optimum != 0 {
		pct = 100 * float64(res.Objective) / float64(optimum)
	}
	return models.TimetableSolution{
		Courses:        bm.SelectedCourses(res.Values),
		ObjectiveValue: res.Objective,
		OptimalityPct:  pct,
	}
}

// addDiversityCut excludes the found combination from later solves. The
// swap-out rule requires at least one non-forced course to be dropped, which
// also rules out supersets; below three swappable courses the default falls
// back to forbidding only the exact combination, while strict mode keeps the
// swap-out rule down to a single non-forced course.
func (f *SolutionFinder) addDiversityCut(bm *BuiltModel, values []bool, strict bool) {
	var selected, unselected, nonForced []cpsolver.BoolVar
	for i, v := range bm.Vars {
		if values[v] {
			selected = append(selected, v)
			if !bm.Candidates[i].Forced {
				nonForced = append(nonForced, v)
			}
		} else {
			unselected = append(unselected, v)
		}
	}
	if len(nonForced) >= 3 || (strict && len(nonForced) >= 1) {
		bm.Model.AddSumAtMost(nonForced, int64(len(nonForced)-1))
		return
	}
	bm.Model.ForbidAssignment(selected, unselected)
}
