package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/service"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/export"
)

type generateFlags struct {
	coursesPath string
	outPath     string
	termID      string
	preset      string

	departmentID int64
	year         int
	completed    []string
	shortages    map[string]int

	totalCredits    int
	majorCredits    int
	electiveCredits int
	genEdShortages  map[string]int

	freeDays    []string
	forcedIDs   []int64
	excludedIDs []int64
	maxWalk     int
	walkMinutes int

	timeOfDay            string
	preferredInstructors []string
	avoidedInstructors   []string
	preferredKeywords    []string
	avoidedKeywords      []string

	count   int
	verbose bool
}

// allDepartments treats every department as related. The offline runner has
// no department graph to consult.
type allDepartments struct{}

func (allDepartments) AreRelated(_ context.Context, _, _ int64) bool { return true }

// fixedWalker assumes a uniform walking time between distinct buildings.
type fixedWalker struct{ minutes int }

func (w fixedWalker) WalkMinutes(_ context.Context, from, to string) int {
	if from == to || from == "" || to == "" {
		return 0
	}
	return w.minutes
}

func main() {
	root := &cobra.Command{
		Use:           "timetable-cli",
		Short:         "Offline timetable generation against a course catalog CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newGenerateCommand() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ranked timetables from a catalog CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.coursesPath, "courses", "", "path to the course catalog CSV (required)")
	cmd.Flags().StringVar(&flags.outPath, "out", "", "write ranked timetables to this CSV file instead of stdout")
	cmd.Flags().StringVar(&flags.termID, "term", "offline", "term identifier recorded with the run")
	cmd.Flags().StringVar(&flags.preset, "preset", "BASIC", "search preset: BASIC, ADVANCED, EXPERT or ULTRA")

	cmd.Flags().Int64Var(&flags.departmentID, "department", 0, "student department id")
	cmd.Flags().IntVar(&flags.year, "year", 1, "student year")
	cmd.Flags().StringSliceVar(&flags.completed, "completed", nil, "course names already passed")
	cmd.Flags().StringToIntVar(&flags.shortages, "shortage", nil, "remaining credits per category, e.g. MAJOR_REQUIRED=9")

	cmd.Flags().IntVar(&flags.totalCredits, "total", 18, "target total credits")
	cmd.Flags().IntVar(&flags.majorCredits, "major", 9, "target major credits")
	cmd.Flags().IntVar(&flags.electiveCredits, "elective", 9, "target elective credits")
	cmd.Flags().StringToIntVar(&flags.genEdShortages, "gen-ed-shortage", nil, "credit ceiling per general-education subcategory")

	cmd.Flags().StringSliceVar(&flags.freeDays, "free-days", nil, "days that must stay class-free (English or Korean names)")
	cmd.Flags().Int64SliceVar(&flags.forcedIDs, "force", nil, "course ids that must be included")
	cmd.Flags().Int64SliceVar(&flags.excludedIDs, "exclude", nil, "course ids to drop")
	cmd.Flags().IntVar(&flags.maxWalk, "max-walk", 0, "max walking minutes between back-to-back classes, 0 for no limit")
	cmd.Flags().IntVar(&flags.walkMinutes, "walk-minutes", 10, "assumed walking minutes between distinct buildings")

	cmd.Flags().StringVar(&flags.timeOfDay, "time-of-day", "", "MORNING or AFTERNOON")
	cmd.Flags().StringSliceVar(&flags.preferredInstructors, "prefer-instructor", nil, "instructors to prefer")
	cmd.Flags().StringSliceVar(&flags.avoidedInstructors, "avoid-instructor", nil, "instructors to avoid")
	cmd.Flags().StringSliceVar(&flags.preferredKeywords, "prefer-keyword", nil, "course name keywords to prefer")
	cmd.Flags().StringSliceVar(&flags.avoidedKeywords, "avoid-keyword", nil, "course name keywords to avoid")

	cmd.Flags().IntVar(&flags.count, "count", 10, "number of timetables to return")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cobra.CheckErr(cmd.MarkFlagRequired("courses"))
	return cmd
}

func runGenerate(ctx context.Context, flags *generateFlags) error {
	logger := zap.NewNop()
	if flags.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck
	}

	catalog, err := loadCatalog(flags.coursesPath)
	if err != nil {
		return err
	}

	filter := service.NewCandidateFilter(allDepartments{}, service.FilterConfig{}, logger)
	scorer := service.NewCourseScorer(logger)
	builder := service.NewModelBuilder(fixedWalker{minutes: flags.walkMinutes}, logger)
	finder := service.NewSolutionFinder(logger)

	generator := service.NewGenerationService(
		catalog, catalog, filter, scorer, builder, finder,
		nil, nil, logger,
		service.GenerationConfig{
			ReturnCount:   flags.count,
			DefaultPreset: service.Preset(flags.preset),
		},
	)

	req, err := buildRequest(flags)
	if err != nil {
		return err
	}

	result := generator.Generate(ctx, req)
	switch result.Status {
	case service.GenerationSuccess:
	case service.GenerationNoSolution:
		return fmt.Errorf("no solution: %s", result.Message)
	default:
		return fmt.Errorf("generation failed: %s", result.Message)
	}

	payload, err := export.NewCSVExporter().Render(result.Timetables)
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	if flags.outPath == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(flags.outPath, payload, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Printf("wrote %d timetables to %s (%d candidates, %dms)\n",
		len(result.Timetables), flags.outPath, result.CandidateCount, result.ElapsedMS)
	return nil
}

func buildRequest(flags *generateFlags) (service.GenerationRequest, error) {
	freeDays := make([]models.Weekday, 0, len(flags.freeDays))
	for _, raw := range flags.freeDays {
		day, ok := models.ParseWeekday(raw)
		if !ok {
			return service.GenerationRequest{}, fmt.Errorf("unknown day name %q", raw)
		}
		freeDays = append(freeDays, day)
	}

	walking := models.NoWalkingLimit
	if flags.maxWalk > 0 {
		walking = flags.maxWalk
	}

	priority := make(map[string]int, len(flags.shortages))
	for key, shortage := range flags.shortages {
		if shortage <= 0 {
			continue
		}
		weight := shortage * 10
		if weight > 100 {
			weight = 100
		}
		priority[key] = weight
	}

	return service.GenerationRequest{
		TermID: flags.termID,
		Profile: models.StudentProfile{
			DepartmentID:       flags.departmentID,
			Year:               flags.year,
			CompletedCourses:   flags.completed,
			ShortageByCategory: flags.shortages,
		},
		Params: models.ConstraintParameters{
			TargetTotalCredits:    flags.totalCredits,
			TargetMajorCredits:    flags.majorCredits,
			TargetElectiveCredits: flags.electiveCredits,
			GenEdShortages:        flags.genEdShortages,
			MaxWalkingMinutes:     walking,
		},
		Filter: models.FilterCriteria{
			ExcludedIDs: flags.excludedIDs,
			FreeDays:    freeDays,
			ForcedIDs:   flags.forcedIDs,
		},
		Score: models.ScoreCriteria{
			PreferredInstructors: flags.preferredInstructors,
			AvoidedInstructors:   flags.avoidedInstructors,
			PreferredKeywords:    flags.preferredKeywords,
			AvoidedKeywords:      flags.avoidedKeywords,
			PreferMorning:        flags.timeOfDay == "MORNING",
			PreferAfternoon:      flags.timeOfDay == "AFTERNOON",
			PriorityMap:          priority,
		},
		Preset: service.Preset(flags.preset),
	}, nil
}
