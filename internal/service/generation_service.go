package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/cpsolver"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/models"
	appErrors "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/errors"
)

// GenerationStatus classifies the outcome of one generation request.
// Infeasible requests and exhausted budgets are NO_SOLUTION, never errors.
type GenerationStatus string

const (
	GenerationSuccess    GenerationStatus = "SUCCESS"
	GenerationNoSolution GenerationStatus = "NO_SOLUTION"
	GenerationError      GenerationStatus = "ERROR"
	// GenerationPending marks an accepted asynchronous request whose run has
	// not finished yet.
	GenerationPending GenerationStatus = "PENDING"
)

// GenerationRequest is the fully parsed input of one generation run.
type GenerationRequest struct {
	TermID  string
	Profile models.StudentProfile
	Params  models.ConstraintParameters
	Filter  models.FilterCriteria
	Score   models.ScoreCriteria
	Preset  Preset
}

// GenerationResult is the stored and returned outcome of one run.
type GenerationResult struct {
	ResultID       string                     `json:"resultId"`
	Status         GenerationStatus           `json:"status"`
	Message        string                     `json:"message,omitempty"`
	Timetables     []models.TimetableSolution `json:"timetables"`
	CandidateCount int                        `json:"candidateCount"`
	SolutionCount  int                        `json:"solutionCount"`
	ElapsedMS      int64                      `json:"elapsedMs"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
}

type courseCatalog interface {
	ListByTerm(ctx context.Context, termID string) ([]models.CandidateCourse, error)
}

type ratingSource interface {
	Snapshot(ctx context.Context) (map[models.RatingKey]float64, error)
}

type resultCache interface {
	Get(ctx context.Context, resultID string, dest interface{}) error
	Set(ctx context.Context, resultID string, value interface{}, ttl time.Duration)
}

type generationObserver interface {
	ObserveGeneration(status string, elapsed time.Duration, solutions int)
	RecordCacheOperation(hit bool)
}

// GenerationConfig governs generator behaviour.
type GenerationConfig struct {
	ReturnCount   int
	ResultTTL     time.Duration
	DefaultPreset Preset
}

// GenerationService orchestrates the full pipeline: catalog load, filtering,
// scoring, model construction, two-phase search and final ranking.
type GenerationService struct {
	catalog courseCatalog
	ratings ratingSource
	filter  *CandidateFilter
	scorer  *CourseScorer
	builder *ModelBuilder
	finder  *SolutionFinder
	ranker  *Ranker
	cache   resultCache
	metrics generationObserver
	logger  *zap.Logger
	store   *resultStore
	cfg     GenerationConfig
}

// NewGenerationService wires the pipeline dependencies.
func NewGenerationService(
	catalog courseCatalog,
	ratings ratingSource,
	filter *CandidateFilter,
	scorer *CourseScorer,
	builder *ModelBuilder,
	finder *SolutionFinder,
	cache resultCache,
	metrics generationObserver,
	logger *zap.Logger,
	cfg GenerationConfig,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReturnCount <= 0 {
		cfg.ReturnCount = DefaultReturnCount
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = PresetBasic
	}
	return &GenerationService{
		catalog: catalog,
		ratings: ratings,
		filter:  filter,
		scorer:  scorer,
		builder: builder,
		finder:  finder,
		ranker:  NewRanker(scorer),
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		store:   newResultStore(cfg.ResultTTL),
		cfg:     cfg,
	}
}

// Generate runs one request end to end. Every outcome, including internal
// failures, is reported through the result status; the method never returns
// an error value.
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) *GenerationResult {
	return s.GenerateWithID(ctx, uuid.NewString(), req)
}

// MarkPending stores a placeholder so an asynchronous request's id resolves
// before its run completes.
func (s *GenerationService) MarkPending(ctx context.Context, resultID string) {
	placeholder := GenerationResult{
		ResultID:    resultID,
		Status:      GenerationPending,
		Timetables:  []models.TimetableSolution{},
		GeneratedAt: time.Now(),
	}
	s.store.Save(placeholder)
	if s.cache != nil {
		s.cache.Set(ctx, resultID, placeholder, s.cfg.ResultTTL)
	}
}

// GenerateWithID is Generate with a caller-chosen result id, used by the
// asynchronous queue to hand the id out before the run starts.
func (s *GenerationService) GenerateWithID(ctx context.Context, resultID string, req GenerationRequest) *GenerationResult {
	start := time.Now()
	result := &GenerationResult{
		ResultID:    resultID,
		Timetables:  []models.TimetableSolution{},
		GeneratedAt: start,
	}
	defer func() {
		result.ElapsedMS = time.Since(start).Milliseconds()
		s.store.Save(*result)
		if s.cache != nil {
			s.cache.Set(ctx, result.ResultID, result, s.cfg.ResultTTL)
		}
		if s.metrics != nil {
			s.metrics.ObserveGeneration(string(result.Status), time.Since(start), len(result.Timetables))
		}
		s.logger.Info("generation finished",
			zap.String("resultId", result.ResultID),
			zap.String("status", string(result.Status)),
			zap.Int("timetables", len(result.Timetables)),
			zap.Int64("elapsedMs", result.ElapsedMS))
	}()

	if err := req.Params.Validate(); err != nil {
		result.Status = GenerationError
		result.Message = err.Error()
		return result
	}
	preset := req.Preset
	if preset == "" {
		preset = s.cfg.DefaultPreset
	}

	pool, err := s.catalog.ListByTerm(ctx, req.TermID)
	if err != nil {
		s.logger.Error("failed to load course catalog",
			zap.String("termId", req.TermID), zap.Error(err))
		result.Status = GenerationError
		result.Message = appErrors.ErrGenerationFailed.Message
		return result
	}

	if len(req.Score.Ratings) == 0 && s.ratings != nil {
		ratings, err := s.ratings.Snapshot(ctx)
		if err != nil {
			// Ratings only shape the objective; generation proceeds without.
			s.logger.Warn("lecture ratings unavailable", zap.Error(err))
		} else {
			req.Score.Ratings = ratings
		}
	}

	candidates := s.filter.FilterCandidates(ctx, req.Profile, req.Filter, pool)
	result.CandidateCount = len(candidates)
	if len(candidates) == 0 {
		result.Status = GenerationNoSolution
		result.Message = "no eligible courses after filtering"
		return result
	}

	candidates = s.scorer.ScoreCandidates(candidates, req.Score, req.Params)
	candidates = s.filter.DownweightLowerYearElectives(req.Profile, candidates)
	candidates = s.filter.RemoveExcludedNames(candidates, req.Filter.ExcludedNames)

	built := s.builder.Build(ctx, req.Profile, req.Params, candidates)
	solutions, status := s.finder.FindSolutions(ctx, built, OptionsForPreset(preset))
	result.SolutionCount = len(solutions)
	if len(solutions) == 0 {
		result.Status = GenerationNoSolution
		result.Message = noSolutionMessage(status)
		return result
	}

	result.Timetables = s.ranker.Rank(solutions, req.Score, s.cfg.ReturnCount)
	result.Status = GenerationSuccess
	return result
}

// GetResult returns a previously generated result by id, consulting the
// in-process store first and the shared cache second.
func (s *GenerationService) GetResult(ctx context.Context, resultID string) (*GenerationResult, error) {
	if result, ok := s.store.Get(resultID); ok {
		return &result, nil
	}
	if s.cache != nil {
		var cached GenerationResult
		err := s.cache.Get(ctx, resultID, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil)
		}
		if err == nil {
			s.store.Save(cached)
			return &cached, nil
		}
		if err != appErrors.ErrCacheMiss {
			s.logger.Warn("result cache lookup failed",
				zap.String("resultId", resultID), zap.Error(err))
		}
	}
	return nil, appErrors.Clone(appErrors.ErrResultNotFound, "")
}

func noSolutionMessage(status cpsolver.Status) string {
	switch status {
	case cpsolver.StatusInfeasible:
		return "no timetable satisfies the credit and schedule constraints"
	default:
		return "search budget exhausted before a timetable was found"
	}
}

// resultStore keeps recent generation results in memory so follow-up reads
// and exports work without the shared cache. Entries expire after the TTL.
type resultStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedResult
}

type storedResult struct {
	result  GenerationResult
	savedAt time.Time
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		items: make(map[string]storedResult),
	}
}

func (s *resultStore) Save(result GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[result.ResultID] = storedResult{result: result, savedAt: time.Now()}
}

func (s *resultStore) Get(id string) (GenerationResult, bool) {
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return GenerationResult{}, false
	}
	if time.Since(entry.savedAt) > s.ttl {
		s.Delete(id)
		return GenerationResult{}, false
	}
	return entry.result, true
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
