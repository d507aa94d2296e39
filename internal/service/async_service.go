package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/jobs"
)

// AsyncConfig tunes the background generation queue.
type AsyncConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// AsyncGenerator accepts generation requests, hands back a result id
// immediately and runs the search on a worker queue. Callers poll the result
// endpoint; until the run finishes it reports PENDING.
type AsyncGenerator struct {
	svc     *GenerationService
	queue   *jobs.Queue
	timeout time.Duration
	logger  *zap.Logger
}

// NewAsyncGenerator wires the queue around the generation service.
func NewAsyncGenerator(svc *GenerationService, cfg AsyncConfig, logger *zap.Logger) *AsyncGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	a := &AsyncGenerator{
		svc:     svc,
		timeout: cfg.JobTimeout,
		logger:  logger,
	}
	a.queue = jobs.NewQueue("timetable-generation", a.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueSize,
		// A generation run is deterministic given its inputs; retrying a
		// failed run would only repeat the failure.
		MaxAttempts: 1,
		Logger:      logger,
	})
	return a
}

// Start launches the queue workers.
func (a *AsyncGenerator) Start(ctx context.Context) { a.queue.Start(ctx) }

// Stop drains the workers.
func (a *AsyncGenerator) Stop() { a.queue.Stop() }

// Submit enqueues a request and returns the result id to poll.
func (a *AsyncGenerator) Submit(ctx context.Context, req GenerationRequest) (string, error) {
	resultID := uuid.NewString()
	a.svc.MarkPending(ctx, resultID)
	err := a.queue.Enqueue(jobs.Job{
		ID:      resultID,
		Type:    "generate",
		Payload: req,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue generation: %w", err)
	}
	return resultID, nil
}

func (a *AsyncGenerator) handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(GenerationRequest)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	result := a.svc.GenerateWithID(runCtx, job.ID, req)
	a.logger.Debug("async generation finished",
		zap.String("resultId", job.ID),
		zap.String("status", string(result.Status)))
	return nil
}
