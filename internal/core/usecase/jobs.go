package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
)

// JobsUseCase handles asynchronous runs: the API schedules a run and a worker
// picks it up from the queue and executes it through the research pipeline.
type JobsUseCase struct {
	runs       ports.RunRepository
	queue      ports.JobQueue
	researcher ports.Researcher
	logger     *slog.Logger
	queueLag   func(lag time.Duration)
}

func NewJobsUseCase(runs ports.RunRepository, queue ports.JobQueue, researcher ports.Researcher, logger *slog.Logger) *JobsUseCase {
	return &JobsUseCase{runs: runs, queue: queue, researcher: researcher, logger: logger}
}

// OnQueueLag registers a callback that receives, per executed run, the time
// the run waited between scheduling and worker pickup.
func (uc *JobsUseCase) OnQueueLag(fn func(lag time.Duration)) {
	uc.queueLag = fn
}

// Schedule persists a pending run and publishes it for a worker. The run stays
// pending if publishing fails, so a requeue can recover it later.
func (uc *JobsUseCase) Schedule(ctx context.Context, kind domain.ResearchKind, query string) (*domain.ResearchRun, error) {
	const op = "usecase.Schedule"

	query = strings.TrimSpace(query)
	if query == "" || len(query) > maxQueryLength {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("query must be between 1 and %d characters", maxQueryLength))
	}
	if !kind.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("unknown research kind %q", kind))
	}

	now := time.Now().UTC()
	run := &domain.ResearchRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Query:     query,
		Status:    domain.RunPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.runs.Create(ctx, run); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}
	if err := uc.queue.PublishRunRequested(ctx, run.ID); err != nil {
		uc.logger.Error("run_publish_failed", "run_id", run.ID, "error", err)
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}
	uc.logger.Info("run_scheduled", "run_id", run.ID, "kind", kind)
	return run, nil
}

// ExecuteRun is the worker side of Schedule.
func (uc *JobsUseCase) ExecuteRun(ctx context.Context, runID string) error {
	const op = "usecase.ExecuteRun"

	run, err := uc.runs.GetByID(ctx, runID)
	if err != nil {
		return domain.WrapError(domain.ErrRunNotFound, op, err)
	}
	if run.Status == domain.RunCompleted {
		uc.logger.Info("run_already_completed", "run_id", runID)
		return nil
	}
	if uc.queueLag != nil {
		uc.queueLag(time.Since(run.CreatedAt))
	}

	if err := uc.runs.SaveResult(ctx, runID, domain.RunRunning, nil, ""); err != nil {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}

	aggregate, err := uc.researcher.Research(ctx, run.Kind, run.Query)
	if err != nil {
		if saveErr := uc.runs.SaveResult(ctx, runID, domain.RunFailed, nil, err.Error()); saveErr != nil {
			uc.logger.Error("run_failure_save_failed", "run_id", runID, "error", saveErr)
		}
		return domain.WrapError(domain.ErrTemporary, op, err)
	}

	if err := uc.runs.SaveResult(ctx, runID, domain.RunCompleted, aggregate, ""); err != nil {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	uc.logger.Info("run_completed", "run_id", runID, "total_found", aggregate.TotalFound)
	return nil
}
