package ports

import (
	"context"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

// Researcher is the inbound contract for a synchronous research run. It only
// fails on invalid input; every internal failure degrades into the aggregate.
type Researcher interface {
	Research(ctx context.Context, kind domain.ResearchKind, query string) (*domain.ResultAggregate, error)
}

// RunScheduler enqueues asynchronous research jobs.
type RunScheduler interface {
	Schedule(ctx context.Context, kind domain.ResearchKind, query string) (*domain.ResearchRun, error)
}

// RunExecutor is the worker-side contract: execute a previously scheduled run
// and store its outcome.
type RunExecutor interface {
	ExecuteRun(ctx context.Context, runID string) error
}
