package ports

import (
	"context"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

// StrategyGenerator asks the external text-generation backend for search
// strategies. Implementations may be absent at runtime; the strategy provider
// falls back to deterministic templates on any error.
type StrategyGenerator interface {
	GenerateStrategies(ctx context.Context, kind domain.ResearchKind, criteria domain.Criteria, rawQuery string) ([]domain.Strategy, error)
}

// SearchClient issues one query against the web-search backend. The client is
// pooled and safe for concurrent reuse across runs.
type SearchClient interface {
	Search(ctx context.Context, query string, pageSize int) ([]domain.SearchHit, error)
}

// EntityExtractor is one variant of the extraction strategy: a skip
// predicate, the name/attribute rule cascade with confidence scoring, and the
// deduplication policy for that variant. Extract returns nil when the result
// fails any gate.
type EntityExtractor interface {
	Kind() domain.ResearchKind
	// KeepResult filters raw results at the executor stage, before
	// extraction ever sees them.
	KeepResult(url string) bool
	Extract(result domain.RawResult, criteria domain.Criteria) *domain.Entity
	// CanonicalKey is the deduplication identity; an empty key drops the
	// entity entirely.
	CanonicalKey(e *domain.Entity) string
	// MaxResults bounds the ranked output.
	MaxResults() int
}

// RunRepository persists research runs and their aggregates.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ResearchRun) error
	GetByID(ctx context.Context, id string) (*domain.ResearchRun, error)
	List(ctx context.Context, limit int) ([]*domain.ResearchRun, error)
	SaveResult(ctx context.Context, id string, status domain.RunStatus, result *domain.ResultAggregate, errMessage string) error
}

// JobQueue publishes/consumes scheduled run IDs.
type JobQueue interface {
	PublishRunRequested(ctx context.Context, runID string) error
	SubscribeRunRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// TableExporter renders a result table into a spreadsheet document.
type TableExporter interface {
	Export(table *domain.Table) ([]byte, error)
}
