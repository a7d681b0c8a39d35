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

const (
	maxQueryLength = 1000

	highConfidence = 70
)

// ResearchConfig carries the per-kind pacing knobs of the pipeline.
type ResearchConfig struct {
	CompanyPageSize int
	PeoplePageSize  int
	CompanyInterval time.Duration
	PeopleInterval  time.Duration
}

// ResearchUseCase orchestrates a run end to end: parse criteria, generate
// strategies, execute searches, extract and rank entities. A run degrades
// instead of failing: strategy and extraction errors become warning events and
// an unexpected panic yields an empty aggregate with an error event.
type ResearchUseCase struct {
	provider   *StrategyProvider
	search     ports.SearchClient
	parser     *CriteriaParser
	extractors map[domain.ResearchKind]ports.EntityExtractor
	runs       ports.RunRepository
	cfg        ResearchConfig
	logger     *slog.Logger
}

// NewResearchUseCase wires the pipeline. The run repository is optional; when
// nil, synchronous runs are not recorded.
func NewResearchUseCase(
	provider *StrategyProvider,
	search ports.SearchClient,
	parser *CriteriaParser,
	extractors []ports.EntityExtractor,
	runs ports.RunRepository,
	cfg ResearchConfig,
	logger *slog.Logger,
) *ResearchUseCase {
	byKind := make(map[domain.ResearchKind]ports.EntityExtractor, len(extractors))
	for _, ex := range extractors {
		byKind[ex.Kind()] = ex
	}
	return &ResearchUseCase{
		provider:   provider,
		search:     search,
		parser:     parser,
		extractors: byKind,
		runs:       runs,
		cfg:        cfg,
		logger:     logger,
	}
}

func (uc *ResearchUseCase) Research(ctx context.Context, kind domain.ResearchKind, query string) (*domain.ResultAggregate, error) {
	const op = "usecase.Research"

	query = strings.TrimSpace(query)
	if query == "" || len(query) > maxQueryLength {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("query must be between 1 and %d characters", maxQueryLength))
	}
	if !kind.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("unknown research kind %q", kind))
	}
	extractor, ok := uc.extractors[kind]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("no extractor registered for kind %q", kind))
	}

	start := time.Now()
	events := NewEventLog(uc.logger)
	aggregate := uc.run(ctx, kind, query, extractor, events, start)
	uc.recordRun(ctx, kind, query, aggregate)
	return aggregate, nil
}

func (uc *ResearchUseCase) run(
	ctx context.Context,
	kind domain.ResearchKind,
	query string,
	extractor ports.EntityExtractor,
	events *EventLog,
	start time.Time,
) (aggregate *domain.ResultAggregate) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("research_run_panicked", "kind", kind, "panic", r)
			events.Add(fmt.Sprintf("Search failed: %v", r), domain.EventError)
			aggregate = &domain.ResultAggregate{
				Kind:             kind,
				Entities:         []*domain.Entity{},
				Summary:          "Search failed due to an internal error",
				Reasoning:        fmt.Sprintf("Run aborted: %v", r),
				ExecutionSeconds: time.Since(start).Seconds(),
				Events:           events.Events(),
			}
		}
	}()

	events.Add("Analyzing search requirements", domain.EventAnalyzing)
	criteria := uc.parser.Parse(kind, query)

	events.Add("Generating search strategies", domain.EventAnalyzing)
	strategies := uc.provider.Generate(ctx, kind, criteria, query)
	events.Add(fmt.Sprintf("Generated %d search strategies", len(strategies)), domain.EventSuccess)

	pageSize, interval := uc.cfg.CompanyPageSize, uc.cfg.CompanyInterval
	if kind == domain.KindPeople {
		pageSize, interval = uc.cfg.PeoplePageSize, uc.cfg.PeopleInterval
	}
	executor := newStrategyExecutor(uc.search, interval, pageSize, extractor.KeepResult, uc.logger)

	var results []domain.RawResult
	for _, strategy := range strategies {
		if ctx.Err() != nil {
			events.Add("Search interrupted before completion", domain.EventWarning)
			break
		}
		events.Add("Executing: "+strategy.Name, domain.EventSearching)
		found, err := executor.execute(ctx, strategy)
		if err != nil {
			events.Add(fmt.Sprintf("Strategy %q failed: %v", strategy.Name, err), domain.EventWarning)
			continue
		}
		if len(found) > 0 {
			events.Add(fmt.Sprintf("Found %d pages from this strategy", len(found)), domain.EventInfo)
		}
		results = append(results, found...)
	}

	events.Add(fmt.Sprintf("Analyzing %d search results", len(results)), domain.EventAnalyzing)
	candidates := make([]*domain.Entity, 0, len(results))
	for _, result := range results {
		if entity := uc.extractOne(extractor, result, criteria); entity != nil {
			candidates = append(candidates, entity)
		}
	}

	entities := finalizeEntities(candidates, extractor)
	matched := 0
	for _, e := range entities {
		if e.Confidence >= highConfidence {
			matched++
		}
	}

	if len(entities) > 0 {
		events.Add(fmt.Sprintf("Research complete: %d results, %d high confidence", len(entities), matched), domain.EventSuccess)
	} else {
		events.Add("No matching results found, try broadening the criteria", domain.EventWarning)
	}

	elapsed := time.Since(start).Seconds()
	return &domain.ResultAggregate{
		Kind:            kind,
		Entities:        entities,
		Criteria:        criteria,
		TotalFound:      len(entities),
		CriteriaMatched: matched,
		Summary:         fmt.Sprintf("Found %d results using %d search strategies", len(entities), len(strategies)),
		Reasoning: fmt.Sprintf("Executed %d search strategies and analyzed %d results in %.1fs",
			len(strategies), len(results), elapsed),
		ExecutionSeconds: elapsed,
		Events:           events.Events(),
		Table:            buildTable(kind, entities),
	}
}

// extractOne isolates a single extraction so one malformed result cannot take
// down the whole run.
func (uc *ResearchUseCase) extractOne(extractor ports.EntityExtractor, result domain.RawResult, criteria domain.Criteria) (entity *domain.Entity) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Warn("extraction_panicked", "url", result.URL, "panic", r)
			entity = nil
		}
	}()
	return extractor.Extract(result, criteria)
}

func (uc *ResearchUseCase) recordRun(ctx context.Context, kind domain.ResearchKind, query string, aggregate *domain.ResultAggregate) {
	if uc.runs == nil {
		return
	}
	now := time.Now().UTC()
	run := &domain.ResearchRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Query:     query,
		Status:    domain.RunCompleted,
		Result:    aggregate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.runs.Create(ctx, run); err != nil {
		uc.logger.Warn("run_record_failed", "run_id", run.ID, "error", err)
	}
}
