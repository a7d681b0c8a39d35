package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
)

// strategyExecutor runs search strategies one at a time, pacing calls with a
// per-run limiter so bursts of strategies do not hammer the search provider.
type strategyExecutor struct {
	search   ports.SearchClient
	limiter  *rate.Limiter
	pageSize int
	keep     func(url string) bool
	logger   *slog.Logger
}

func newStrategyExecutor(search ports.SearchClient, interval time.Duration, pageSize int, keep func(url string) bool, logger *slog.Logger) *strategyExecutor {
	return &strategyExecutor{
		search:   search,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		pageSize: pageSize,
		keep:     keep,
		logger:   logger,
	}
}

// execute returns the kept results for one strategy. A failed search is not
// fatal to the run; the caller records a warning and moves on.
func (x *strategyExecutor) execute(ctx context.Context, strategy domain.Strategy) ([]domain.RawResult, error) {
	if err := x.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	hits, err := x.search.Search(ctx, strategy.Query, x.pageSize)
	if err != nil {
		x.logger.Warn("search_strategy_failed", "strategy", strategy.Name, "error", err)
		return nil, err
	}
	results := make([]domain.RawResult, 0, len(hits))
	for _, hit := range hits {
		if !x.keep(hit.URL) {
			continue
		}
		results = append(results, domain.RawResult{
			SearchHit:         hit,
			StrategyName:      strategy.Name,
			StrategyReasoning: strategy.Reasoning,
			TargetHint:        strategy.TargetHint,
			ExpectationHint:   strategy.ExpectationHint,
		})
	}
	return results, nil
}
