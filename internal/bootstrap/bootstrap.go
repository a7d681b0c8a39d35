package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/config"
	"github.com/kirillkom/lead-research-agent/internal/core/lookup"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
	"github.com/kirillkom/lead-research-agent/internal/core/usecase"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/extraction"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/llm/openaichat"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/queue/nats"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/repository/memory"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/resilience"
	"github.com/kirillkom/lead-research-agent/internal/infrastructure/search/serper"
	"github.com/kirillkom/lead-research-agent/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.JobQueue
	Runs     ports.RunRepository
	Exporter ports.TableExporter

	ResearchUC ports.Researcher
	JobsUC     *usecase.JobsUseCase

	closeFn func()
}

// New assembles the research pipeline for a given service ("api" or
// "worker"). Postgres and NATS are optional: without a DSN runs live in
// memory, without a broker URL async jobs are disabled.
func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	var (
		runs    ports.RunRepository
		closeFn func()
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		runs = repo
		closeFn = func() { _ = db.Close() }
	} else {
		logger.Warn("no postgres dsn configured, storing runs in memory")
		runs = memory.NewRunStore()
		closeFn = func() {}
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var queue *nats.Queue
	if cfg.NATSURL != "" {
		var err error
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("init job queue: %w", err)
		}
	} else {
		logger.Warn("no nats url configured, async research jobs disabled")
	}

	var generator ports.StrategyGenerator
	if cfg.ChatAPIKey != "" {
		chat := openaichat.New(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel, executor)
		generator = openaichat.NewStrategyGenerator(chat)
	} else {
		logger.Warn("no chat api key configured, using fallback search strategies")
	}

	tables := lookup.Default()
	parser := usecase.NewCriteriaParser(tables)
	provider := usecase.NewStrategyProvider(generator, logger)
	search := serper.New(cfg.SerperBaseURL, cfg.SerperAPIKey)
	extractors := []ports.EntityExtractor{
		extraction.NewCompanyExtractor(tables),
		extraction.NewPersonExtractor(tables),
	}
	researchCfg := usecase.ResearchConfig{
		CompanyPageSize: cfg.CompanyPageSize,
		PeoplePageSize:  cfg.PeoplePageSize,
		CompanyInterval: time.Duration(cfg.CompanySearchDelayMS) * time.Millisecond,
		PeopleInterval:  time.Duration(cfg.PeopleSearchDelayMS) * time.Millisecond,
	}

	// The synchronous path records its own completed runs. The jobs path
	// persists run state itself, so its research use case gets no
	// repository or each async run would be stored twice.
	researchUC := usecase.NewResearchUseCase(provider, search, parser, extractors, runs, researchCfg, logger)
	workerResearchUC := usecase.NewResearchUseCase(provider, search, parser, extractors, nil, researchCfg, logger)

	var (
		jobQueue ports.JobQueue
		jobsUC   *usecase.JobsUseCase
	)
	if queue != nil {
		jobQueue = queue
		jobsUC = usecase.NewJobsUseCase(runs, queue, workerResearchUC, logger)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Queue:      jobQueue,
		Runs:       runs,
		Exporter:   xlsx.NewExporter(),
		ResearchUC: researchUC,
		JobsUC:     jobsUC,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			closeFn()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
