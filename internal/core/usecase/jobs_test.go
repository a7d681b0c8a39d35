package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishRunRequested(_ context.Context, runID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, runID)
	return nil
}

func (f *queueFake) SubscribeRunRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type researcherFake struct {
	aggregate *domain.ResultAggregate
	err       error
}

func (f *researcherFake) Research(context.Context, domain.ResearchKind, string) (*domain.ResultAggregate, error) {
	return f.aggregate, f.err
}

func TestJobsScheduleCreatesAndPublishes(t *testing.T) {
	repo := &runRepoFake{}
	queue := &queueFake{}
	uc := NewJobsUseCase(repo, queue, &researcherFake{}, discardLogger())

	run, err := uc.Schedule(context.Background(), domain.KindPeople, "find support managers")
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if run.Status != domain.RunPending || run.ID == "" {
		t.Fatalf("run = %+v", run)
	}
	if len(repo.created) != 1 || repo.created[0].ID != run.ID {
		t.Fatalf("created = %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != run.ID {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestJobsScheduleRejectsInvalidInput(t *testing.T) {
	uc := NewJobsUseCase(&runRepoFake{}, &queueFake{}, &researcherFake{}, discardLogger())

	if _, err := uc.Schedule(context.Background(), domain.KindCompanies, ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
	if _, err := uc.Schedule(context.Background(), domain.ResearchKind("x"), "q"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}

func TestJobsSchedulePublishFailure(t *testing.T) {
	uc := NewJobsUseCase(&runRepoFake{}, &queueFake{err: errors.New("nats down")}, &researcherFake{}, discardLogger())

	if _, err := uc.Schedule(context.Background(), domain.KindCompanies, "q"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error = %v, want temporary", err)
	}
}

func TestJobsExecuteRunHappyPath(t *testing.T) {
	repo := &runRepoFake{run: &domain.ResearchRun{
		ID:        "run-1",
		Kind:      domain.KindCompanies,
		Query:     "find companies",
		Status:    domain.RunPending,
		CreatedAt: time.Now(),
	}}
	aggregate := &domain.ResultAggregate{Kind: domain.KindCompanies, TotalFound: 3}
	uc := NewJobsUseCase(repo, &queueFake{}, &researcherFake{aggregate: aggregate}, discardLogger())

	if err := uc.ExecuteRun(context.Background(), "run-1"); err != nil {
		t.Fatalf("ExecuteRun() error = %v", err)
	}
	if len(repo.saved) != 2 {
		t.Fatalf("saved = %+v, want running then completed", repo.saved)
	}
	if repo.saved[0].status != domain.RunRunning {
		t.Fatalf("first save status = %s", repo.saved[0].status)
	}
	last := repo.saved[1]
	if last.status != domain.RunCompleted || last.result != aggregate {
		t.Fatalf("final save = %+v", last)
	}
}

func TestJobsExecuteRunReportsQueueLag(t *testing.T) {
	repo := &runRepoFake{run: &domain.ResearchRun{
		ID:        "run-1",
		Kind:      domain.KindCompanies,
		Query:     "find companies",
		Status:    domain.RunPending,
		CreatedAt: time.Now().Add(-2 * time.Second),
	}}
	uc := NewJobsUseCase(repo, &queueFake{}, &researcherFake{aggregate: &domain.ResultAggregate{}}, discardLogger())

	var lag time.Duration
	calls := 0
	uc.OnQueueLag(func(d time.Duration) {
		lag = d
		calls++
	})

	if err := uc.ExecuteRun(context.Background(), "run-1"); err != nil {
		t.Fatalf("ExecuteRun() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("queue lag observed %d times, want 1", calls)
	}
	if lag < 2*time.Second {
		t.Fatalf("lag = %v, want at least 2s", lag)
	}

	repo.run.Status = domain.RunCompleted
	if err := uc.ExecuteRun(context.Background(), "run-1"); err != nil {
		t.Fatalf("ExecuteRun() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("queue lag observed %d times after completed run, want 1", calls)
	}
}

func TestJobsExecuteRunResearchFailure(t *testing.T) {
	repo := &runRepoFake{run: &domain.ResearchRun{ID: "run-1", Kind: domain.KindCompanies, Query: "q"}}
	uc := NewJobsUseCase(repo, &queueFake{}, &researcherFake{err: errors.New("boom")}, discardLogger())

	if err := uc.ExecuteRun(context.Background(), "run-1"); err == nil {
		t.Fatal("expected error")
	}
	last := repo.saved[len(repo.saved)-1]
	if last.status != domain.RunFailed || last.errMsg == "" {
		t.Fatalf("final save = %+v", last)
	}
}

func TestJobsExecuteRunUnknownRun(t *testing.T) {
	repo := &runRepoFake{getErr: errors.New("no rows")}
	uc := NewJobsUseCase(repo, &queueFake{}, &researcherFake{}, discardLogger())

	if err := uc.ExecuteRun(context.Background(), "missing"); !domain.IsKind(err, domain.ErrRunNotFound) {
		t.Fatalf("error = %v, want run not found", err)
	}
}

func TestJobsExecuteRunSkipsCompleted(t *testing.T) {
	repo := &runRepoFake{run: &domain.ResearchRun{ID: "run-1", Status: domain.RunCompleted}}
	uc := NewJobsUseCase(repo, &queueFake{}, &researcherFake{err: errors.New("must not be called")}, discardLogger())

	if err := uc.ExecuteRun(context.Background(), "run-1"); err != nil {
		t.Fatalf("ExecuteRun() error = %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("saved = %+v, want none", repo.saved)
	}
}
