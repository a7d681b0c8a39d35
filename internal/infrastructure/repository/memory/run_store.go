// Package memory provides an in-process run repository used when no database
// is configured. Runs live for the lifetime of the process only.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.ResearchRun
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*domain.ResearchRun)}
}

func (s *RunStore) Create(_ context.Context, run *domain.ResearchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("research run already exists: %s", run.ID)
	}
	stored := *run
	s.runs[run.ID] = &stored
	return nil
}

func (s *RunStore) GetByID(_ context.Context, id string) (*domain.ResearchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrRunNotFound, "memory.GetByID",
			fmt.Errorf("research run not found: %s", id))
	}
	copied := *run
	return &copied, nil
}

func (s *RunStore) List(_ context.Context, limit int) ([]*domain.ResearchRun, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*domain.ResearchRun, 0, len(s.runs))
	for _, run := range s.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *RunStore) SaveResult(_ context.Context, id string, status domain.RunStatus, result *domain.ResultAggregate, errMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return domain.WrapError(domain.ErrRunNotFound, "memory.SaveResult",
			fmt.Errorf("research run not found: %s", id))
	}
	run.Status = status
	run.Result = result
	run.Error = errMessage
	run.UpdatedAt = time.Now().UTC()
	return nil
}
