package domain

import "time"

// Table is the flattened tabular projection of a result set, with a fixed
// per-variant column order.
type Table struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Total   int                 `json:"total"`
	Summary string              `json:"summary"`
}

// ResultAggregate is the sole externally visible artifact of a research run.
// It is assembled once at the end of the run and never modified.
type ResultAggregate struct {
	Kind             ResearchKind  `json:"kind"`
	Entities         []*Entity     `json:"entities"`
	Criteria         Criteria      `json:"search_criteria"`
	TotalFound       int           `json:"total_found"`
	CriteriaMatched  int           `json:"criteria_matched"`
	Summary          string        `json:"search_summary"`
	Reasoning        string        `json:"reasoning"`
	ExecutionSeconds float64       `json:"execution_time"`
	Events           []SearchEvent `json:"search_events"`
	Table            *Table        `json:"table_data,omitempty"`
}

// RunStatus is the lifecycle state of a stored research run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ResearchRun is a persisted research request plus, once finished, its
// aggregate. Synchronous runs are stored already completed; asynchronous jobs
// start pending and are completed by the worker.
type ResearchRun struct {
	ID        string           `json:"id"`
	Kind      ResearchKind     `json:"kind"`
	Query     string           `json:"query"`
	Status    RunStatus        `json:"status"`
	Result    *ResultAggregate `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
