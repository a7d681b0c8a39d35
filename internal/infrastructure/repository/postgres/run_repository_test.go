package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

func newRunRepoWithMock(t *testing.T) (*RunRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &RunRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestRunGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRunRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, kind, query, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunGetByIDUnmarshalsAggregate(t *testing.T) {
	repo, mock, done := newRunRepoWithMock(t)
	defer done()

	aggregate := &domain.ResultAggregate{Kind: domain.KindCompanies, TotalFound: 2, Summary: "Found 2 results"}
	resultJSON, err := json.Marshal(aggregate)
	if err != nil {
		t.Fatalf("marshal aggregate: %v", err)
	}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "kind", "query", "status", "result", "error_message", "created_at", "updated_at"}).
		AddRow("run-1", "companies", "find companies", "completed", resultJSON, "", now, now)
	mock.ExpectQuery("SELECT id, kind, query, status").
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if run.Kind != domain.KindCompanies || run.Status != domain.RunCompleted {
		t.Fatalf("run = %+v", run)
	}
	if run.Result == nil || run.Result.TotalFound != 2 {
		t.Fatalf("result = %+v", run.Result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunCreateStoresNullResultForPending(t *testing.T) {
	repo, mock, done := newRunRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	run := &domain.ResearchRun{
		ID:        "run-1",
		Kind:      domain.KindPeople,
		Query:     "find people",
		Status:    domain.RunPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO research_runs").
		WithArgs("run-1", "people", "find people", "pending", nil, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunSaveResultReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRunRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE research_runs").
		WithArgs("missing", "running", nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveResult(context.Background(), "missing", domain.RunRunning, nil, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunListOrdersByCreatedAt(t *testing.T) {
	repo, mock, done := newRunRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "kind", "query", "status", "result", "error_message", "created_at", "updated_at"}).
		AddRow("run-2", "companies", "q2", "completed", nil, "", now, now).
		AddRow("run-1", "companies", "q1", "failed", nil, "boom", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, kind, query, status, result, error_message, created_at, updated_at").
		WithArgs(10).
		WillReturnRows(rows)

	runs, err := repo.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[1].Error != "boom" {
		t.Fatalf("runs = %+v", runs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
