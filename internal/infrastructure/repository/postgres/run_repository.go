package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS research_runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	query TEXT NOT NULL,
	status TEXT NOT NULL,
	result JSONB,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_research_runs_status ON research_runs(status);
CREATE INDEX IF NOT EXISTS idx_research_runs_created_at ON research_runs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) Create(ctx context.Context, run *domain.ResearchRun) error {
	resultJSON, err := marshalAggregate(run.Result)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO research_runs (
	id, kind, query, status, result, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		run.ID, string(run.Kind), run.Query, string(run.Status), resultJSON, run.Error,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert research run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ResearchRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, kind, query, status, result, error_message, created_at, updated_at
FROM research_runs
WHERE id = $1
`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRunNotFound, "postgres.GetByID",
				fmt.Errorf("research run not found: %s", id))
		}
		return nil, err
	}
	return run, nil
}

func (r *RunRepository) List(ctx context.Context, limit int) ([]*domain.ResearchRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, kind, query, status, result, error_message, created_at, updated_at
FROM research_runs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query research runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.ResearchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate research runs: %w", err)
	}
	return runs, nil
}

func (r *RunRepository) SaveResult(ctx context.Context, id string, status domain.RunStatus, result *domain.ResultAggregate, errMessage string) error {
	resultJSON, err := marshalAggregate(result)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE research_runs
SET status = $2, result = $3, error_message = $4, updated_at = $5
WHERE id = $1
`, id, string(status), resultJSON, errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update research run: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrRunNotFound, "postgres.SaveResult",
			fmt.Errorf("research run not found: %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.ResearchRun, error) {
	var run domain.ResearchRun
	var kind, status string
	var resultRaw []byte

	err := row.Scan(&run.ID, &kind, &run.Query, &status, &resultRaw, &run.Error,
		&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan research run: %w", err)
	}

	if len(resultRaw) > 0 {
		var aggregate domain.ResultAggregate
		if err := json.Unmarshal(resultRaw, &aggregate); err != nil {
			return nil, fmt.Errorf("unmarshal run result: %w", err)
		}
		run.Result = &aggregate
	}
	run.Kind = domain.ResearchKind(kind)
	run.Status = domain.RunStatus(status)
	return &run, nil
}

func marshalAggregate(aggregate *domain.ResultAggregate) ([]byte, error) {
	if aggregate == nil {
		return nil, nil
	}
	data, err := json.Marshal(aggregate)
	if err != nil {
		return nil, fmt.Errorf("marshal run result: %w", err)
	}
	return data, nil
}
