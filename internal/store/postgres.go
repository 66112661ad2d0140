package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS intake_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status     TEXT NOT NULL DEFAULT 'extracted',
	record     JSONB NOT NULL,
	summary    JSONB,
	autofill   JSONB,
	coverage   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS field_versions (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id      TEXT NOT NULL REFERENCES intake_runs(id),
	path        TEXT NOT NULL,
	version     INTEGER NOT NULL,
	payload     JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_intake_runs_status ON intake_runs(status);
CREATE INDEX IF NOT EXISTS idx_field_versions_run ON field_versions(run_id);
CREATE INDEX IF NOT EXISTS idx_field_versions_run_path ON field_versions(run_id, path, version);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, rec *model.Record) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO intake_runs (id, status, record, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(RunStatusExtracted), recordJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &Run{
		ID:        id,
		Status:    RunStatusExtracted,
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunRecord(ctx context.Context, runID string, rec *model.Record, status RunStatus) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE intake_runs SET record = $1, status = $2, updated_at = $3 WHERE id = $4`,
		recordJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run record %s", runID)
	}
	return checkTag(tag, "run", runID)
}

func (s *PostgresStore) UpdateRunSummary(ctx context.Context, runID string, summary json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE intake_runs SET summary = $1, status = $2, updated_at = $3 WHERE id = $4`,
		[]byte(summary), string(RunStatusResolved), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run summary %s", runID)
	}
	return checkTag(tag, "run", runID)
}

func (s *PostgresStore) UpdateRunAutofill(ctx context.Context, runID string, report *model.AutofillReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal autofill report")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE intake_runs SET autofill = $1, status = $2, updated_at = $3 WHERE id = $4`,
		reportJSON, string(RunStatusAutofilled), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run autofill %s", runID)
	}
	return checkTag(tag, "run", runID)
}

func (s *PostgresStore) UpdateRunCoverage(ctx context.Context, runID string, report json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE intake_runs SET coverage = $1, updated_at = $2 WHERE id = $3`,
		[]byte(report), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run coverage %s", runID)
	}
	return checkTag(tag, "run", runID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, record, summary, autofill, coverage, created_at, updated_at FROM intake_runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, status, record, summary, autofill, coverage, created_at, updated_at FROM intake_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) AppendFieldVersion(ctx context.Context, runID string, field *model.ResolvedField) error {
	payload, err := json.Marshal(field)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal field version")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO field_versions (id, run_id, path, version, payload, recorded_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), runID, field.Path, field.Version, payload, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert field version %s", field.Path)
}

func (s *PostgresStore) FieldHistory(ctx context.Context, runID, path string) ([]model.ResolvedField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM field_versions WHERE run_id = $1 AND path = $2 ORDER BY version ASC`,
		runID, path,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: field history")
	}
	defer rows.Close()

	var history []model.ResolvedField
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan field version")
		}
		var field model.ResolvedField
		if err := json.Unmarshal(payload, &field); err != nil {
			return nil, eris.Wrap(err, "postgres: decode field version")
		}
		history = append(history, field)
	}
	return history, eris.Wrap(rows.Err(), "postgres: iterate field versions")
}

func scanPgRun(row pgx.Row) (*Run, error) {
	var (
		r          Run
		status     string
		recordJSON []byte
		summary    []byte
		report     []byte
		coverage   []byte
	)
	if err := row.Scan(&r.ID, &status, &recordJSON, &summary, &report, &coverage, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(err, "store: run not found")
		}
		return nil, eris.Wrap(err, "store: scan run")
	}
	r.Status = RunStatus(status)

	r.Record = model.NewRecord()
	if err := json.Unmarshal(recordJSON, r.Record); err != nil {
		return nil, eris.Wrap(err, "store: decode record")
	}
	if len(summary) > 0 {
		r.Summary = json.RawMessage(summary)
	}
	if len(report) > 0 {
		r.Autofill = &model.AutofillReport{}
		if err := json.Unmarshal(report, r.Autofill); err != nil {
			return nil, eris.Wrap(err, "store: decode autofill report")
		}
	}
	if len(coverage) > 0 {
		r.Coverage = json.RawMessage(coverage)
	}
	return &r, nil
}

func checkTag(tag pgconn.CommandTag, kind, id string) error {
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: %s %s not found", kind, id)
	}
	return nil
}
