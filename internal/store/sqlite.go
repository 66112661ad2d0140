package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/intake-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS intake_runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'extracted',
	record     TEXT NOT NULL,
	summary    TEXT,
	autofill   TEXT,
	coverage   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS field_versions (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES intake_runs(id),
	path        TEXT NOT NULL,
	version     INTEGER NOT NULL,
	payload     TEXT NOT NULL,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_intake_runs_status ON intake_runs(status);
CREATE INDEX IF NOT EXISTS idx_field_versions_run ON field_versions(run_id);
CREATE INDEX IF NOT EXISTS idx_field_versions_run_path ON field_versions(run_id, path, version);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, rec *model.Record) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO intake_runs (id, status, record, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(RunStatusExtracted), string(recordJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:        id,
		Status:    RunStatusExtracted,
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunRecord(ctx context.Context, runID string, rec *model.Record, status RunStatus) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE intake_runs SET record = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(recordJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run record %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunSummary(ctx context.Context, runID string, summary json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE intake_runs SET summary = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(summary), string(RunStatusResolved), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run summary %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunAutofill(ctx context.Context, runID string, report *model.AutofillReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal autofill report")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE intake_runs SET autofill = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(reportJSON), string(RunStatusAutofilled), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run autofill %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunCoverage(ctx context.Context, runID string, report json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE intake_runs SET coverage = ?, updated_at = ? WHERE id = ?`,
		string(report), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run coverage %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, record, summary, autofill, coverage, created_at, updated_at FROM intake_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, status, record, summary, autofill, coverage, created_at, updated_at FROM intake_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) AppendFieldVersion(ctx context.Context, runID string, field *model.ResolvedField) error {
	payload, err := json.Marshal(field)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal field version")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO field_versions (id, run_id, path, version, payload, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, field.Path, field.Version, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert field version %s", field.Path)
}

func (s *SQLiteStore) FieldHistory(ctx context.Context, runID, path string) ([]model.ResolvedField, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM field_versions WHERE run_id = ? AND path = ? ORDER BY version ASC`,
		runID, path,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: field history")
	}
	defer rows.Close()

	var history []model.ResolvedField
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan field version")
		}
		var field model.ResolvedField
		if err := json.Unmarshal([]byte(payload), &field); err != nil {
			return nil, eris.Wrap(err, "sqlite: decode field version")
		}
		history = append(history, field)
	}
	return history, eris.Wrap(rows.Err(), "sqlite: iterate field versions")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r            Run
		status       string
		recordJSON   string
		summaryJSON  sql.NullString
		reportJSON   sql.NullString
		coverageJSON sql.NullString
	)
	if err := row.Scan(&r.ID, &status, &recordJSON, &summaryJSON, &reportJSON, &coverageJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrap(err, "store: run not found")
		}
		return nil, eris.Wrap(err, "store: scan run")
	}
	r.Status = RunStatus(status)

	r.Record = model.NewRecord()
	if err := json.Unmarshal([]byte(recordJSON), r.Record); err != nil {
		return nil, eris.Wrap(err, "store: decode record")
	}
	if summaryJSON.Valid && summaryJSON.String != "" {
		r.Summary = json.RawMessage(summaryJSON.String)
	}
	if reportJSON.Valid && reportJSON.String != "" {
		r.Autofill = &model.AutofillReport{}
		if err := json.Unmarshal([]byte(reportJSON.String), r.Autofill); err != nil {
			return nil, eris.Wrap(err, "store: decode autofill report")
		}
	}
	if coverageJSON.Valid && coverageJSON.String != "" {
		r.Coverage = json.RawMessage(coverageJSON.String)
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: %s %s not found", kind, id)
	}
	return nil
}
