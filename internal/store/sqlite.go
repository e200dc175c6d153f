package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadsync/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	report     TEXT,
	error      TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL DEFAULT (datetime('now')),
	ended_at   DATETIME
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	uid          TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	phone        TEXT NOT NULL,
	email        TEXT NOT NULL,
	product      TEXT NOT NULL,
	status       TEXT NOT NULL,
	processed_at DATETIME NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
CREATE INDEX IF NOT EXISTS idx_leads_processed_at ON leads(processed_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, report *model.RunReport, errMsg string) error {
	var reportJSON sql.NullString
	if report != nil {
		b, err := json.Marshal(report)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal report")
		}
		reportJSON = sql.NullString{String: string(b), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, report = ?, error = ?, ended_at = ? WHERE id = ?`,
		string(status), reportJSON, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, report, error, started_at, ended_at FROM runs
		 ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var reportJSON sql.NullString
		var endedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Status, &reportJSON, &r.Error, &r.StartedAt, &endedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if reportJSON.Valid {
			r.Report = &model.RunReport{}
			if err := json.Unmarshal([]byte(reportJSON.String), r.Report); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal report")
			}
		}
		if endedAt.Valid {
			t := endedAt.Time
			r.EndedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) RecordLead(ctx context.Context, runID string, rec model.Record) (*model.Lead, error) {
	lead := leadFromRecord(runID, rec)

	// The uid is globally unique across runs; re-recording an already
	// journaled lead is a no-op.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, run_id, uid, name, phone, email, product, status, processed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (uid) DO NOTHING`,
		lead.ID, lead.RunID, lead.UID, lead.Name, lead.Phone, lead.Email,
		lead.Product, lead.Status, lead.ProcessedAt, lead.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert lead %s", lead.UID)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, run_id, uid, name, phone, email, product, status, processed_at, created_at
	          FROM leads WHERE 1=1`
	var args []any

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if !filter.Since.IsZero() {
		query += ` AND processed_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY processed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.RunID, &l.UID, &l.Name, &l.Phone, &l.Email,
			&l.Product, &l.Status, &l.ProcessedAt, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func leadFromRecord(runID string, rec model.Record) *model.Lead {
	return &model.Lead{
		ID:          uuid.New().String(),
		RunID:       runID,
		UID:         rec.UID,
		Name:        rec.Name.Or(),
		Phone:       rec.Phone.Or(),
		Email:       rec.Email.Or(),
		Product:     rec.Product.Or(),
		Status:      rec.Status,
		ProcessedAt: rec.ProcessedAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}
