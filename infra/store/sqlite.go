// Package store keeps the history of simulation runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/gridsim/core/report"
)

// ErrNotFound is returned by GetRun for unknown run IDs.
var ErrNotFound = errors.New("run not found")

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID         string          `json:"run_id"`
	GridName      string          `json:"grid"`
	Started       time.Time       `json:"started"`
	Finished      time.Time       `json:"finished"`
	Percent       float64         `json:"percent"`
	Passes        int             `json:"passes"`
	StopReason    string          `json:"stop_reason"`
	TotalDemand   float64         `json:"total_demand_mw"`
	TotalSupplied float64         `json:"total_supplied_mw"`
	Profit        decimal.Decimal `json:"profit"`
}

// SQLiteStore persists run reports in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        grid TEXT,
        started INTEGER,
        finished INTEGER,
        percent REAL,
        passes INTEGER,
        stop_reason TEXT,
        total_demand REAL,
        total_supplied REAL,
        profit TEXT,
        report TEXT
    );
    CREATE INDEX IF NOT EXISTS runs_finished ON runs(finished);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun inserts the report, replacing a previous run with the same ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, r report.Report) error {
	if r.RunID == "" {
		return errors.New("report has no run id")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
        (id, grid, started, finished, percent, passes, stop_reason, total_demand, total_supplied, profit, report)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GridName, r.Started.UnixNano(), r.Finished.UnixNano(), r.Percent,
		r.Summary.Passes, r.Summary.StopReason, r.Summary.TotalDemand, r.Summary.TotalSupplied,
		r.Summary.Profit.String(), string(body))
	return err
}

// ListRuns returns up to limit runs, most recent first. A non-positive limit
// returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, grid, started, finished, percent, passes, stop_reason, total_demand, total_supplied, profit
        FROM runs ORDER BY finished DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started, finished int64
		var profit string
		if err := rows.Scan(&rs.RunID, &rs.GridName, &started, &finished, &rs.Percent, &rs.Passes,
			&rs.StopReason, &rs.TotalDemand, &rs.TotalSupplied, &profit); err != nil {
			return nil, err
		}
		rs.Started = time.Unix(0, started).UTC()
		rs.Finished = time.Unix(0, finished).UTC()
		if rs.Profit, err = decimal.NewFromString(profit); err != nil {
			return nil, fmt.Errorf("run %s: profit: %w", rs.RunID, err)
		}
		res = append(res, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetRun returns the full report of a run.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (report.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return report.Report{}, err
	}
	var r report.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return report.Report{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	return r, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
