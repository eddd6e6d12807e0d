package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/pkg/model"

	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so that text order matches time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.Component(logger, "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run history ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	var resultJSON sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, algorithm, cpus, quantum, priority_order, max_ticks, status, error, total_ticks, summary, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(run.Algorithm), run.CPUs, run.Quantum, string(run.PriorityOrder), run.MaxTicks,
		string(run.Status), run.Error, run.TotalTicks, string(summaryJSON), resultJSON,
		run.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range run.Workload {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_processes (run_id, seq, pid, arrival, burst, priority) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, p.PID, p.Arrival, p.Burst, p.Priority,
		)
		if err != nil {
			return fmt.Errorf("insert process %d: %w", p.PID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	var run model.Run
	var summaryJSON, createdAt string
	var resultJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, algorithm, cpus, quantum, priority_order, max_ticks, status, error, total_ticks, summary, result, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Name, &run.Algorithm, &run.CPUs, &run.Quantum, &run.PriorityOrder, &run.MaxTicks,
		&run.Status, &run.Error, &run.TotalTicks, &summaryJSON, &resultJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if resultJSON.Valid {
		run.Result = &model.SimulationResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), run.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	workload, err := s.listRunProcesses(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Workload = workload
	return &run, nil
}

func (s *SQLiteStore) listRunProcesses(ctx context.Context, runID string) ([]model.ProcessSpec, error) {
	s.logger.Debug("sql", "op", "select", "table", "run_processes", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT pid, arrival, burst, priority FROM run_processes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProcessSpec
	for rows.Next() {
		var p model.ProcessSpec
		if err := rows.Scan(&p.PID, &p.Arrival, &p.Burst, &p.Priority); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset, "algorithm", opts.Algorithm)
	opts.Clamp()

	where, args := "", []any{}
	if opts.Algorithm != "" {
		where = " WHERE algorithm = ?"
		args = append(args, opts.Algorithm)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, algorithm, cpus, quantum, priority_order, max_ticks, status, error, total_ticks, summary, created_at
		 FROM runs`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var run model.Run
		var summaryJSON, createdAt string
		if err := rows.Scan(&run.ID, &run.Name, &run.Algorithm, &run.CPUs, &run.Quantum, &run.PriorityOrder, &run.MaxTicks,
			&run.Status, &run.Error, &run.TotalTicks, &summaryJSON, &createdAt); err != nil {
			return nil, 0, err
		}
		json.Unmarshal([]byte(summaryJSON), &run.Summary)
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, &run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}
