// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Batch runs save from several goroutines.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per pipeline invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		params TEXT NOT NULL,
		candle_count INTEGER NOT NULL,
		high_count INTEGER NOT NULL,
		low_count INTEGER NOT NULL,
		contract_count INTEGER NOT NULL,
		pending_count INTEGER NOT NULL
	);

	-- Contracts of a run, in pipeline order
	CREATE TABLE IF NOT EXISTS contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		sender_position INTEGER NOT NULL,
		receiver_position INTEGER NOT NULL,
		order_type TEXT NOT NULL,
		order_status TEXT NOT NULL,
		payload TEXT NOT NULL,
		UNIQUE(run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, created_at);
	CREATE INDEX IF NOT EXISTS idx_contracts_run ON contracts(run_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores a run and its contracts in one transaction. An empty ID is
// replaced by a fresh UUID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.ContractCount = len(run.Contracts)

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, created_at, params, candle_count, high_count, low_count, contract_count, pending_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt, string(params), run.CandleCount,
		run.HighCount, run.LowCount, run.ContractCount, run.PendingCount)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contracts (run_id, seq, type, sender_position, receiver_position, order_type, order_status, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing contract insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range run.Contracts {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding contract %d: %w", i, err)
		}
		_, err = stmt.ExecContext(ctx, run.ID, i, string(c.Type), c.Sender.PositionNumber,
			c.Receiver.PositionNumber, string(c.Receiver.OrderType), string(c.Receiver.OrderStatus), string(payload))
		if err != nil {
			return fmt.Errorf("inserting contract %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRuns retrieves runs newest first, without their contracts.
func (s *SQLiteStore) GetRuns(ctx context.Context, filter RunFilter) ([]models.Run, error) {
	query := `SELECT id, source, created_at, params, candle_count, high_count, low_count, contract_count, pending_count
		FROM runs`
	var conditions []string
	var args []interface{}

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if !filter.StartDate.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.EndDate)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun retrieves one run with its contracts.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, created_at, params, candle_count, high_count, low_count, contract_count, pending_count
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "run %s", id)
	}
	if err != nil {
		return nil, err
	}

	run.Contracts, err = s.GetContracts(ctx, id, ContractFilter{})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetContracts retrieves the contracts of a run in pipeline order.
func (s *SQLiteStore) GetContracts(ctx context.Context, runID string, filter ContractFilter) ([]models.ContractView, error) {
	query := "SELECT payload FROM contracts WHERE run_id = ?"
	args := []interface{}{runID}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		query += " AND order_status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var out []models.ContractView
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var c models.ContractView
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, fmt.Errorf("decoding contract: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var params string
	if err := row.Scan(&run.ID, &run.Source, &run.CreatedAt, &params, &run.CandleCount,
		&run.HighCount, &run.LowCount, &run.ContractCount, &run.PendingCount); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("decoding params: %w", err)
	}
	return &run, nil
}
