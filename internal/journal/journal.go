// Package journal persists fills and equity snapshots to SQLite for
// post-session analysis.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/zerolog"

	"obot-go/internal/broker"
)

// Journal is a SQLite-backed trade journal with WAL mode enabled.
type Journal struct {
	db  *sql.DB
	log zerolog.Logger
}

// New opens (creating if needed) the journal database at path.
func New(path string, log zerolog.Logger) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS fills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position_id TEXT NOT NULL,
			pair TEXT NOT NULL,
			side TEXT NOT NULL,
			units REAL NOT NULL,
			price REAL NOT NULL,
			realized_pnl REAL NOT NULL,
			reason TEXT NOT NULL,
			ts INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fills_pair ON fills(pair);`,
		`CREATE TABLE IF NOT EXISTS equity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			equity REAL NOT NULL,
			cash REAL NOT NULL,
			realized_pnl REAL NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Journal{db: db, log: log}, nil
}

// RecordFill inserts one execution row.
func (j *Journal) RecordFill(ctx context.Context, fill broker.Fill) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO fills (position_id, pair, side, units, price, realized_pnl, reason, ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		fill.PositionID, fill.Pair, string(fill.Side), fill.Units, fill.Price, fill.RealizedPnL, fill.Reason, fill.Ts.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert fill: %w", err)
	}
	return nil
}

// RecordEquity inserts one account snapshot row.
func (j *Journal) RecordEquity(ctx context.Context, ts time.Time, equity, cash, realizedPnL float64) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO equity (ts, equity, cash, realized_pnl) VALUES (?, ?, ?, ?)",
		ts.UnixMilli(), equity, cash, realizedPnL,
	)
	if err != nil {
		return fmt.Errorf("insert equity: %w", err)
	}
	return nil
}

// Fills returns recorded executions, optionally filtered by pair, oldest first.
func (j *Journal) Fills(ctx context.Context, pair string) ([]broker.Fill, error) {
	query := "SELECT position_id, pair, side, units, price, realized_pnl, reason, ts FROM fills"
	args := []any{}
	if pair != "" {
		query += " WHERE pair = ?"
		args = append(args, pair)
	}
	query += " ORDER BY id ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fills: %w", err)
	}
	defer rows.Close()

	var fills []broker.Fill
	for rows.Next() {
		var fill broker.Fill
		var side string
		var ts int64
		if err := rows.Scan(&fill.PositionID, &fill.Pair, &side, &fill.Units, &fill.Price, &fill.RealizedPnL, &fill.Reason, &ts); err != nil {
			return nil, fmt.Errorf("scan fill: %w", err)
		}
		fill.Side = broker.Side(side)
		fill.Ts = time.UnixMilli(ts)
		fills = append(fills, fill)
	}
	return fills, rows.Err()
}

// Record implements the paper.FillRecorder seam: insert errors are logged,
// not propagated, so journaling never blocks trading.
func (j *Journal) Record(fill broker.Fill) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.RecordFill(ctx, fill); err != nil {
		j.log.Error().Err(err).Str("pair", fill.Pair).Msg("journal fill failed")
	}
}

// Close releases the database handle.
func (j *Journal) Close() error { return j.db.Close() }
