package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores history in a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the database at dbPath and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Debug("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ingestions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			rows           INTEGER,
			points         INTEGER,
			dropped        INTEGER,
			coerced        INTEGER,
			symbols        TEXT,
			date_range     TEXT,
			current_price  REAL,
			change_percent REAL,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ingestions_ts ON ingestions(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordIngestion(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO ingestions
		(timestamp, source, rows, points, dropped, coerced, symbols, date_range,
		 current_price, change_percent, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now().UnixMilli(), e.Source, e.Rows, e.Points, e.Dropped, e.Coerced,
		strings.Join(e.Symbols, ","), e.DateRange,
		finite(e.CurrentPrice), e.ChangePercent, e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert ingestion: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, source, rows, points, dropped,
		coerced, symbols, date_range, current_price, change_percent, error
		FROM ingestions ORDER BY timestamp DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query ingestions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			ts       int64
			symbols  string
			cur, pct sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Source, &e.Rows, &e.Points, &e.Dropped,
			&e.Coerced, &symbols, &e.DateRange, &cur, &pct, &e.Error); err != nil {
			return nil, fmt.Errorf("scan ingestion: %w", err)
		}
		e.RecordedAt = time.UnixMilli(ts)
		if symbols != "" {
			e.Symbols = strings.Split(symbols, ",")
		}
		e.CurrentPrice = cur.Float64
		if pct.Valid {
			e.ChangePercent = &pct.Float64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// finite maps NaN and ±Inf to NULL.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
