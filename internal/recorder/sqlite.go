package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockScanner/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id        TEXT PRIMARY KEY,
			started_at    INTEGER NOT NULL,
			duration_ms   INTEGER NOT NULL,
			tier          TEXT NOT NULL,
			resolution    TEXT NOT NULL,
			universe_size INTEGER NOT NULL,
			total_scanned INTEGER NOT NULL,
			failed        INTEGER NOT NULL,
			insufficient  INTEGER NOT NULL,
			matched       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS scan_matches (
			run_id   TEXT NOT NULL,
			position INTEGER NOT NULL,
			symbol   TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_matches_symbol ON scan_matches(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(ctx context.Context, res *model.ScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := FromResult(res)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scan_runs
		(run_id, started_at, duration_ms, tier, resolution,
		 universe_size, total_scanned, failed, insufficient, matched)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.StartedAt.Unix(), rec.Duration.Milliseconds(),
		string(rec.Tier), string(rec.Resolution),
		rec.UniverseSize, rec.TotalScanned, rec.FailedCount, rec.Insufficient, len(rec.Matches),
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for i, sym := range rec.Matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scan_matches (run_id, position, symbol) VALUES (?,?,?)`,
			rec.RunID, i, sym); err != nil {
			return fmt.Errorf("insert match %s: %w", sym, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT run_id, started_at, duration_ms, tier, resolution,
		universe_size, total_scanned, failed, insufficient
		FROM scan_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}

	var records []ScanRecord
	for rows.Next() {
		var (
			rec              ScanRecord
			started, durMS   int64
			tier, resolution string
		)
		if err := rows.Scan(&rec.RunID, &started, &durMS, &tier, &resolution,
			&rec.UniverseSize, &rec.TotalScanned, &rec.FailedCount, &rec.Insufficient); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.Duration = time.Duration(durMS) * time.Millisecond
		rec.Tier = model.Tier(tier)
		rec.Resolution = model.Resolution(resolution)
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		matches, err := r.matches(ctx, records[i].RunID)
		if err != nil {
			return nil, err
		}
		records[i].Matches = matches
	}
	return records, nil
}

func (r *SQLiteRecorder) matches(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT symbol FROM scan_matches WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
