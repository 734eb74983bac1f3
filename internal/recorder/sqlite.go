package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"QuantAI/internal/model"
)

// MaxHistory caps RecentAnalyses.
const MaxHistory = 200

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id              TEXT PRIMARY KEY,
			ticker          TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			current_price   REAL,
			holding_cost    REAL,
			tech_score      REAL,
			signal          TEXT,
			sentiment_score REAL,
			alpha           REAL,
			action          TEXT,
			report          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker_ts ON analyses(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS watchlist_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			duration_ms INTEGER,
			attempts    INTEGER,
			action      TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON watchlist_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, rep *model.Report) error {
	blob, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `INSERT INTO analyses
		(id, ticker, timestamp, current_price, holding_cost, tech_score, signal,
		 sentiment_score, alpha, action, report)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, rep.Ticker, rep.AnalyzedAt.UnixNano(), rep.CurrentPrice, nullable(rep.HoldingCost),
		rep.Analysis.Score, string(rep.Analysis.Signal), rep.Sentiment.Score,
		rep.Advice.Alpha, rep.Advice.Action, string(blob),
	)
	return err
}

func (r *SQLiteRecorder) RecentAnalyses(ctx context.Context, ticker string, limit int) ([]model.Report, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT report FROM analyses WHERE ticker = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		var rep model.Report
		if err := json.Unmarshal([]byte(blob), &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO watchlist_runs
		(timestamp, ticker, duration_ms, attempts, action, error)
		VALUES (?,?,?,?,?,?)`,
		evt.Started.Unix(), evt.Ticker, evt.Duration.Milliseconds(),
		evt.Attempts, evt.Action, evt.Err,
	)
	return err
}

// CountRuns returns the number of recorded watchlist runs for ticker.
func (r *SQLiteRecorder) CountRuns(ctx context.Context, ticker string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM watchlist_runs WHERE ticker = ?`, ticker).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
