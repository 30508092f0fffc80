package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists backtest runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (sweep workers record
	// while analysis tools read).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT,
			interval          TEXT,
			bars              INTEGER,
			epsilon           REAL,
			entry_ratio       REAL,
			stop_ratio        REAL,
			wick_lookback     INTEGER,
			exit_mode         TEXT,
			take_profit_ratio REAL,
			stop_loss_ratio   REAL,
			pattern_window    INTEGER,
			total_trades      INTEGER,
			total_return      REAL,
			sharpe            REAL,
			sortino           REAL,
			max_drawdown      REAL,
			bench_return      REAL,
			bench_sharpe      REAL,
			bench_sortino     REAL,
			bench_drawdown    REAL,
			periods_per_year  REAL,
			diagnostic        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON backtest_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON backtest_runs(symbol, interval)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      INTEGER NOT NULL REFERENCES backtest_runs(id),
			entry_index INTEGER,
			exit_index  INTEGER,
			entry_time  INTEGER,
			exit_time   INTEGER,
			entry_price REAL,
			exit_price  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run parameters, summary metrics and all trades in one
// transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := rec.Report
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO backtest_runs
		(timestamp, symbol, interval, bars,
		 epsilon, entry_ratio, stop_ratio, wick_lookback, exit_mode,
		 take_profit_ratio, stop_loss_ratio, pattern_window,
		 total_trades, total_return, sharpe, sortino, max_drawdown,
		 bench_return, bench_sharpe, bench_sortino, bench_drawdown,
		 periods_per_year, diagnostic)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.Interval, rec.Bars,
		rec.Epsilon, rec.EntryRatio, rec.StopRatio, rec.WickLookback, rec.ExitMode,
		rec.TakeProfitRatio, rec.StopLossRatio, rec.PatternWindow,
		rep.Strategy.TotalTrades, rep.Strategy.TotalReturn,
		rep.Strategy.SharpeRatio, rep.Strategy.SortinoRatio, rep.Strategy.MaxDrawdown,
		rep.Benchmark.TotalReturn, rep.Benchmark.SharpeRatio,
		rep.Benchmark.SortinoRatio, rep.Benchmark.MaxDrawdown,
		rep.PeriodsPerYear, rep.Diagnostic,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, tr := range rep.Trades {
		if _, err := tx.Exec(`INSERT INTO trades
			(run_id, entry_index, exit_index, entry_time, exit_time, entry_price, exit_price)
			VALUES (?,?,?,?,?,?,?)`,
			runID, tr.EntryIndex, tr.ExitIndex,
			tr.EntryTime.Unix(), tr.ExitTime.Unix(),
			tr.EntryPrice, tr.ExitPrice,
		); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
