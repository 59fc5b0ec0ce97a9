package events

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"BasketMint/internal/model"
)

// SQLiteRecorder persists every event to an audit table.
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

	// WAL so dashboards can read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fund_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			fund_id     TEXT NOT NULL,
			contributor TEXT,
			asset       TEXT,
			amount      TEXT,
			contribution TEXT,
			value       TEXT,
			shares      TEXT,
			minimum     TEXT,
			tier_label  TEXT,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_fund ON fund_events(fund_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON fund_events(kind)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record inserts one event. Decimals are stored as text to keep precision.
func (r *SQLiteRecorder) Record(evt model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO fund_events
		(timestamp, kind, fund_id, contributor, asset, amount, contribution, value, shares, minimum, tier_label, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		at.UnixNano(), string(evt.Kind), evt.FundID, evt.Contributor, evt.Asset,
		evt.Amount.String(), evt.Contribution.String(), evt.Value.String(), evt.Shares.String(), evt.Minimum.String(),
		evt.TierLabel, evt.Note,
	)
	return err
}

// Publish implements Sink; failures are logged, never propagated to the engine.
func (r *SQLiteRecorder) Publish(evt model.Event) {
	if err := r.Record(evt); err != nil {
		r.log.Error("record event", zap.String("kind", string(evt.Kind)), zap.String("fund_id", evt.FundID), zap.Error(err))
	}
}

// History returns the events recorded for a fund, oldest first.
func (r *SQLiteRecorder) History(fundID string) ([]model.Event, error) {
	rows, err := r.db.Query(`SELECT timestamp, kind, fund_id, contributor, asset, amount, contribution, value, shares, minimum, tier_label, note
		FROM fund_events WHERE fund_id = ? ORDER BY id`, fundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			ts                                           int64
			kind                                         string
			amount, contribution, value, shares, minimum string
			evt                                          model.Event
		)
		if err := rows.Scan(&ts, &kind, &evt.FundID, &evt.Contributor, &evt.Asset,
			&amount, &contribution, &value, &shares, &minimum, &evt.TierLabel, &evt.Note); err != nil {
			return nil, err
		}
		evt.Kind = model.EventKind(kind)
		evt.At = time.Unix(0, ts)
		evt.Amount = parseDecimal(amount)
		evt.Contribution = parseDecimal(contribution)
		evt.Value = parseDecimal(value)
		evt.Shares = parseDecimal(shares)
		evt.Minimum = parseDecimal(minimum)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
