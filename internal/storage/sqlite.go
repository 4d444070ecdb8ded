package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"news-sentiment-index/internal/types"
)

// Store is the SQLite-backed Result Store: the append-only daily_records
// table plus the singleton acquisition_state checkpoint. Counts are written
// once and never mutated; only the derived smoothed columns are overwritten.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS daily_records (
	date TEXT PRIMARY KEY,
	n_pos INTEGER NOT NULL,
	n_neg INTEGER NOT NULL,
	n_neu INTEGER NOT NULL,
	raw_score REAL,
	smoothed_index REAL,
	low_confidence INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS acquisition_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	last_completed_month TEXT NOT NULL,
	requests_used_today INTEGER NOT NULL,
	quota_reset_date TEXT NOT NULL
);
`

const dateLayout = "2006-01-02"

// Open opens (or creates) the database at dbPath and ensures the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// WAL keeps recompute reads cheap while a commit is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CommitMonth writes the month's daily records in one transaction. A date
// that already exists with identical counts is left untouched, so replaying
// a committed month is a no-op; divergent counts abort the transaction with
// *types.IntegrityError.
func (s *Store) CommitMonth(ctx context.Context, month types.Month, records []types.DailyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin commit for %s: %w", month, err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		var pos, neg, neu int
		err := tx.QueryRowContext(ctx,
			`SELECT n_pos, n_neg, n_neu FROM daily_records WHERE date = ?`,
			rec.Date.Format(dateLayout),
		).Scan(&pos, &neg, &neu)

		switch {
		case err == sql.ErrNoRows:
			raw := sql.NullFloat64{Float64: rec.RawScore, Valid: rec.ScoreDefined}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO daily_records (date, n_pos, n_neg, n_neu, raw_score) VALUES (?, ?, ?, ?, ?)`,
				rec.Date.Format(dateLayout), rec.Positive, rec.Negative, rec.Neutral, raw,
			); err != nil {
				return fmt.Errorf("storage: insert %s: %w", rec.Date.Format(dateLayout), err)
			}
		case err != nil:
			return fmt.Errorf("storage: read existing row %s: %w", rec.Date.Format(dateLayout), err)
		default:
			if pos != rec.Positive || neg != rec.Negative || neu != rec.Neutral {
				return &types.IntegrityError{
					Date:     rec.Date,
					Existing: types.DailyRecord{Date: rec.Date, Positive: pos, Negative: neg, Neutral: neu},
					Incoming: rec,
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit %s: %w", month, err)
	}
	return nil
}

// AllRecords returns the full history ordered by date ascending.
func (s *Store) AllRecords(ctx context.Context) ([]types.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, n_pos, n_neg, n_neu, raw_score, smoothed_index, low_confidence
		 FROM daily_records ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage: query records: %w", err)
	}
	defer rows.Close()

	var records []types.DailyRecord
	for rows.Next() {
		var (
			dateStr  string
			rec      types.DailyRecord
			raw      sql.NullFloat64
			smoothed sql.NullFloat64
		)
		if err := rows.Scan(&dateStr, &rec.Positive, &rec.Negative, &rec.Neutral, &raw, &smoothed, &rec.LowConfidence); err != nil {
			return nil, fmt.Errorf("storage: scan record: %w", err)
		}
		rec.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("storage: bad date %q: %w", dateStr, err)
		}
		rec.RawScore, rec.ScoreDefined = raw.Float64, raw.Valid
		rec.SmoothedIndex, rec.SmoothedDefined = smoothed.Float64, smoothed.Valid
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate records: %w", err)
	}
	return records, nil
}

// UpdateSmoothed overwrites the smoothed_index and low_confidence columns for
// every given record in one transaction.
func (s *Store) UpdateSmoothed(ctx context.Context, records []types.DailyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin smoothed update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE daily_records SET smoothed_index = ?, low_confidence = ? WHERE date = ?`)
	if err != nil {
		return fmt.Errorf("storage: prepare smoothed update: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		smoothed := sql.NullFloat64{Float64: rec.SmoothedIndex, Valid: rec.SmoothedDefined}
		if _, err := stmt.ExecContext(ctx, smoothed, rec.LowConfidence, rec.Date.Format(dateLayout)); err != nil {
			return fmt.Errorf("storage: update smoothed %s: %w", rec.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit smoothed update: %w", err)
	}
	return nil
}

// LoadState reads the persisted acquisition state. ok is false before the
// first SaveState.
func (s *Store) LoadState(ctx context.Context) (types.AcquisitionState, bool, error) {
	var (
		monthStr string
		used     int
		resetStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT last_completed_month, requests_used_today, quota_reset_date FROM acquisition_state WHERE id = 1`,
	).Scan(&monthStr, &used, &resetStr)
	if err == sql.ErrNoRows {
		return types.AcquisitionState{}, false, nil
	}
	if err != nil {
		return types.AcquisitionState{}, false, fmt.Errorf("storage: load state: %w", err)
	}

	state := types.AcquisitionState{RequestsUsed: used}
	if monthStr != "" {
		state.LastCompleted, err = types.ParseMonth(monthStr)
		if err != nil {
			return types.AcquisitionState{}, false, fmt.Errorf("storage: bad checkpoint month: %w", err)
		}
	}
	state.QuotaResetDate, err = time.ParseInLocation(dateLayout, resetStr, time.UTC)
	if err != nil {
		return types.AcquisitionState{}, false, fmt.Errorf("storage: bad quota reset date: %w", err)
	}
	return state, true, nil
}

// SaveState persists the acquisition state singleton.
func (s *Store) SaveState(ctx context.Context, state types.AcquisitionState) error {
	monthStr := ""
	if !state.LastCompleted.IsZero() {
		monthStr = state.LastCompleted.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO acquisition_state (id, last_completed_month, requests_used_today, quota_reset_date)
		 VALUES (1, ?, ?, ?)`,
		monthStr, state.RequestsUsed, state.QuotaResetDate.Format(dateLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: save state: %w", err)
	}
	return nil
}
