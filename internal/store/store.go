// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adriansteffan/jumbletype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for trial data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			stimulus TEXT NOT NULL,
			button_label TEXT NOT NULL,
			response TEXT NOT NULL,
			raw_input TEXT NOT NULL,
			rt_ms INTEGER NOT NULL,
			keypresses INTEGER NOT NULL,
			backspaces INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trial_events (
			trial_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			rt_ms INTEGER NOT NULL,
			action TEXT NOT NULL,
			typed_char TEXT NOT NULL DEFAULT '',
			mapped_char TEXT NOT NULL DEFAULT '',
			deleted_raw_char TEXT NOT NULL DEFAULT '',
			deleted_display_char TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (trial_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_ended_at ON trials(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_trial_events_typed_char ON trial_events(typed_char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertTrial stores a completed trial and its keystroke log.
func (s *Store) InsertTrial(ctx context.Context, rec model.TrialRecord, log []model.LogEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO trials (started_at, ended_at, stimulus, button_label, response, raw_input, rt_ms, keypresses, backspaces)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Stimulus,
		rec.ButtonLabel,
		rec.Response,
		rec.RawInput,
		rec.RTMs,
		rec.Keypresses,
		rec.Backspaces,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(log) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO trial_events (trial_id, seq, rt_ms, action, typed_char, mapped_char, deleted_raw_char, deleted_display_char)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for seq, entry := range log {
			if _, err := stmt.ExecContext(ctx, id, seq, entry.RT, string(entry.Action),
				entry.TypedChar, entry.MappedChar, entry.DeletedRawChar, entry.DeletedDisplayChar); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListTrials returns trial aggregates filtered by results config.
func (s *Store) ListTrials(ctx context.Context, cfg model.ResultsConfig) ([]model.TrialAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, rt_ms, keypresses, backspaces, LENGTH(response)
		FROM trials
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var trials []model.TrialAggregate
	for rows.Next() {
		var agg model.TrialAggregate
		var endedAt string
		if err := rows.Scan(&agg.TrialID, &endedAt, &agg.RTMs, &agg.Keypresses, &agg.Backspaces, &agg.ResponseLen); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		trials = append(trials, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(trials) > cfg.Last {
		trials = trials[len(trials)-cfg.Last:]
	}
	return trials, nil
}

// GetTrial returns one full trial record by id, or the most recent one
// when id is zero.
func (s *Store) GetTrial(ctx context.Context, id int64) (model.TrialRecord, error) {
	query := `SELECT id, started_at, ended_at, stimulus, button_label, response, raw_input, rt_ms, keypresses, backspaces
		FROM trials`
	args := []any{}
	if id > 0 {
		query += ` WHERE id = ?`
		args = append(args, id)
	} else {
		query += ` ORDER BY ended_at DESC LIMIT 1`
	}

	var rec model.TrialRecord
	var startedAt, endedAt string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.TrialID, &startedAt, &endedAt, &rec.Stimulus, &rec.ButtonLabel,
		&rec.Response, &rec.RawInput, &rec.RTMs, &rec.Keypresses, &rec.Backspaces)
	if err != nil {
		return model.TrialRecord{}, err
	}
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.TrialRecord{}, err
	}
	if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return model.TrialRecord{}, err
	}
	return rec, nil
}

// ListEvents returns the keystroke log of one trial in recorded order.
func (s *Store) ListEvents(ctx context.Context, trialID int64) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rt_ms, action, typed_char, mapped_char, deleted_raw_char, deleted_display_char
		 FROM trial_events
		 WHERE trial_id = ?
		 ORDER BY seq ASC`, trialID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var log []model.LogEntry
	for rows.Next() {
		var entry model.LogEntry
		var action string
		if err := rows.Scan(&entry.RT, &action, &entry.TypedChar, &entry.MappedChar,
			&entry.DeletedRawChar, &entry.DeletedDisplayChar); err != nil {
			return nil, err
		}
		entry.Action = model.Action(action)
		log = append(log, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return log, nil
}

// ListKeyAggregates aggregates keypress events per typed character
// across the given trials.
func (s *Store) ListKeyAggregates(ctx context.Context, trialIDs []int64) ([]model.KeyAggregate, error) {
	if len(trialIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(trialIDs))
	args := make([]any, len(trialIDs))
	for i, id := range trialIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT typed_char, COUNT(*) AS count, SUM(rt_ms) AS latency_sum_ms
		FROM trial_events
		WHERE trial_id IN (%s) AND action = 'keypress'
		GROUP BY typed_char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Char, &agg.Count, &agg.LatencySumMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
