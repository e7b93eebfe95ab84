// Package store handles SQLite persistence of finalized sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/keytally/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
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
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			log_file TEXT NOT NULL,
			total INTEGER NOT NULL,
			distinct_keys INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_keys (
			session_id INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			key_name TEXT NOT NULL,
			presses INTEGER NOT NULL,
			PRIMARY KEY (session_id, key_name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_keys_key ON session_keys(key_name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finalized session and its key counts in first-seen order.
func (s *Store) InsertSession(ctx context.Context, summary model.SessionSummary, keys []model.KeyCount) (id int64, err error) {
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
		`INSERT INTO sessions (started_at, ended_at, log_file, total, distinct_keys, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.EndedAt.Format(time.RFC3339Nano),
		summary.LogFile,
		summary.Total,
		summary.Distinct,
		summary.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_keys (session_id, ordinal, key_name, presses) VALUES (?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, kc := range keys {
			if _, err = stmt.ExecContext(ctx, id, i, kc.Key, kc.Count); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns stored sessions ordered oldest first, filtered by the history filter.
func (s *Store) ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, log_file, total, distinct_keys, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
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

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.LogFile, &agg.Total, &agg.Distinct, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(sessions) > filter.Last {
		sessions = sessions[len(sessions)-filter.Last:]
	}
	return sessions, nil
}

// GetSession returns a single stored session.
func (s *Store) GetSession(ctx context.Context, id int64) (model.SessionAggregate, error) {
	var agg model.SessionAggregate
	var endedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ended_at, log_file, total, distinct_keys, duration_ms FROM sessions WHERE id = ?`, id).
		Scan(&agg.SessionID, &endedAt, &agg.LogFile, &agg.Total, &agg.Distinct, &agg.DurationMs)
	if err != nil {
		return model.SessionAggregate{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return model.SessionAggregate{}, err
	}
	agg.EndedAt = parsed
	return agg, nil
}

// ListKeyCounts returns the key counts of one session in first-seen order.
func (s *Store) ListKeyCounts(ctx context.Context, sessionID int64) ([]model.KeyCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key_name, presses FROM session_keys WHERE session_id = ? ORDER BY ordinal ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanKeyCounts(rows)
}

// AggregateKeyCounts sums key counts across sessions, ordered by first appearance.
func (s *Store) AggregateKeyCounts(ctx context.Context, sessionIDs []int64) ([]model.KeyCount, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT key_name, presses
		FROM session_keys
		WHERE session_id IN (%s)
		ORDER BY session_id ASC, ordinal ASC`, strings.Join(placeholders, ","))
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
	perSession, err := scanKeyCounts(rows)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var result []model.KeyCount
	for _, kc := range perSession {
		i, ok := index[kc.Key]
		if !ok {
			i = len(result)
			index[kc.Key] = i
			result = append(result, model.KeyCount{Key: kc.Key})
		}
		result[i].Count += kc.Count
	}
	return result, nil
}

func scanKeyCounts(rows *sql.Rows) ([]model.KeyCount, error) {
	var result []model.KeyCount
	for rows.Next() {
		var kc model.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, err
		}
		result = append(result, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
