package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/store"
)

// sqliteJournal implements store.Journal on SQLite
type sqliteJournal struct {
	db *sql.DB
}

// OpenSQLite opens a journal database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Wait for concurrent writers instead of failing with SQLITE_BUSY
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteJournal{db: db}, nil
}

// Close closes the database connection
func (s *sqliteJournal) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS journal (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	tracking_id TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	vendor TEXT,
	document_type TEXT,
	expiration_date TEXT,
	record TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_tracking ON journal(tracking_id);
CREATE INDEX IF NOT EXISTS idx_journal_expiration ON journal(expiration_date);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Append inserts an entry and returns its sequence number
func (s *sqliteJournal) Append(ctx context.Context, e store.Entry) (int64, error) {
	payload, err := json.Marshal(e.Record)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}

	const stmt = `
INSERT INTO journal (tracking_id, recorded_at, vendor, document_type, expiration_date, record)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING seq;
`
	var seq int64
	err = s.db.QueryRowContext(
		ctx,
		stmt,
		e.TrackingID,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
		e.Record.Vendor(),
		string(e.Record.DocumentType),
		nullable(e.Record.DateRoles.Expiration),
		string(payload),
	).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Replay streams entries in sequence order
func (s *sqliteJournal) Replay(ctx context.Context, fn func(store.Entry) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, tracking_id, recorded_at, record FROM journal ORDER BY seq`)
	if err != nil {
		return err
	}

	// Collect first so that fn may write to the journal.
	var entries []store.Entry
	for rows.Next() {
		var (
			e        store.Entry
			recorded string
			payload  string
		)
		if err := rows.Scan(&e.Seq, &e.TrackingID, &recorded, &payload); err != nil {
			rows.Close()
			return err
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			rows.Close()
			return fmt.Errorf("journal entry %d: %w", e.Seq, err)
		}
		var rec model.DocumentRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			rows.Close()
			return fmt.Errorf("journal entry %d: %w", e.Seq, err)
		}
		e.Record = rec
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Truncate removes compacted entries
func (s *sqliteJournal) Truncate(ctx context.Context, upTo int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM journal WHERE seq <= ?`, upTo)
	return err
}

// Len counts retained entries
func (s *sqliteJournal) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n)
	return n, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
