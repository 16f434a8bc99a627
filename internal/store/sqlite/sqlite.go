package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/roomsignal/internal/store"
)

// Schema creates the presence audit table.
const Schema = `
CREATE TABLE IF NOT EXISTS presence_events (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id        TEXT NOT NULL,
	participant_id TEXT NOT NULL,
	kind           TEXT NOT NULL,
	at             DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_presence_room ON presence_events(room_id, at DESC);
`

// SQLiteStore implements store.PresenceLog for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema variants.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordPresence inserts records in a single transaction.
func (s *SQLiteStore) RecordPresence(ctx context.Context, records ...store.PresenceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO presence_events (room_id, participant_id, kind, at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.RoomID, rec.ParticipantID, string(rec.Kind), rec.At.UTC()); err != nil {
			return fmt.Errorf("insert presence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListPresence returns up to limit records for roomID, newest first.
func (s *SQLiteStore) ListPresence(ctx context.Context, roomID string, limit int) ([]store.PresenceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, room_id, participant_id, kind, at
		FROM presence_events
		WHERE room_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query presence: %w", err)
	}
	defer rows.Close()

	records := make([]store.PresenceRecord, 0, limit)
	for rows.Next() {
		var (
			rec  store.PresenceRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.ParticipantID, &kind, &rec.At); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		rec.Kind = store.PresenceKind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presence: %w", err)
	}
	return records, nil
}
