package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// SQLite stores pending writes in a single-file database so queued entries
// survive process restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the pending-write database at path and
// bootstraps the schema. WAL keeps concurrent readers cheap.
func OpenSQLite(path string) (*SQLite, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteWithDB wires an existing connection (used by tests and factories).
func NewSQLiteWithDB(db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS PendingWrites (
        Seq INTEGER PRIMARY KEY AUTOINCREMENT,
        WriteId TEXT NOT NULL UNIQUE,
        Family TEXT NOT NULL,
        OwnerId TEXT NOT NULL,
        RinkId TEXT,
        Payload BLOB NOT NULL,
        EnqueuedAt TIMESTAMP NOT NULL
    );`)
	if err != nil {
		return fmt.Errorf("ensure pending-writes schema: %w", err)
	}
	return nil
}

// Append persists one pending write at the tail of the queue.
func (s *SQLite) Append(ctx context.Context, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO PendingWrites (WriteId, Family, OwnerId, RinkId, Payload, EnqueuedAt) VALUES (?,?,?,?,?,?)`,
		item.ID, string(item.Family), item.OwnerID, item.RinkID, item.Payload, item.EnqueuedAt.UTC())
	if err != nil {
		return fmt.Errorf("append pending write: %w", err)
	}
	return nil
}

// ReadAll returns every pending write in insertion order.
func (s *SQLite) ReadAll(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT WriteId, Family, OwnerId, RinkId, Payload, EnqueuedAt FROM PendingWrites ORDER BY Seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("read pending writes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []Item
	for rows.Next() {
		var (
			it     Item
			family string
			rink   sql.NullString
			at     time.Time
		)
		if err := rows.Scan(&it.ID, &family, &it.OwnerID, &rink, &it.Payload, &at); err != nil {
			return nil, fmt.Errorf("scan pending write: %w", err)
		}
		it.Family = types.Family(family)
		it.RinkID = rink.String
		it.EnqueuedAt = at
		items = append(items, it)
	}
	return items, rows.Err()
}

// Clear removes every pending write.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM PendingWrites`); err != nil {
		return fmt.Errorf("clear pending writes: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

var _ Store = (*SQLite)(nil)
