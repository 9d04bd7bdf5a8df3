// Package postgres backs remote.Store with a single JSONB documents table.
// Schema:
//
//	CREATE TABLE IF NOT EXISTS documents (
//	    collection  TEXT        NOT NULL,
//	    id          TEXT        NOT NULL,
//	    data        JSONB       NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, id)
//	);
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn, ensures the documents table exists, and returns the store.
func New(dsn string) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s := NewWithDB(db)
	if err := s.Bootstrap(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB constructs the store over an existing connection.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

// Store implements remote.Store on PostgreSQL.
type Store struct{ db *sql.DB }

// Bootstrap creates the documents table when missing.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS documents (
            collection  TEXT        NOT NULL,
            id          TEXT        NOT NULL,
            data        JSONB       NOT NULL,
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (collection, id)
        )`)
	if err != nil {
		return fmt.Errorf("bootstrap documents table: %w", err)
	}
	return nil
}

// HealthPing reports connectivity for health checks.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the pool.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts fields under a store-assigned id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1,$2,$3)`,
		collection, id, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get returns one document or remote.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	var raw []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return remote.Document{}, remote.ErrNotFound
		}
		return remote.Document{}, err
	}
	return decodeDocument(id, raw)
}

// Query filters with JSONB containment and sorts on a JSONB field. jsonb
// ordering compares numbers numerically and strings by collation, which
// covers both duration-style and RFC3339 timestamp fields.
func (s *Store) Query(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	filter := make(map[string]any, len(q.Filters))
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode query filter: %w", err)
	}

	sqlText := `SELECT id, data FROM documents WHERE collection=$1 AND data @> $2::jsonb`
	args := []any{collection, filterJSON}
	if q.OrderBy.Field != "" {
		dir := "ASC"
		if q.OrderBy.Desc {
			dir = "DESC"
		}
		sqlText += ` ORDER BY data -> $3::text ` + dir
		args = append(args, q.OrderBy.Field)
	} else {
		sqlText += ` ORDER BY id ASC`
	}
	if q.Limit > 0 {
		sqlText += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []remote.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Set upserts the full document.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	return execSet(ctx, s.db, collection, id, fields)
}

// Update merges partial into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	return execUpdate(ctx, s.db, collection, id, partial)
}

// Delete removes the document; absent rows are not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return execDelete(ctx, s.db, collection, id)
}

// AtomicIncrement adjusts a numeric field in one statement so concurrent
// callers serialize on the row lock. A missing document is created with
// field=delta.
func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	return execIncrement(ctx, s.db, collection, id, field, delta)
}

// Batch returns a transaction-backed write batch.
func (s *Store) Batch() remote.Batch {
	return &batch{store: s}
}

// execer covers *sql.DB and *sql.Tx so batch commits reuse the single-op
// statements.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execSet(ctx context.Context, db execer, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = db.ExecContext(ctx, `
        INSERT INTO documents (collection, id, data) VALUES ($1,$2,$3)
        ON CONFLICT (collection, id)
        DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, data)
	return err
}

func execUpdate(ctx context.Context, db execer, collection, id string, partial map[string]any) error {
	data, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode partial document: %w", err)
	}
	res, err := db.ExecContext(ctx, `
        UPDATE documents SET data = data || $3::jsonb, updated_at = now()
        WHERE collection=$1 AND id=$2`,
		collection, id, data)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func execDelete(ctx context.Context, db execer, collection, id string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	return err
}

func execIncrement(ctx context.Context, db execer, collection, id, field string, delta int64) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO documents (collection, id, data)
        VALUES ($1,$2, jsonb_build_object($3::text, $4::numeric))
        ON CONFLICT (collection, id)
        DO UPDATE SET
            data = jsonb_set(
                documents.data,
                ARRAY[$3::text],
                to_jsonb(COALESCE((documents.data->>$3)::numeric, 0) + $4::numeric),
                true),
            updated_at = now()`,
		collection, id, field, delta)
	return err
}

func decodeDocument(id string, raw []byte) (remote.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return remote.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return remote.Document{ID: id, Fields: fields}, nil
}

var _ remote.Store = (*Store)(nil)
