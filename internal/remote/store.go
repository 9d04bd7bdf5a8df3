// Package remote defines the document-store contract this core consumes.
// The store is treated as an opaque key/query service; implementations live
// under internal/remote/<driver>/ (memstore, httpstore, postgres).
package remote

import (
	"context"
	"errors"
)

// ErrNotFound reports a read miss. Implementations must return it (wrapped
// or bare) for missing documents and for nothing else, so callers can tell
// absence apart from infrastructure failure.
var ErrNotFound = errors.New("remote: document not found")

// Document is one stored record: an id plus its field map.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// OrderBy names the sort field. Zero value means store order.
type OrderBy struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Query bundles the supported read shape: equality filters, one sort field,
// optional limit.
type Query struct {
	Filters []Filter `json:"filters,omitempty"`
	OrderBy OrderBy  `json:"orderBy,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Store is the remote document store. Ids are assigned by the store on Add;
// AtomicIncrement has upsert semantics (a missing document is created with
// field=delta) and is the only primitive repositories may use to touch
// counters.
type Store interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error
	Batch() Batch
}

// Batch accumulates writes and applies them in one commit. Implementations
// rely on the backing store's transaction guarantees: either every queued
// operation becomes visible or none does.
type Batch interface {
	Add(collection string, fields map[string]any)
	Set(collection, id string, fields map[string]any)
	Update(collection, id string, partial map[string]any)
	Delete(collection, id string)
	Commit(ctx context.Context) error
}
