// Package memstore is an in-memory remote.Store used by tests and local
// development. It honors the full contract, including atomic increments and
// all-or-nothing batches, and can inject failures to exercise error paths.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Store keeps documents in nested maps guarded by one RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any

	failErr   error
	afterErr  error
	failAfter int // fail once this many more writes have been applied; -1 disabled
	writes    int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		failAfter:   -1,
	}
}

// FailWith makes every subsequent operation return err. FailWith(nil)
// clears all armed failures.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.failErr = err
	if err == nil {
		s.failAfter = -1
		s.afterErr = nil
		s.writes = 0
	}
	s.mu.Unlock()
}

// FailAfterWrites lets n more writes succeed, then fails every operation
// with err until FailWith(nil). Used to break a drain partway through.
func (s *Store) FailAfterWrites(n int, err error) {
	s.mu.Lock()
	s.failAfter = n
	s.failErr = nil
	s.writes = 0
	s.afterErr = err
	s.mu.Unlock()
}

// Len reports the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) checkFailure() error {
	if s.failErr != nil {
		return s.failErr
	}
	return nil
}

func (s *Store) noteWrite() error {
	if s.failAfter >= 0 {
		if s.writes >= s.failAfter {
			return s.afterErr
		}
		s.writes++
	}
	return nil
}

func (s *Store) coll(name string) map[string]map[string]any {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.collections[name] = c
	}
	return c
}

// Add stores fields under a fresh id and returns it.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return "", err
	}
	if err := s.noteWrite(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.coll(collection)[id] = cloneFields(fields)
	return id, nil
}

// Get returns the document or remote.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	if err := ctx.Err(); err != nil {
		return remote.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailure(); err != nil {
		return remote.Document{}, err
	}
	fields, ok := s.collections[collection][id]
	if !ok {
		return remote.Document{}, remote.ErrNotFound
	}
	return remote.Document{ID: id, Fields: cloneFields(fields)}, nil
}

// Query applies equality filters, the sort field, and the limit.
func (s *Store) Query(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkFailure(); err != nil {
		return nil, err
	}
	var out []remote.Document
	for id, fields := range s.collections[collection] {
		if matches(fields, q.Filters) {
			out = append(out, remote.Document{ID: id, Fields: cloneFields(fields)})
		}
	}
	if q.OrderBy.Field != "" {
		field, desc := q.OrderBy.Field, q.OrderBy.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i].Fields[field], out[j].Fields[field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		// Map iteration order is random; pin something deterministic.
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Set replaces (or creates) the document wholesale.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return err
	}
	if err := s.noteWrite(); err != nil {
		return err
	}
	s.coll(collection)[id] = cloneFields(fields)
	return nil
}

// Update merges partial into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return err
	}
	if err := s.noteWrite(); err != nil {
		return err
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return remote.ErrNotFound
	}
	for k, v := range partial {
		doc[k] = v
	}
	return nil
}

// Delete removes the document; deleting an absent document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return err
	}
	if err := s.noteWrite(); err != nil {
		return err
	}
	delete(s.collections[collection], id)
	return nil
}

// AtomicIncrement adds delta to a numeric field under the store lock. A
// missing document is created with field=delta.
func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return err
	}
	if err := s.noteWrite(); err != nil {
		return err
	}
	coll := s.coll(collection)
	doc, ok := coll[id]
	if !ok {
		coll[id] = map[string]any{field: float64(delta)}
		return nil
	}
	cur, err := toFloat(doc[field])
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", collection, field, err)
	}
	doc[field] = cur + float64(delta)
	return nil
}

// Batch returns a write batch applied atomically under the store lock.
func (s *Store) Batch() remote.Batch {
	return &batch{store: s}
}

type batchOp struct {
	kind       string
	collection string
	id         string
	fields     map[string]any
}

type batch struct {
	store *Store
	ops   []batchOp
}

func (b *batch) Add(collection string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "add", collection: collection, fields: cloneFields(fields)})
}

func (b *batch) Set(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "set", collection: collection, id: id, fields: cloneFields(fields)})
}

func (b *batch) Update(collection, id string, partial map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "update", collection: collection, id: id, fields: cloneFields(partial)})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{kind: "delete", collection: collection, id: id})
}

// Commit validates every operation before touching anything, so a failing
// update cannot leave earlier operations half-applied.
func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFailure(); err != nil {
		return err
	}
	if err := s.noteWrite(); err != nil {
		return err
	}
	for _, op := range b.ops {
		if op.kind == "update" {
			if _, ok := s.collections[op.collection][op.id]; !ok {
				return fmt.Errorf("batch update %s/%s: %w", op.collection, op.id, remote.ErrNotFound)
			}
		}
	}
	for _, op := range b.ops {
		switch op.kind {
		case "add":
			s.coll(op.collection)[uuid.NewString()] = op.fields
		case "set":
			s.coll(op.collection)[op.id] = op.fields
		case "update":
			doc := s.collections[op.collection][op.id]
			for k, v := range op.fields {
				doc[k] = v
			}
		case "delete":
			delete(s.collections[op.collection], op.id)
		}
	}
	b.ops = nil
	return nil
}

func matches(fields map[string]any, filters []remote.Filter) bool {
	for _, f := range filters {
		if compareValues(fields[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders JSON-shaped values: numbers numerically, everything
// else by string form. Times arrive as RFC3339 strings, which sort
// chronologically.
func compareValues(a, b any) int {
	af, aerr := toFloat(a)
	bf, berr := toFloat(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

var _ remote.Store = (*Store)(nil)
