// Package httpstore implements remote.Store over the rinkstored document
// API. Mutations are sent exactly once; retry policy belongs to the sync
// layer, which replays whole batches on connectivity edges.
package httpstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

const defaultTimeout = 30 * time.Second

// Store talks to a rinkstored-compatible document service.
type Store struct {
	client *resty.Client
}

// Option tweaks the underlying resty client.
type Option func(*Store)

// WithTimeout bounds each HTTP request end to end.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.client.SetTimeout(d) }
}

// WithAPIKey sends a bearer token with every request.
func WithAPIKey(key string) Option {
	return func(s *Store) { s.client.SetAuthToken(key) }
}

// WithTransport swaps the HTTP transport (debug logging, test doubles).
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Store) { s.client.SetTransport(rt) }
}

// New returns a store rooted at baseURL.
func New(baseURL string, opts ...Option) *Store {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout)
	s := &Store{client: c}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type addResponse struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Documents []remote.Document `json:"documents"`
}

type incrementRequest struct {
	Field string `json:"field"`
	Delta int64  `json:"delta"`
}

// Add posts fields and returns the id the service assigned.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out addResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(fields).
		SetResult(&out).
		Post(fmt.Sprintf("/v1/collections/%s/documents", collection))
	if err != nil {
		return "", remote.ClassifyNetwork("add document", err)
	}
	if resp.IsError() {
		return "", statusError(resp, "add document")
	}
	if out.ID == "" {
		return "", fmt.Errorf("add document: service returned no id")
	}
	return out.ID, nil
}

// Get fetches one document; 404 maps to remote.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	if err := ctx.Err(); err != nil {
		return remote.Document{}, err
	}
	var out remote.Document
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/v1/collections/%s/documents/%s", collection, id))
	if err != nil {
		return remote.Document{}, remote.ClassifyNetwork("get document", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return remote.Document{}, remote.ErrNotFound
	}
	if resp.IsError() {
		return remote.Document{}, statusError(resp, "get document")
	}
	return out, nil
}

// Query posts the query shape and returns matching documents.
func (s *Store) Query(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out queryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&q).
		SetResult(&out).
		Post(fmt.Sprintf("/v1/collections/%s/query", collection))
	if err != nil {
		return nil, remote.ClassifyNetwork("query collection", err)
	}
	if resp.IsError() {
		return nil, statusError(resp, "query collection")
	}
	return out.Documents, nil
}

// Set replaces the document wholesale.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(fields).
		Put(fmt.Sprintf("/v1/collections/%s/documents/%s", collection, id))
	if err != nil {
		return remote.ClassifyNetwork("set document", err)
	}
	if resp.IsError() {
		return statusError(resp, "set document")
	}
	return nil
}

// Update merges partial fields; 404 maps to remote.ErrNotFound.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(partial).
		Patch(fmt.Sprintf("/v1/collections/%s/documents/%s", collection, id))
	if err != nil {
		return remote.ClassifyNetwork("update document", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return remote.ErrNotFound
	}
	if resp.IsError() {
		return statusError(resp, "update document")
	}
	return nil
}

// Delete removes the document; the service treats absent ids as success.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/v1/collections/%s/documents/%s", collection, id))
	if err != nil {
		return remote.ClassifyNetwork("delete document", err)
	}
	if resp.IsError() {
		return statusError(resp, "delete document")
	}
	return nil
}

// AtomicIncrement delegates the increment to the service so concurrent
// clients cannot lose updates.
func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&incrementRequest{Field: field, Delta: delta}).
		Post(fmt.Sprintf("/v1/collections/%s/documents/%s/increment", collection, id))
	if err != nil {
		return remote.ClassifyNetwork("increment field", err)
	}
	if resp.IsError() {
		return statusError(resp, "increment field")
	}
	return nil
}

// Batch accumulates operations and posts them as one atomic request.
func (s *Store) Batch() remote.Batch {
	return &batch{store: s}
}

func statusError(resp *resty.Response, operation string) error {
	return remote.ClassifyHTTP(resp.StatusCode(), string(resp.Body()), operation)
}

var _ remote.Store = (*Store)(nil)
