package httpstore

import (
	"context"
	"net/http"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// BatchOp is one entry in a batch request. Kind is add, set, update or
// delete.
type BatchOp struct {
	Kind       string         `json:"kind"`
	Collection string         `json:"collection"`
	ID         string         `json:"id,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// BatchRequest is the wire shape for POST /v1/batch.
type BatchRequest struct {
	Ops []BatchOp `json:"ops"`
}

type batch struct {
	store *Store
	ops   []BatchOp
}

func (b *batch) Add(collection string, fields map[string]any) {
	b.ops = append(b.ops, BatchOp{Kind: "add", Collection: collection, Fields: fields})
}

func (b *batch) Set(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, BatchOp{Kind: "set", Collection: collection, ID: id, Fields: fields})
}

func (b *batch) Update(collection, id string, partial map[string]any) {
	b.ops = append(b.ops, BatchOp{Kind: "update", Collection: collection, ID: id, Fields: partial})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, BatchOp{Kind: "delete", Collection: collection, ID: id})
}

func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b.ops) == 0 {
		return nil
	}
	resp, err := b.store.client.R().
		SetContext(ctx).
		SetBody(&BatchRequest{Ops: b.ops}).
		Post("/v1/batch")
	if err != nil {
		return remote.ClassifyNetwork("commit batch", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return remote.ErrNotFound
	}
	if resp.IsError() {
		return statusError(resp, "commit batch")
	}
	b.ops = nil
	return nil
}
