package postgres

import (
	"context"

	"github.com/google/uuid"
)

type batchOp struct {
	kind       string
	collection string
	id         string
	fields     map[string]any
}

// batch accumulates operations and applies them inside one transaction.
type batch struct {
	store *Store
	ops   []batchOp
}

func (b *batch) Add(collection string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "add", collection: collection, fields: fields})
}

func (b *batch) Set(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "set", collection: collection, id: id, fields: fields})
}

func (b *batch) Update(collection, id string, partial map[string]any) {
	b.ops = append(b.ops, batchOp{kind: "update", collection: collection, id: id, fields: partial})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{kind: "delete", collection: collection, id: id})
}

func (b *batch) Commit(ctx context.Context) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, op := range b.ops {
		var opErr error
		switch op.kind {
		case "add":
			opErr = execSet(ctx, tx, op.collection, uuid.NewString(), op.fields)
		case "set":
			opErr = execSet(ctx, tx, op.collection, op.id, op.fields)
		case "update":
			opErr = execUpdate(ctx, tx, op.collection, op.id, op.fields)
		case "delete":
			opErr = execDelete(ctx, tx, op.collection, op.id)
		}
		if opErr != nil {
			_ = tx.Rollback()
			return opErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	b.ops = nil
	return nil
}
