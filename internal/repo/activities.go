package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Activities is the repository for plain activity log entries.
type Activities struct {
	d Deps
}

// NewActivities builds the activities repository over shared deps.
func NewActivities(d Deps) *Activities {
	d.defaults()
	d.Log = d.Log.With().Str("component", "activities").Logger()
	return &Activities{d: d}
}

// FindByID returns the record or nil when absent. Remote failures degrade
// to nil; only a canceled context surfaces as an error.
func (r *Activities) FindByID(ctx context.Context, id string) (*types.ActivityRecord, error) {
	if id == "" {
		return nil, nil
	}
	key := cache.IDKey(types.FamilyActivity, id)
	if v, ok := r.d.Cache.Get(key); ok {
		if rec, ok := v.(types.ActivityRecord); ok {
			return &rec, nil
		}
	}
	doc, err := r.d.Store.Get(ctx, types.CollectionActivities, id)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return nil, nil
		}
		return nil, r.d.readErr(ctx, err, "activities.findById", id)
	}
	var rec types.ActivityRecord
	if err := types.FromObject(doc.ID, doc.Fields, &rec); err != nil {
		return nil, r.d.readErr(ctx, err, "activities.findById", id)
	}
	r.d.Cache.Put(key, rec)
	return &rec, nil
}

// FindByOwner returns the owner's activities, newest first.
func (r *Activities) FindByOwner(ctx context.Context, ownerID string) ([]types.ActivityRecord, error) {
	if ownerID == "" {
		return nil, nil
	}
	q := remote.Query{Filters: equals("ownerId", ownerID), OrderBy: newestFirst}
	return r.list(ctx, cache.OwnerKey(types.FamilyActivity, ownerID), q, "activities.findByOwner")
}

// FindByOwnerAndRink returns the owner's activities at one rink, newest
// first.
func (r *Activities) FindByOwnerAndRink(ctx context.Context, ownerID, rinkID string) ([]types.ActivityRecord, error) {
	if ownerID == "" || rinkID == "" {
		return nil, nil
	}
	q := remote.Query{Filters: equals("ownerId", ownerID, "rinkId", rinkID), OrderBy: newestFirst}
	return r.list(ctx, cache.OwnerRinkKey(types.FamilyActivity, ownerID, rinkID), q, "activities.findByOwnerAndRink")
}

// Save validates and persists a. Online it writes through to the remote
// store (create when a has no id, full replace otherwise), caches the
// result, and invalidates the owner and rink scoped lists. Offline a new
// record is queued durably and returned without an id; offline edits to an
// already-stored record cannot be queued and fail with ErrOffline.
func (r *Activities) Save(ctx context.Context, a *types.ActivityRecord) (*types.ActivityRecord, error) {
	if err := types.ValidateActivity(a); err != nil {
		return nil, err
	}
	now := r.d.stamp()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	if !r.d.online() {
		if a.ID != "" {
			return nil, fmt.Errorf("%w: offline edits are not queueable", types.ErrOffline)
		}
		if _, err := r.d.Queue.Enqueue(ctx, types.FamilyActivity, a.OwnerID, a.RinkID, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	fields, err := types.ToObject(a)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		id, err := r.d.Store.Add(ctx, types.CollectionActivities, fields)
		if err != nil {
			return nil, err
		}
		a.ID = id
	} else if err := r.d.Store.Set(ctx, types.CollectionActivities, a.ID, fields); err != nil {
		return nil, err
	}
	r.d.Cache.InvalidateEntity(types.FamilyActivity, a.ID, a.OwnerID, a.RinkID)
	r.d.Cache.Put(cache.IDKey(types.FamilyActivity, a.ID), *a)
	return a, nil
}

// Delete removes a stored record. There is no offline shape for a delete,
// so it fails with ErrOffline when disconnected.
func (r *Activities) Delete(ctx context.Context, a *types.ActivityRecord) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("%w: delete requires a stored entity", types.ErrInvalidEntity)
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	if err := r.d.Store.Delete(ctx, types.CollectionActivities, a.ID); err != nil {
		return err
	}
	r.d.Cache.InvalidateEntity(types.FamilyActivity, a.ID, a.OwnerID, a.RinkID)
	return nil
}

// SaveAll persists the batch atomically while online: every record lands
// or none does. Records without ids stay id-less until a later read, the
// store assigns their ids inside the batch. Offline, each new record is
// queued in order.
func (r *Activities) SaveAll(ctx context.Context, recs []*types.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for _, a := range recs {
		if err := types.ValidateActivity(a); err != nil {
			return err
		}
	}
	now := r.d.stamp()
	for _, a := range recs {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
	}

	if !r.d.online() {
		for _, a := range recs {
			if a.ID != "" {
				return fmt.Errorf("%w: offline edits are not queueable", types.ErrOffline)
			}
		}
		for _, a := range recs {
			if _, err := r.d.Queue.Enqueue(ctx, types.FamilyActivity, a.OwnerID, a.RinkID, a); err != nil {
				return err
			}
		}
		return nil
	}

	b := r.d.Store.Batch()
	for _, a := range recs {
		fields, err := types.ToObject(a)
		if err != nil {
			return err
		}
		if a.ID == "" {
			b.Add(types.CollectionActivities, fields)
		} else {
			b.Set(types.CollectionActivities, a.ID, fields)
		}
	}
	if err := b.Commit(ctx); err != nil {
		return err
	}
	for _, a := range recs {
		r.d.Cache.InvalidateEntity(types.FamilyActivity, a.ID, a.OwnerID, a.RinkID)
	}
	return nil
}

// DeleteAll removes the batch atomically. Online only.
func (r *Activities) DeleteAll(ctx context.Context, recs []*types.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for _, a := range recs {
		if a == nil || a.ID == "" {
			return fmt.Errorf("%w: delete requires a stored entity", types.ErrInvalidEntity)
		}
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	b := r.d.Store.Batch()
	for _, a := range recs {
		b.Delete(types.CollectionActivities, a.ID)
	}
	if err := b.Commit(ctx); err != nil {
		return err
	}
	for _, a := range recs {
		r.d.Cache.InvalidateEntity(types.FamilyActivity, a.ID, a.OwnerID, a.RinkID)
	}
	return nil
}

// list is the shared cache-first read for activity lists.
func (r *Activities) list(ctx context.Context, key string, q remote.Query, op string) ([]types.ActivityRecord, error) {
	if v, ok := r.d.Cache.Get(key); ok {
		if recs, ok := v.([]types.ActivityRecord); ok {
			out := make([]types.ActivityRecord, len(recs))
			copy(out, recs)
			return out, nil
		}
	}
	docs, err := r.d.Store.Query(ctx, types.CollectionActivities, q)
	if err != nil {
		return nil, r.d.readErr(ctx, err, op, key)
	}
	recs := make([]types.ActivityRecord, 0, len(docs))
	for _, doc := range docs {
		var rec types.ActivityRecord
		if err := types.FromObject(doc.ID, doc.Fields, &rec); err != nil {
			r.d.degraded(err, op, key)
			continue
		}
		r.d.Cache.Put(cache.IDKey(types.FamilyActivity, rec.ID), rec)
		recs = append(recs, rec)
	}
	r.d.Cache.Put(key, recs)
	out := make([]types.ActivityRecord, len(recs))
	copy(out, recs)
	return out, nil
}
