package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Visits is the repository for detailed visits: activity entries that
// carry a denormalized rink snapshot, photos, and a visibility flag. Every
// online save also upserts the snapshot into the shared rinks collection,
// so visit history stays frozen at save time while the rinks collection
// tracks the latest detail.
type Visits struct {
	d Deps
}

// NewVisits builds the visits repository over shared deps.
func NewVisits(d Deps) *Visits {
	d.defaults()
	d.Log = d.Log.With().Str("component", "visits").Logger()
	return &Visits{d: d}
}

// FindByID returns the visit or nil when absent.
func (r *Visits) FindByID(ctx context.Context, id string) (*types.DetailedVisit, error) {
	if id == "" {
		return nil, nil
	}
	key := cache.IDKey(types.FamilyVisit, id)
	if v, ok := r.d.Cache.Get(key); ok {
		if visit, ok := v.(types.DetailedVisit); ok {
			return &visit, nil
		}
	}
	doc, err := r.d.Store.Get(ctx, types.CollectionVisits, id)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return nil, nil
		}
		return nil, r.d.readErr(ctx, err, "visits.findById", id)
	}
	var visit types.DetailedVisit
	if err := types.FromObject(doc.ID, doc.Fields, &visit); err != nil {
		return nil, r.d.readErr(ctx, err, "visits.findById", id)
	}
	r.d.Cache.Put(key, visit)
	return &visit, nil
}

// FindByOwner returns the owner's visits, newest first.
func (r *Visits) FindByOwner(ctx context.Context, ownerID string) ([]types.DetailedVisit, error) {
	if ownerID == "" {
		return nil, nil
	}
	q := remote.Query{Filters: equals("ownerId", ownerID), OrderBy: newestFirst}
	return r.list(ctx, cache.OwnerKey(types.FamilyVisit, ownerID), q, "visits.findByOwner")
}

// FindByOwnerAndRink returns the owner's visits at one rink, newest first.
func (r *Visits) FindByOwnerAndRink(ctx context.Context, ownerID, rinkID string) ([]types.DetailedVisit, error) {
	if ownerID == "" || rinkID == "" {
		return nil, nil
	}
	q := remote.Query{Filters: equals("ownerId", ownerID, "rinkId", rinkID), OrderBy: newestFirst}
	return r.list(ctx, cache.OwnerRinkKey(types.FamilyVisit, ownerID, rinkID), q, "visits.findByOwnerAndRink")
}

// FindByRink returns the public visits at a rink, newest first. Private
// visits are filtered by the store, never fetched and dropped here.
func (r *Visits) FindByRink(ctx context.Context, rinkID string) ([]types.DetailedVisit, error) {
	if rinkID == "" {
		return nil, nil
	}
	q := remote.Query{
		Filters: []remote.Filter{
			{Field: "rinkId", Value: rinkID},
			{Field: "public", Value: true},
		},
		OrderBy: newestFirst,
	}
	return r.list(ctx, cache.RinkKey(types.FamilyVisit, rinkID), q, "visits.findByRink")
}

// Save validates and persists v, mirroring Activities.Save, plus the rink
// snapshot upsert on the online path.
func (r *Visits) Save(ctx context.Context, v *types.DetailedVisit) (*types.DetailedVisit, error) {
	if err := types.ValidateVisit(v); err != nil {
		return nil, err
	}
	now := r.d.stamp()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	if !r.d.online() {
		if v.ID != "" {
			return nil, fmt.Errorf("%w: offline edits are not queueable", types.ErrOffline)
		}
		if _, err := r.d.Queue.Enqueue(ctx, types.FamilyVisit, v.OwnerID, v.RinkID, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	if v.Rink.ID != "" {
		if err := r.upsertRink(ctx, &v.Rink); err != nil {
			return nil, err
		}
	}
	fields, err := types.ToObject(v)
	if err != nil {
		return nil, err
	}
	if v.ID == "" {
		id, err := r.d.Store.Add(ctx, types.CollectionVisits, fields)
		if err != nil {
			return nil, err
		}
		v.ID = id
	} else if err := r.d.Store.Set(ctx, types.CollectionVisits, v.ID, fields); err != nil {
		return nil, err
	}
	r.d.Cache.InvalidateEntity(types.FamilyVisit, v.ID, v.OwnerID, v.RinkID)
	r.d.Cache.Put(cache.IDKey(types.FamilyVisit, v.ID), *v)
	return v, nil
}

// Delete removes a stored visit. Online only.
func (r *Visits) Delete(ctx context.Context, v *types.DetailedVisit) error {
	if v == nil || v.ID == "" {
		return fmt.Errorf("%w: delete requires a stored entity", types.ErrInvalidEntity)
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	if err := r.d.Store.Delete(ctx, types.CollectionVisits, v.ID); err != nil {
		return err
	}
	r.d.Cache.InvalidateEntity(types.FamilyVisit, v.ID, v.OwnerID, v.RinkID)
	return nil
}

// SaveAll persists the batch atomically while online. Snapshot upserts
// ride in the same batch as the visits, so partial application is not
// possible. Offline, each new visit is queued in order.
func (r *Visits) SaveAll(ctx context.Context, visits []*types.DetailedVisit) error {
	if len(visits) == 0 {
		return nil
	}
	for _, v := range visits {
		if err := types.ValidateVisit(v); err != nil {
			return err
		}
	}
	now := r.d.stamp()
	for _, v := range visits {
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		v.UpdatedAt = now
	}

	if !r.d.online() {
		for _, v := range visits {
			if v.ID != "" {
				return fmt.Errorf("%w: offline edits are not queueable", types.ErrOffline)
			}
		}
		for _, v := range visits {
			if _, err := r.d.Queue.Enqueue(ctx, types.FamilyVisit, v.OwnerID, v.RinkID, v); err != nil {
				return err
			}
		}
		return nil
	}

	b := r.d.Store.Batch()
	seenRinks := make(map[string]struct{})
	for _, v := range visits {
		if v.Rink.ID != "" {
			if _, dup := seenRinks[v.Rink.ID]; !dup {
				seenRinks[v.Rink.ID] = struct{}{}
				fields, err := types.ToObject(&v.Rink)
				if err != nil {
					return err
				}
				b.Set(types.CollectionRinks, v.Rink.ID, fields)
			}
		}
		fields, err := types.ToObject(v)
		if err != nil {
			return err
		}
		if v.ID == "" {
			b.Add(types.CollectionVisits, fields)
		} else {
			b.Set(types.CollectionVisits, v.ID, fields)
		}
	}
	if err := b.Commit(ctx); err != nil {
		return err
	}
	for _, v := range visits {
		r.d.Cache.InvalidateEntity(types.FamilyVisit, v.ID, v.OwnerID, v.RinkID)
	}
	return nil
}

// DeleteAll removes the batch atomically. Online only.
func (r *Visits) DeleteAll(ctx context.Context, visits []*types.DetailedVisit) error {
	if len(visits) == 0 {
		return nil
	}
	for _, v := range visits {
		if v == nil || v.ID == "" {
			return fmt.Errorf("%w: delete requires a stored entity", types.ErrInvalidEntity)
		}
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	b := r.d.Store.Batch()
	for _, v := range visits {
		b.Delete(types.CollectionVisits, v.ID)
	}
	if err := b.Commit(ctx); err != nil {
		return err
	}
	for _, v := range visits {
		r.d.Cache.InvalidateEntity(types.FamilyVisit, v.ID, v.OwnerID, v.RinkID)
	}
	return nil
}

func (r *Visits) upsertRink(ctx context.Context, snapshot *types.RinkSnapshot) error {
	fields, err := types.ToObject(snapshot)
	if err != nil {
		return err
	}
	return r.d.Store.Set(ctx, types.CollectionRinks, snapshot.ID, fields)
}

// list is the shared cache-first read for visit lists.
func (r *Visits) list(ctx context.Context, key string, q remote.Query, op string) ([]types.DetailedVisit, error) {
	if v, ok := r.d.Cache.Get(key); ok {
		if visits, ok := v.([]types.DetailedVisit); ok {
			out := make([]types.DetailedVisit, len(visits))
			copy(out, visits)
			return out, nil
		}
	}
	docs, err := r.d.Store.Query(ctx, types.CollectionVisits, q)
	if err != nil {
		return nil, r.d.readErr(ctx, err, op, key)
	}
	visits := make([]types.DetailedVisit, 0, len(docs))
	for _, doc := range docs {
		var visit types.DetailedVisit
		if err := types.FromObject(doc.ID, doc.Fields, &visit); err != nil {
			r.d.degraded(err, op, key)
			continue
		}
		r.d.Cache.Put(cache.IDKey(types.FamilyVisit, visit.ID), visit)
		visits = append(visits, visit)
	}
	r.d.Cache.Put(key, visits)
	out := make([]types.DetailedVisit, len(visits))
	copy(out, visits)
	return out, nil
}
