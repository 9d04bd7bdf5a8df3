package repo

import (
	"context"
	"errors"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Links is the repository for owner/rink relationship records. Links are
// created implicitly by the first visit increment, keyed by the
// deterministic composite id, and never deleted by normal flow. All link
// mutations need the remote store: there is no offline queue shape for
// them, so they fail with ErrOffline when disconnected.
type Links struct {
	d Deps
}

// NewLinks builds the links repository over shared deps.
func NewLinks(d Deps) *Links {
	d.defaults()
	d.Log = d.Log.With().Str("component", "links").Logger()
	return &Links{d: d}
}

// FindByOwner returns every link for the owner, most recently updated
// first.
func (r *Links) FindByOwner(ctx context.Context, ownerID string) ([]types.RinkLink, error) {
	if ownerID == "" {
		return nil, nil
	}
	key := cache.OwnerKey(types.FamilyLink, ownerID)
	if v, ok := r.d.Cache.Get(key); ok {
		if links, ok := v.([]types.RinkLink); ok {
			out := make([]types.RinkLink, len(links))
			copy(out, links)
			return out, nil
		}
	}
	q := remote.Query{
		Filters: equals("ownerId", ownerID),
		OrderBy: remote.OrderBy{Field: "updatedAt", Desc: true},
	}
	docs, err := r.d.Store.Query(ctx, types.CollectionLinks, q)
	if err != nil {
		return nil, r.d.readErr(ctx, err, "links.findByOwner", key)
	}
	links := make([]types.RinkLink, 0, len(docs))
	for _, doc := range docs {
		var l types.RinkLink
		if err := types.FromObject(doc.ID, doc.Fields, &l); err != nil {
			r.d.degraded(err, "links.findByOwner", key)
			continue
		}
		r.d.Cache.Put(cache.IDKey(types.FamilyLink, l.ID), l)
		links = append(links, l)
	}
	r.d.Cache.Put(key, links)
	out := make([]types.RinkLink, len(links))
	copy(out, links)
	return out, nil
}

// FindByOwnerAndRink returns the single link for the pair, or nil when the
// owner has never interacted with the rink. The composite key makes this a
// direct get, not a query.
func (r *Links) FindByOwnerAndRink(ctx context.Context, ownerID, rinkID string) (*types.RinkLink, error) {
	if err := types.ValidateLinkKey(ownerID, rinkID); err != nil {
		return nil, nil
	}
	id := types.LinkID(ownerID, rinkID)
	key := cache.IDKey(types.FamilyLink, id)
	if v, ok := r.d.Cache.Get(key); ok {
		if l, ok := v.(types.RinkLink); ok {
			return &l, nil
		}
	}
	doc, err := r.d.Store.Get(ctx, types.CollectionLinks, id)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return nil, nil
		}
		return nil, r.d.readErr(ctx, err, "links.findByOwnerAndRink", id)
	}
	var l types.RinkLink
	if err := types.FromObject(doc.ID, doc.Fields, &l); err != nil {
		return nil, r.d.readErr(ctx, err, "links.findByOwnerAndRink", id)
	}
	r.d.Cache.Put(key, l)
	return &l, nil
}

// IncrementVisit records one visit: the link's visitCount goes up by one
// through the store's atomic increment, creating the link when it does not
// exist yet. A supplied rink snapshot is upserted into the shared rinks
// collection first. verified only ever turns hasVerifiedVisit on; the flag
// is sticky and an unverified later visit never clears it.
func (r *Links) IncrementVisit(ctx context.Context, ownerID, rinkID string, snapshot *types.RinkSnapshot, verified bool) error {
	if err := types.ValidateLinkKey(ownerID, rinkID); err != nil {
		return err
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	if snapshot != nil && snapshot.ID != "" {
		if err := r.upsertRink(ctx, snapshot); err != nil {
			return err
		}
	}

	id := types.LinkID(ownerID, rinkID)
	if err := r.d.Store.AtomicIncrement(ctx, types.CollectionLinks, id, "visitCount", 1); err != nil {
		return err
	}
	now := r.d.stamp()
	partial := map[string]any{
		"ownerId":     ownerID,
		"rinkId":      rinkID,
		"lastVisitAt": now.Format(time.RFC3339Nano),
		"updatedAt":   now.Format(time.RFC3339Nano),
	}
	if verified {
		partial["hasVerifiedVisit"] = true
	}
	if err := r.d.Store.Update(ctx, types.CollectionLinks, id, partial); err != nil {
		return err
	}
	r.d.Cache.InvalidateEntity(types.FamilyLink, id, ownerID, rinkID)
	r.d.Log.Debug().
		Str("linkId", id).
		Bool("verified", verified).
		Msg("visit recorded")
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value. A
// missing link is created with the flag on, so favoriting a never-visited
// rink works.
func (r *Links) ToggleFavorite(ctx context.Context, ownerID, rinkID string) (bool, error) {
	if err := types.ValidateLinkKey(ownerID, rinkID); err != nil {
		return false, err
	}
	if !r.d.online() {
		return false, types.ErrOffline
	}
	id := types.LinkID(ownerID, rinkID)

	next := true
	doc, err := r.d.Store.Get(ctx, types.CollectionLinks, id)
	switch {
	case err == nil:
		if cur, ok := doc.Fields["isFavorite"].(bool); ok {
			next = !cur
		}
	case errors.Is(err, remote.ErrNotFound):
		// Zero-delta increment creates the document without touching a
		// concurrently racing visit count.
		if err := r.d.Store.AtomicIncrement(ctx, types.CollectionLinks, id, "visitCount", 0); err != nil {
			return false, err
		}
	default:
		return false, err
	}

	partial := map[string]any{
		"ownerId":    ownerID,
		"rinkId":     rinkID,
		"isFavorite": next,
		"updatedAt":  r.d.stamp().Format(time.RFC3339Nano),
	}
	if err := r.d.Store.Update(ctx, types.CollectionLinks, id, partial); err != nil {
		return false, err
	}
	r.d.Cache.InvalidateEntity(types.FamilyLink, id, ownerID, rinkID)
	return next, nil
}

// UpdateNotes replaces the owner's notes for the rink, creating the link
// when absent.
func (r *Links) UpdateNotes(ctx context.Context, ownerID, rinkID, notes string) error {
	if err := types.ValidateLinkKey(ownerID, rinkID); err != nil {
		return err
	}
	if !r.d.online() {
		return types.ErrOffline
	}
	id := types.LinkID(ownerID, rinkID)
	if err := r.d.Store.AtomicIncrement(ctx, types.CollectionLinks, id, "visitCount", 0); err != nil {
		return err
	}
	partial := map[string]any{
		"ownerId":   ownerID,
		"rinkId":    rinkID,
		"notes":     notes,
		"updatedAt": r.d.stamp().Format(time.RFC3339Nano),
	}
	if err := r.d.Store.Update(ctx, types.CollectionLinks, id, partial); err != nil {
		return err
	}
	r.d.Cache.InvalidateEntity(types.FamilyLink, id, ownerID, rinkID)
	return nil
}

// upsertRink writes the denormalized rink snapshot into the shared rinks
// collection under the rink's own id.
func (r *Links) upsertRink(ctx context.Context, snapshot *types.RinkSnapshot) error {
	fields, err := types.ToObject(snapshot)
	if err != nil {
		return err
	}
	return r.d.Store.Set(ctx, types.CollectionRinks, snapshot.ID, fields)
}
