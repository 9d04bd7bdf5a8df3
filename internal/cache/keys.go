package cache

import "github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"

// Key layout. Owner-and-rink keys live under the owner prefix, so clearing
// an owner scope also clears every (owner,rink) list for that owner.
//
//	<family>/id/<id>
//	<family>/owner/<ownerId>
//	<family>/owner/<ownerId>/rink/<rinkId>
//	<family>/rink/<rinkId>

// IDKey is the cache key for a single entity.
func IDKey(f types.Family, id string) string {
	return string(f) + "/id/" + id
}

// OwnerKey is the cache key for an owner-scoped list.
func OwnerKey(f types.Family, ownerID string) string {
	return string(f) + "/owner/" + ownerID
}

// OwnerRinkKey is the cache key for an (owner,rink)-scoped list.
func OwnerRinkKey(f types.Family, ownerID, rinkID string) string {
	return string(f) + "/owner/" + ownerID + "/rink/" + rinkID
}

// RinkKey is the cache key for a rink-scoped list.
func RinkKey(f types.Family, rinkID string) string {
	return string(f) + "/rink/" + rinkID
}

type scope int

const (
	scopeID scope = iota
	scopeOwner
	scopeRink
)

// invalidation lists, per family, every cache namespace a write can dirty.
// Over-clearing is fine; under-clearing is a bug. Links and visits also
// appear in rink-scoped lists, activities do not.
var invalidation = map[types.Family][]scope{
	types.FamilyActivity: {scopeID, scopeOwner},
	types.FamilyLink:     {scopeID, scopeOwner, scopeRink},
	types.FamilyVisit:    {scopeID, scopeOwner, scopeRink},
}

// InvalidateEntity clears every namespace the invalidation table names for
// the family, scoped to the given identifiers. Empty identifiers skip their
// scope (a queued create has no id yet).
func (c *Cache) InvalidateEntity(f types.Family, id, ownerID, rinkID string) {
	for _, s := range invalidation[f] {
		switch s {
		case scopeID:
			if id != "" {
				c.Delete(IDKey(f, id))
			}
		case scopeOwner:
			if ownerID != "" {
				c.InvalidatePrefix(OwnerKey(f, ownerID))
			}
		case scopeRink:
			if rinkID != "" {
				c.InvalidatePrefix(RinkKey(f, rinkID))
			}
		}
	}
}
