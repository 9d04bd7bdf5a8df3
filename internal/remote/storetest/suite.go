// Package storetest exercises a remote.Store implementation against the
// contract every adapter must honor. Implementations provide a clean,
// isolated store from makeStore.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Run drives the compliance suite. Every subtest works in its own
// collection so runs can share one backing database.
func Run(t *testing.T, makeStore func(t *testing.T) remote.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	freshColl := func() string { return "compliance-" + uuid.NewString() }

	t.Run("AddAssignsIDAndGetRoundTrips", func(t *testing.T) {
		coll := freshColl()
		id, err := s.Add(ctx, coll, map[string]any{"ownerId": "u1", "rinkId": "r1", "durationMinutes": float64(45)})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := s.Get(ctx, coll, id)
		require.NoError(t, err)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "u1", doc.Fields["ownerId"])
		assert.Equal(t, float64(45), numeric(t, doc.Fields["durationMinutes"]))
	})

	t.Run("GetMissingIsErrNotFound", func(t *testing.T) {
		_, err := s.Get(ctx, freshColl(), "no-such-doc")
		require.ErrorIs(t, err, remote.ErrNotFound)
	})

	t.Run("UpdateMergesAndRequiresExistence", func(t *testing.T) {
		coll := freshColl()
		id, err := s.Add(ctx, coll, map[string]any{"ownerId": "u1", "rinkId": "r1"})
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, coll, id, map[string]any{"notes": "great ice"}))
		doc, err := s.Get(ctx, coll, id)
		require.NoError(t, err)
		assert.Equal(t, "great ice", doc.Fields["notes"])
		assert.Equal(t, "u1", doc.Fields["ownerId"], "update must merge, not replace")

		err = s.Update(ctx, coll, "no-such-doc", map[string]any{"x": float64(1)})
		require.ErrorIs(t, err, remote.ErrNotFound)
	})

	t.Run("SetReplacesWholeDocument", func(t *testing.T) {
		coll := freshColl()
		require.NoError(t, s.Set(ctx, coll, "d1", map[string]any{"ownerId": "u1", "notes": "stale"}))
		require.NoError(t, s.Set(ctx, coll, "d1", map[string]any{"ownerId": "u1", "rinkId": "r2"}))

		doc, err := s.Get(ctx, coll, "d1")
		require.NoError(t, err)
		assert.NotContains(t, doc.Fields, "notes")
		assert.Equal(t, "r2", doc.Fields["rinkId"])
	})

	t.Run("QueryFiltersOrdersAndLimits", func(t *testing.T) {
		coll := freshColl()
		for _, rec := range []map[string]any{
			{"ownerId": "u1", "rinkId": "r1", "occurredAt": "2026-01-03T10:00:00Z", "durationMinutes": float64(30)},
			{"ownerId": "u1", "rinkId": "r2", "occurredAt": "2026-01-01T10:00:00Z", "durationMinutes": float64(60)},
			{"ownerId": "u1", "rinkId": "r1", "occurredAt": "2026-01-02T10:00:00Z", "durationMinutes": float64(90)},
			{"ownerId": "u2", "rinkId": "r1", "occurredAt": "2026-01-04T10:00:00Z", "durationMinutes": float64(15)},
		} {
			_, err := s.Add(ctx, coll, rec)
			require.NoError(t, err)
		}

		docs, err := s.Query(ctx, coll, remote.Query{
			Filters: []remote.Filter{{Field: "ownerId", Value: "u1"}},
			OrderBy: remote.OrderBy{Field: "occurredAt", Desc: true},
		})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "2026-01-03T10:00:00Z", docs[0].Fields["occurredAt"])
		assert.Equal(t, "2026-01-01T10:00:00Z", docs[2].Fields["occurredAt"])

		docs, err = s.Query(ctx, coll, remote.Query{
			Filters: []remote.Filter{{Field: "ownerId", Value: "u1"}, {Field: "rinkId", Value: "r1"}},
			OrderBy: remote.OrderBy{Field: "durationMinutes"},
			Limit:   1,
		})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, float64(30), numeric(t, docs[0].Fields["durationMinutes"]))

		docs, err = s.Query(ctx, coll, remote.Query{Filters: []remote.Filter{{Field: "ownerId", Value: "nobody"}}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		coll := freshColl()
		id, err := s.Add(ctx, coll, map[string]any{"ownerId": "u1"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, coll, id))
		_, err = s.Get(ctx, coll, id)
		require.ErrorIs(t, err, remote.ErrNotFound)
		require.NoError(t, s.Delete(ctx, coll, id), "deleting an absent document is not an error")
	})

	t.Run("AtomicIncrementUpserts", func(t *testing.T) {
		coll := freshColl()
		linkID := "u1_r1"

		require.NoError(t, s.AtomicIncrement(ctx, coll, linkID, "visitCount", 1))
		doc, err := s.Get(ctx, coll, linkID)
		require.NoError(t, err, "missing document must be created with field=delta")
		assert.Equal(t, float64(1), numeric(t, doc.Fields["visitCount"]))

		require.NoError(t, s.AtomicIncrement(ctx, coll, linkID, "visitCount", 2))
		doc, err = s.Get(ctx, coll, linkID)
		require.NoError(t, err)
		assert.Equal(t, float64(3), numeric(t, doc.Fields["visitCount"]))
	})

	t.Run("ConcurrentIncrementsLoseNothing", func(t *testing.T) {
		coll := freshColl()
		concID := "u9_r9"

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.AtomicIncrement(ctx, coll, concID, "visitCount", 1)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		doc, err := s.Get(ctx, coll, concID)
		require.NoError(t, err)
		assert.Equal(t, float64(8), numeric(t, doc.Fields["visitCount"]))
	})

	t.Run("BatchAppliesAtomically", func(t *testing.T) {
		coll := freshColl()
		require.NoError(t, s.Set(ctx, coll, "keep", map[string]any{"n": float64(1)}))

		b := s.Batch()
		b.Set(coll, "b1", map[string]any{"ownerId": "u1"})
		b.Add(coll, map[string]any{"ownerId": "u1"})
		b.Update(coll, "keep", map[string]any{"n": float64(2)})
		b.Delete(coll, "absent-is-fine")
		require.NoError(t, b.Commit(ctx))

		doc, err := s.Get(ctx, coll, "keep")
		require.NoError(t, err)
		assert.Equal(t, float64(2), numeric(t, doc.Fields["n"]))
	})

	t.Run("FailedBatchLeaksNothing", func(t *testing.T) {
		coll := freshColl()
		bad := s.Batch()
		bad.Set(coll, "should-not-appear", map[string]any{"x": float64(1)})
		bad.Update(coll, "missing-doc", map[string]any{"x": float64(1)})
		require.Error(t, bad.Commit(ctx), "batch with a failing update must not commit")

		_, err := s.Get(ctx, coll, "should-not-appear")
		require.ErrorIs(t, err, remote.ErrNotFound)
	})
}

func numeric(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		t.Fatalf("value %v (%T) is not numeric", v, v)
		return 0
	}
}
