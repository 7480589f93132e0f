package provenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/formsync-server/database"
	"github.com/stacklok/formsync-server/internal/db/sqlc"
)

const contactURL = "https://publisher.example/jsonapi/webforms/contact"

// runStoreContract exercises the behaviour every Store implementation shares
//
//nolint:thelper
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(time.Hour)

	t.Run("record import inserts then updates in place", func(t *testing.T) {
		s := newStore(t)

		rec, err := s.RecordImport(ctx, "contact", contactURL, `{"v":1}`, first)
		require.NoError(t, err)
		assert.True(t, first.Equal(rec.CreatedAt))
		assert.True(t, first.Equal(rec.UpdatedAt))

		rec, err = s.RecordImport(ctx, "contact", contactURL, `{"v":2}`, second)
		require.NoError(t, err)
		assert.True(t, first.Equal(rec.CreatedAt), "createdAt must not move")
		assert.True(t, second.Equal(rec.UpdatedAt))
		assert.Equal(t, `{"v":2}`, rec.RawSource)

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("find by source url and local id", func(t *testing.T) {
		s := newStore(t)

		_, err := s.FindBySourceURL(ctx, contactURL)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.FindByLocalFormID(ctx, "contact")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.RecordImport(ctx, "contact", contactURL, `{}`, first)
		require.NoError(t, err)

		rec, err := s.FindBySourceURL(ctx, contactURL)
		require.NoError(t, err)
		assert.Equal(t, "contact", rec.LocalFormID)

		rec, err = s.FindByLocalFormID(ctx, "contact")
		require.NoError(t, err)
		assert.Equal(t, contactURL, rec.SourceURL)
	})

	t.Run("duplicates resolve to the lowest local id", func(t *testing.T) {
		s := newStore(t)

		for _, id := range []string{"contact_sync", "contact_00", "contact"} {
			_, err := s.RecordImport(ctx, id, contactURL, `{}`, first)
			require.NoError(t, err)
		}

		rec, err := s.FindBySourceURL(ctx, contactURL)
		require.NoError(t, err)
		assert.Equal(t, "contact", rec.LocalFormID)
	})

	t.Run("list all is ordered and indexable", func(t *testing.T) {
		s := newStore(t)

		_, err := s.RecordImport(ctx, "b", "https://x.example/b", `{}`, first)
		require.NoError(t, err)
		_, err = s.RecordImport(ctx, "a", "https://x.example/a", `{}`, first)
		require.NoError(t, err)

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "a", all[0].LocalFormID)
		assert.Equal(t, "b", all[1].LocalFormID)

		idx := IndexBySourceURL(all)
		assert.Equal(t, "b", idx["https://x.example/b"].LocalFormID)
		assert.NotContains(t, idx, "https://x.example/c")
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)

		_, err := s.RecordImport(ctx, "contact", contactURL, `{}`, first)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "contact"))
		require.NoError(t, s.Delete(ctx, "contact"))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		_, err = s.FindByLocalFormID(ctx, "contact")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	runStoreContract(t, func(*testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	rec, err := s.RecordImport(ctx, "contact", contactURL, `{}`, time.Now())
	require.NoError(t, err)

	rec.SourceURL = "mutated"
	stored, err := s.FindByLocalFormID(ctx, "contact")
	require.NoError(t, err)
	assert.Equal(t, contactURL, stored.SourceURL)
}

func TestDBStore(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		_, err := pool.Exec(context.Background(), "TRUNCATE webform_provenance")
		require.NoError(t, err)
		return NewDBStore(sqlc.New(pool))
	})
}

func TestIndexBySourceURLKeepsFirst(t *testing.T) {
	t.Parallel()

	idx := IndexBySourceURL([]*Record{
		{LocalFormID: "contact", SourceURL: contactURL},
		{LocalFormID: "contact_sync", SourceURL: contactURL},
	})
	require.Len(t, idx, 1)
	assert.Equal(t, "contact", idx[contactURL].LocalFormID)
}
