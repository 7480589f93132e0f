package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/stacklok/formsync-server/database"
	"github.com/stacklok/formsync-server/internal/db/sqlc"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/provenance"
)

func TestPgxUnitOfWork_Import(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	clk := testingclock.NewFakePassiveClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	u := formURL(publisherA, "contact")
	client := fakeClient{u: formDoc(publisherA, "contact", "Contact")}
	im := New(client, NewPgxUnitOfWork(pool), WithClock(clk))

	first, err := im.Import(ctx, u)
	require.NoError(t, err)
	assert.True(t, first.Created)

	clk.SetTime(clk.Now().Add(time.Minute))
	second, err := im.Import(ctx, u)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "contact", second.Form.ID)
	assert.True(t, first.Record.CreatedAt.Equal(second.Record.CreatedAt))
	assert.True(t, clk.Now().Equal(second.Record.UpdatedAt))

	q := sqlc.New(pool)
	stored, err := forms.NewDBStorage(q).Load(ctx, "contact")
	require.NoError(t, err)
	assert.Equal(t, first.Form.UUID, stored.UUID)

	rec, err := provenance.NewDBStore(q).FindBySourceURL(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "contact", rec.LocalFormID)
}

func TestPgxUnitOfWork_RollsBackOnError(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	uow := NewPgxUnitOfWork(pool)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	err := uow.Do(ctx, func(ctx context.Context, fs forms.Storage, _ provenance.Store) error {
		f := forms.New("contact")
		f.UpdatedAt = now
		require.NoError(t, fs.Save(ctx, f))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = forms.NewDBStorage(sqlc.New(pool)).Load(ctx, "contact")
	require.ErrorIs(t, err, forms.ErrNotFound)
}
