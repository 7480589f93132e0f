package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/formsync-server/internal/db/sqlc"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/provenance"
)

// UnitOfWork runs the storage part of an import. Implementations backed by a
// transactional database make the form upsert and the provenance write atomic.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, fs forms.Storage, ps provenance.Store) error) error
}

// SequentialUnitOfWork calls fn directly against the given stores. A failure
// after the form was saved leaves the saved form in place.
type SequentialUnitOfWork struct {
	Forms      forms.Storage
	Provenance provenance.Store
}

var _ UnitOfWork = (*SequentialUnitOfWork)(nil)

// Do implements UnitOfWork
func (u *SequentialUnitOfWork) Do(
	ctx context.Context,
	fn func(ctx context.Context, fs forms.Storage, ps provenance.Store) error,
) error {
	return fn(ctx, u.Forms, u.Provenance)
}

// PgxUnitOfWork runs fn in a single Postgres transaction
type PgxUnitOfWork struct {
	pool *pgxpool.Pool
}

var _ UnitOfWork = (*PgxUnitOfWork)(nil)

// NewPgxUnitOfWork creates a transactional unit of work over pool
func NewPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{pool: pool}
}

// Do implements UnitOfWork
func (u *PgxUnitOfWork) Do(
	ctx context.Context,
	fn func(ctx context.Context, fs forms.Storage, ps provenance.Store) error,
) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to roll back import transaction", "error", err)
		}
	}()

	q := sqlc.New(u.pool).WithTx(tx)
	if err := fn(ctx, forms.NewDBStorage(q), provenance.NewDBStore(q)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
