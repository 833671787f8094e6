package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/mobilia/backend/internal/application/inventory"
	apptrade "github.com/mobilia/backend/internal/application/trade"
	"github.com/mobilia/backend/internal/domain/inventory"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	t.Run("commits every repository write", func(t *testing.T) {
		order := newTestOrder(t, workspaceID, "CMD-2026-0200")
		err := scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
			if err := repos.Payments().Create(ctx, newTestPayment(workspaceID, order.ID, "40", 0)); err != nil {
				return err
			}
			return repos.Orders().ApplyPaymentDelta(ctx, workspaceID, order.ID, dec("40"))
		})
		require.NoError(t, err)

		found, err := NewGormOrderRepository(db).FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.AmountPaid.Equal(dec("40")))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		order := newTestOrder(t, workspaceID, "CMD-2026-0201")
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormOrderRepository(db).FindByIDForWorkspace(ctx, workspaceID, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inventory scope shares the ledger", func(t *testing.T) {
		product, location := uuid.New(), uuid.New()
		err := scope.Inventory().Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			return repos.StockLedger().Append(ctx,
				movement(t, workspaceID, product, location, inventory.MovementTypeIn, "2"))
		})
		require.NoError(t, err)

		level, err := NewGormStockLedger(db).FindLevel(ctx, workspaceID, product, location)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(dec("2")))
	})
}
