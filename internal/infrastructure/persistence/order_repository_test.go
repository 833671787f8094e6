package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	order := newTestOrder(t, workspaceID, "CMD-2026-0001")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("round-trips totals and ordered items", func(t *testing.T) {
		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)

		assert.Equal(t, "CMD-2026-0001", found.Number)
		assert.Equal(t, trade.OrderStatusDraft, found.Status)
		assert.True(t, found.TotalTTC.Equal(dec("240")), "total_ttc = %s", found.TotalTTC)
		assert.True(t, found.RemainingAmount.Equal(dec("240")))
		require.Len(t, found.Items, 2)
		assert.Equal(t, 1, found.Items[0].Position)
		assert.NotNil(t, found.Items[0].ProductID)
		assert.Nil(t, found.Items[1].ProductID)
		assert.Equal(t, "Livraison", found.Items[1].Description)
	})

	t.Run("other workspace cannot see the order", func(t *testing.T) {
		_, err := repo.FindByIDForWorkspace(ctx, uuid.New(), order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save replaces items", func(t *testing.T) {
		table := uuid.New()
		require.NoError(t, order.ReplaceItems([]trade.OrderItemInput{
			{ProductID: &table, Quantity: dec("1"), UnitPriceHT: dec("500"), TaxRate: dec("20")},
		}))
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.True(t, found.TotalTTC.Equal(dec("600")))
	})
}

func TestGormOrderRepository_ApplyPaymentDelta(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	order := newTestOrder(t, workspaceID, "CMD-2026-0002")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("adds to amount paid and derives remaining", func(t *testing.T) {
		require.NoError(t, repo.ApplyPaymentDelta(ctx, workspaceID, order.ID, dec("100")))
		require.NoError(t, repo.ApplyPaymentDelta(ctx, workspaceID, order.ID, dec("40.50")))

		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.AmountPaid.Equal(dec("140.50")), "amount_paid = %s", found.AmountPaid)
		assert.True(t, found.RemainingAmount.Equal(dec("99.50")), "remaining = %s", found.RemainingAmount)
	})

	t.Run("settles at the total", func(t *testing.T) {
		require.NoError(t, repo.ApplyPaymentDelta(ctx, workspaceID, order.ID, dec("99.50")))

		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.AmountPaid.Equal(dec("240")))
		assert.True(t, found.RemainingAmount.IsZero())
	})

	t.Run("settled order refuses further increments", func(t *testing.T) {
		for _, delta := range []string{"0.02", "0.02", "5"} {
			err := repo.ApplyPaymentDelta(ctx, workspaceID, order.ID, dec(delta))
			assert.True(t, shared.HasCode(err, shared.CodePaymentExceedsBalance), "delta %s", delta)
		}

		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.AmountPaid.Equal(dec("240")))
	})

	t.Run("negative delta reverses a payment", func(t *testing.T) {
		require.NoError(t, repo.ApplyPaymentDelta(ctx, workspaceID, order.ID, dec("-99.50")))

		found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.AmountPaid.Equal(dec("140.50")))
		assert.True(t, found.RemainingAmount.Equal(dec("99.50")))
	})

	t.Run("unknown order", func(t *testing.T) {
		err := repo.ApplyPaymentDelta(ctx, workspaceID, uuid.New(), dec("1"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_ApplyPaymentDeltaIsSingleUpdate(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(gormDB)

	workspaceID, orderID := uuid.New(), uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "amount_paid"=amount_paid + $1,"remaining_amount"=CASE WHEN total_ttc - (amount_paid + $2) < 0 THEN 0 ELSE total_ttc - (amount_paid + $3) END,"updated_at"=$4 WHERE (workspace_id = $5 AND id = $6) AND amount_paid + $7 <= total_ttc + $8`)).
		WithArgs(dec("25"), dec("25"), dec("25"), sqlmock.AnyArg(), workspaceID, orderID, dec("25"), dec("0.01")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ApplyPaymentDelta(context.Background(), workspaceID, orderID, dec("25")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_FindByIDForUpdateLocksRow(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(gormDB)

	workspaceID, orderID := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE workspace_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "number", "status"}).
			AddRow(orderID.String(), workspaceID.String(), "CMD-2026-0003", "confirme"))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = \$1 ORDER BY position ASC`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	order, err := repo.FindByIDForUpdate(context.Background(), workspaceID, orderID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_ListAndCount(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	first := newTestOrder(t, workspaceID, "CMD-2026-0010")
	require.NoError(t, repo.Save(ctx, first))
	second := newTestOrder(t, workspaceID, "CMD-2026-0011")
	require.NoError(t, second.TransitionTo(trade.OrderStatusConfirmed))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, uuid.New(), "CMD-2026-0012")))

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(trade.OrderStatusConfirmed)

		orders, err := repo.FindAllForWorkspace(ctx, workspaceID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "CMD-2026-0011", orders[0].Number)

		count, err := repo.CountForWorkspace(ctx, workspaceID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("searches by number and sorts", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "2026-001"
		filter.OrderBy = "number"
		filter.OrderDir = "asc"

		orders, err := repo.FindAllForWorkspace(ctx, workspaceID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "CMD-2026-0010", orders[0].Number)
	})
}

func TestGormOrderRepository_UpdateStatusAndDelete(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	order := newTestOrder(t, workspaceID, "CMD-2026-0020")
	require.NoError(t, repo.Save(ctx, order))

	require.NoError(t, order.TransitionTo(trade.OrderStatusConfirmed))
	require.NoError(t, repo.UpdateStatus(ctx, order))

	found, err := repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, found.Status)
	require.NotNil(t, found.StatusChangedAt)
	assert.WithinDuration(t, time.Now(), *found.StatusChangedAt, time.Minute)

	require.NoError(t, repo.Delete(ctx, workspaceID, order.ID))
	_, err = repo.FindByIDForWorkspace(ctx, workspaceID, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var items int64
	require.NoError(t, db.Table("order_items").Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, workspaceID, order.ID), shared.ErrNotFound)
}
