package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionManager_RunInTx(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tx := NewGormTransactionManager(db)
	orders := NewGormPurchaseOrderRepository(db)
	expenses := NewGormExpenseRepository(db)

	order := newOrder(t, uuid.New(), 1, "Green Valley Feeds", "10.00")
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, expenses.InsertBatch(ctx, []*finance.Expense{
		newExpense(t, order, 1, "11.00"),
		newExpense(t, order, 2, "11.00"),
	}))

	t.Run("error rolls back every repository", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.RunInTx(ctx, func(txCtx context.Context) error {
			n, err := expenses.DeleteByPurchaseOrder(txCtx, order.FirmID, order.ID, finance.UnsettledStatuses)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
			require.NoError(t, orders.DeleteWithLock(txCtx, order, procurement.StatusDraft))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = orders.FindByIDForFirm(ctx, order.FirmID, order.ID)
		require.NoError(t, err)
		kept, err := expenses.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
		require.NoError(t, err)
		assert.Len(t, kept, 2)
	})

	t.Run("failed versioned write rolls back earlier statements", func(t *testing.T) {
		stale := *order
		stale.Version = 9
		err := tx.RunInTx(ctx, func(txCtx context.Context) error {
			if _, err := expenses.DeleteByPurchaseOrder(txCtx, order.FirmID, order.ID, finance.UnsettledStatuses); err != nil {
				return err
			}
			return orders.DeleteWithLock(txCtx, &stale, procurement.StatusDraft)
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		kept, err := expenses.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
		require.NoError(t, err)
		assert.Len(t, kept, 2)
	})

	t.Run("nil commits", func(t *testing.T) {
		err := tx.RunInTx(ctx, func(txCtx context.Context) error {
			if _, err := expenses.DeleteByPurchaseOrder(txCtx, order.FirmID, order.ID, finance.UnsettledStatuses); err != nil {
				return err
			}
			return orders.DeleteWithLock(txCtx, order, procurement.StatusDraft)
		})
		require.NoError(t, err)

		_, err = orders.FindByIDForFirm(ctx, order.FirmID, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		gone, err := expenses.FindByPurchaseOrder(ctx, order.FirmID, order.ID, false)
		require.NoError(t, err)
		assert.Empty(t, gone)
	})
}
