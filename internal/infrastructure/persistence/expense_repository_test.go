package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormExpenseRepository_InsertBatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormExpenseRepository(db)
	order := newOrder(t, uuid.New(), 1, "Green Valley Feeds", "10.00")

	batch := []*finance.Expense{
		newExpense(t, order, 1, "333.33"),
		newExpense(t, order, 2, "333.33"),
		newExpense(t, order, 3, "333.34"),
	}
	require.NoError(t, repo.InsertBatch(ctx, batch))

	found, err := repo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
	require.NoError(t, err)
	require.Len(t, found, 3)
	for i, e := range found {
		assert.Equal(t, i+1, e.InstallmentNumber)
		assert.Equal(t, finance.ExpenseStatusPending, e.Status)
	}
	assert.Equal(t, "333.34", found[2].Amount.StringFixed(2))

	t.Run("duplicate installment rolls back the whole batch", func(t *testing.T) {
		other := newOrder(t, order.FirmID, 2, "Hill Farm Supply", "10.00")
		err := repo.InsertBatch(ctx, []*finance.Expense{
			newExpense(t, other, 1, "50.00"),
			newExpense(t, order, 2, "50.00"),
		})
		assert.ErrorIs(t, err, shared.ErrDuplicateEntry)

		leaked, err := repo.FindByPurchaseOrder(ctx, other.FirmID, other.ID, false)
		require.NoError(t, err)
		assert.Empty(t, leaked)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.NoError(t, repo.InsertBatch(ctx, nil))
	})
}

func TestGormExpenseRepository_FindByPurchaseOrder_ManualFilter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormExpenseRepository(db)
	order := newOrder(t, uuid.New(), 1, "Green Valley Feeds", "10.00")

	auto := newExpense(t, order, 1, "10.00")
	manual := newExpense(t, order, 2, "4.00")
	manual.IsAutoGenerated = false
	require.NoError(t, repo.InsertBatch(ctx, []*finance.Expense{auto, manual}))

	all, err := repo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	generated, err := repo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
	require.NoError(t, err)
	require.Len(t, generated, 1)
	assert.Equal(t, auto.ID, generated[0].ID)

	foreign, err := repo.FindByPurchaseOrder(ctx, uuid.New(), order.ID, false)
	require.NoError(t, err)
	assert.Empty(t, foreign)
}

func TestGormExpenseRepository_CascadeLeavesPaidExpenses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormExpenseRepository(db)
	order := newOrder(t, uuid.New(), 1, "Green Valley Feeds", "10.00")

	batch := []*finance.Expense{
		newExpense(t, order, 1, "10.00"),
		newExpense(t, order, 2, "10.00"),
		newExpense(t, order, 3, "10.00"),
	}
	batch[0].Status = finance.ExpenseStatusApproved
	require.NoError(t, repo.InsertBatch(ctx, batch))

	paid := batch[0]
	require.NoError(t, paid.MarkPaid(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.SaveWithLock(ctx, paid))
	assert.Equal(t, 2, paid.Version)

	t.Run("cancel moves only unsettled rows", func(t *testing.T) {
		n, err := repo.UpdateStatusByPurchaseOrder(ctx, order.FirmID, order.ID, finance.UnsettledStatuses, finance.ExpenseStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		found, err := repo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
		require.NoError(t, err)
		assert.Equal(t, finance.ExpenseStatusPaid, found[0].Status)
		assert.Equal(t, finance.ExpenseStatusCancelled, found[1].Status)
		assert.NotNil(t, found[1].CancelledAt)
	})

	t.Run("delete keeps paid rows", func(t *testing.T) {
		n, err := repo.DeleteByPurchaseOrder(ctx, order.FirmID, order.ID,
			[]finance.ExpenseStatus{finance.ExpenseStatusPending, finance.ExpenseStatusApproved, finance.ExpenseStatusCancelled})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		var remaining []models.ExpenseModel
		require.NoError(t, db.Where("purchase_order_id = ?", order.ID).Find(&remaining).Error)
		require.Len(t, remaining, 1)
		assert.Equal(t, paid.ID, remaining[0].ID)
	})
}

func TestGormExpenseRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))
	order := newOrder(t, uuid.New(), 1, "Green Valley Feeds", "10.00")
	expense := newExpense(t, order, 1, "10.00")
	expense.Status = finance.ExpenseStatusApproved
	require.NoError(t, repo.InsertBatch(ctx, []*finance.Expense{expense}))

	stale, err := repo.FindByIDForFirm(ctx, order.FirmID, expense.ID)
	require.NoError(t, err)

	paidAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, expense.MarkPaid(paidAt))
	require.NoError(t, repo.SaveWithLock(ctx, expense))

	require.NoError(t, stale.MarkPaid(paidAt.AddDate(0, 0, 1)))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	found, err := repo.FindByIDForFirm(ctx, order.FirmID, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseStatusPaid, found.Status)
	require.NotNil(t, found.PaidAt)
	assert.True(t, paidAt.Equal(*found.PaidAt))

	_, err = repo.FindByIDForFirm(ctx, uuid.New(), expense.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
