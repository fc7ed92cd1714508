package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	procurementapp "github.com/farmerp/backend/internal/application/procurement"
	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type stack struct {
	orders   *procurementapp.PurchaseOrderService
	expenses *procurementapp.ExpenseService
}

func newStack(t *testing.T, cfg procurementapp.ServiceConfig) stack {
	t.Helper()
	db := NewTestDB(t).DB
	return newStackWith(t, db, persistence.NewGormExpenseRepository(db), cfg)
}

// newStackWith builds the services over db with the given expense store
func newStackWith(t *testing.T, db *gorm.DB, expenseRepo finance.ExpenseRepository, cfg procurementapp.ServiceConfig) stack {
	t.Helper()
	log := zaptest.NewLogger(t)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db)
	orders := procurementapp.NewPurchaseOrderService(
		orderRepo, expenseRepo,
		persistence.NewGormOrderNumberGenerator(db),
		persistence.NewGormFirmDirectory(db, valueobject.EUR),
		cfg, log,
	)
	orders.SetTransactionManager(persistence.NewGormTransactionManager(db))
	return stack{
		orders:   orders,
		expenses: procurementapp.NewExpenseService(orderRepo, expenseRepo, log),
	}
}

func createRequest(terms string) procurementapp.CreatePurchaseOrderRequest {
	return procurementapp.CreatePurchaseOrderRequest{
		OrderHeaderRequest: procurementapp.OrderHeaderRequest{
			SupplierName: "Valley Seed Co",
			Reference:    "Spring planting",
			Currency:     "EUR",
			OrderDate:    "2026-03-01",
			PaymentTerms: terms,
		},
		Items: []procurementapp.ItemRequest{{
			Description: "Maize seed 25kg",
			Quantity:    decimal.NewFromInt(10),
			Unit:        "bag",
			UnitPrice:   decimal.NewFromInt(25),
			TaxRate:     decimal.Zero,
		}},
	}
}

func TestPurchaseOrderLifecycle_FiveState(t *testing.T) {
	s := newStack(t, procurementapp.ServiceConfig{})
	ctx := context.Background()
	firmID := uuid.New()

	created, err := s.orders.Create(ctx, firmID, createRequest(procurement.TermsDeposit3070))
	require.NoError(t, err)
	order := created.Order
	assert.Equal(t, "PO-000001", order.OrderNumber)
	assert.Equal(t, string(procurement.StatusDraft), order.Status)
	assert.Equal(t, "250.00", order.Total)
	assert.Nil(t, created.Reconciliation)

	expenses, err := s.expenses.ListByPurchaseOrder(ctx, firmID, order.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses, "no expenses before approval")

	approved, err := s.orders.Transition(ctx, firmID, order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusApproved),
		Version: order.Version,
	})
	require.NoError(t, err)
	require.NotNil(t, approved.Reconciliation)
	assert.Equal(t, string(procurementapp.ReconcileGenerated), approved.Reconciliation.Outcome)
	assert.Equal(t, 2, approved.Reconciliation.Generated)
	assert.Empty(t, approved.Warnings)

	expenses, err = s.expenses.ListByPurchaseOrder(ctx, firmID, order.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "75.00", expenses[0].Amount)
	assert.Equal(t, "2026-03-01", expenses[0].DueDate)
	assert.Equal(t, "175.00", expenses[1].Amount)
	assert.Equal(t, "2026-03-31", expenses[1].DueDate)
	for _, e := range expenses {
		assert.Equal(t, string(finance.ExpenseStatusApproved), e.Status)
		assert.True(t, e.IsAutoGenerated)
	}

	// Reconciling again is a no-op
	retry, err := s.orders.RetryReconciliation(ctx, firmID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(procurementapp.ReconcileAlreadyReconciled), retry.Outcome)

	paid, err := s.expenses.MarkPaid(ctx, firmID, expenses[0].ID, procurementapp.MarkExpensePaidRequest{Version: expenses[0].Version})
	require.NoError(t, err)
	assert.Equal(t, string(finance.ExpenseStatusPaid), paid.Status)

	cancelled, err := s.orders.Transition(ctx, firmID, order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusCancelled),
		Version: approved.Order.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, string(procurement.StatusCancelled), cancelled.Order.Status)

	expenses, err = s.expenses.ListByPurchaseOrder(ctx, firmID, order.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, string(finance.ExpenseStatusPaid), expenses[0].Status, "settled expenses are never touched")
	assert.Equal(t, string(finance.ExpenseStatusCancelled), expenses[1].Status)

	// Another firm sees nothing
	_, err = s.orders.GetByID(ctx, uuid.New(), order.ID)
	assert.Error(t, err)
}

func TestPurchaseOrderLifecycle_StaleVersion(t *testing.T) {
	s := newStack(t, procurementapp.ServiceConfig{})
	ctx := context.Background()
	firmID := uuid.New()

	created, err := s.orders.Create(ctx, firmID, createRequest(procurement.TermsNet30))
	require.NoError(t, err)

	_, err = s.orders.Transition(ctx, firmID, created.Order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusApproved),
		Version: created.Order.Version,
	})
	require.NoError(t, err)

	_, err = s.orders.Transition(ctx, firmID, created.Order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusSent),
		Version: created.Order.Version,
	})
	var conflict *procurement.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, procurement.StatusApproved, conflict.CurrentStatus)
}

func TestPurchaseOrderLifecycle_ThreeStateReconcileOnCreation(t *testing.T) {
	s := newStack(t, procurementapp.ServiceConfig{
		Scheme:      procurement.ThreeStateScheme,
		ReconcileOn: procurementapp.ReconcileOnCreation,
	})
	ctx := context.Background()
	firmID := uuid.New()

	created, err := s.orders.Create(ctx, firmID, createRequest(procurement.TermsSplitThirds))
	require.NoError(t, err)
	assert.Equal(t, string(procurement.StatusPending), created.Order.Status)
	require.NotNil(t, created.Reconciliation)
	assert.Equal(t, 3, created.Reconciliation.Generated)

	expenses, err := s.expenses.ListByPurchaseOrder(ctx, firmID, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	total := decimal.Zero
	for _, e := range expenses {
		assert.Equal(t, string(finance.ExpenseStatusPending), e.Status)
		total = total.Add(decimal.RequireFromString(e.Amount))
	}
	assert.Equal(t, "250.00", total.StringFixed(2), "installments add up to the order total")

	_, err = s.expenses.MarkPaid(ctx, firmID, expenses[0].ID, procurementapp.MarkExpensePaidRequest{})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de, "pending installments are not payable")
	assert.Equal(t, shared.CodeInvalidState, de.Code)

	_, err = s.orders.Transition(ctx, firmID, created.Order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusRejected),
		Version: created.Order.Version,
	})
	require.NoError(t, err)

	expenses, err = s.expenses.ListByPurchaseOrder(ctx, firmID, created.Order.ID)
	require.NoError(t, err)
	for _, e := range expenses {
		assert.Equal(t, string(finance.ExpenseStatusCancelled), e.Status)
	}
}

func TestOrderNumbers_ConcurrentCreates(t *testing.T) {
	s := newStack(t, procurementapp.ServiceConfig{OrderNumberPrefix: "PO"})
	ctx := context.Background()
	firmID := uuid.New()

	const n = 8
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.orders.Create(ctx, firmID, createRequest(procurement.TermsNet30))
			if assert.NoError(t, err) {
				numbers <- res.Order.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["PO-000001"])
	assert.True(t, seen["PO-000008"])
}

func TestPurchaseOrderLifecycle_EditRegeneratesSchedule(t *testing.T) {
	s := newStack(t, procurementapp.ServiceConfig{ReconcileOn: procurementapp.ReconcileOnCreation})
	ctx := context.Background()
	firmID := uuid.New()

	created, err := s.orders.Create(ctx, firmID, createRequest(procurement.TermsSplitThirds))
	require.NoError(t, err)
	require.NotNil(t, created.Reconciliation)
	assert.Equal(t, 3, created.Reconciliation.Generated)

	items := []procurementapp.ItemRequest{{
		Description: "Maize seed 25kg",
		Quantity:    decimal.NewFromInt(1),
		Unit:        "bag",
		UnitPrice:   decimal.RequireFromString("250.50"),
		TaxRate:     decimal.Zero,
	}}
	header := createRequest(procurement.TermsSplit5050).OrderHeaderRequest
	updated, err := s.orders.Update(ctx, firmID, created.Order.ID, procurementapp.UpdatePurchaseOrderRequest{
		OrderHeaderRequest: header,
		Items:              &items,
		Version:            created.Order.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "250.50", updated.Order.Total)
	require.NotNil(t, updated.Reconciliation)
	assert.Equal(t, 2, updated.Reconciliation.Generated)

	approved, err := s.orders.Transition(ctx, firmID, created.Order.ID, procurementapp.TransitionRequest{
		Status:  string(procurement.StatusApproved),
		Version: updated.Order.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, string(procurementapp.ReconcileAlreadyReconciled), approved.Reconciliation.Outcome)
	assert.Equal(t, int64(2), approved.Reconciliation.Promoted)

	expenses, err := s.expenses.ListByPurchaseOrder(ctx, firmID, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	total := decimal.Zero
	for _, e := range expenses {
		assert.Equal(t, string(finance.ExpenseStatusApproved), e.Status)
		total = total.Add(decimal.RequireFromString(e.Amount))
	}
	assert.Equal(t, "250.50", total.StringFixed(2), "the schedule follows the edited total")
	assert.Equal(t, "125.25", expenses[0].Amount)
	assert.Equal(t, "2026-03-31", expenses[0].DueDate)
}

// failingDeletes removes rows inside the caller's transaction, then fails
type failingDeletes struct {
	finance.ExpenseRepository
}

func (f failingDeletes) DeleteByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, statuses []finance.ExpenseStatus) (int64, error) {
	if _, err := f.ExpenseRepository.DeleteByPurchaseOrder(ctx, firmID, orderID, statuses); err != nil {
		return 0, err
	}
	return 0, errors.New("connection reset by peer")
}

func TestDeleteOrder_ExpenseFailureRollsBack(t *testing.T) {
	db := NewTestDB(t).DB
	cfg := procurementapp.ServiceConfig{ReconcileOn: procurementapp.ReconcileOnCreation}
	expenseRepo := persistence.NewGormExpenseRepository(db)
	broken := newStackWith(t, db, failingDeletes{expenseRepo}, cfg)
	healthy := newStackWith(t, db, expenseRepo, cfg)
	ctx := context.Background()
	firmID := uuid.New()

	created, err := healthy.orders.Create(ctx, firmID, createRequest(procurement.TermsSplitThirds))
	require.NoError(t, err)
	orderID := created.Order.ID

	err = broken.orders.Delete(ctx, firmID, orderID, procurementapp.DeletePurchaseOrderRequest{Version: created.Order.Version})
	require.Error(t, err)

	order, err := healthy.orders.GetByID(ctx, firmID, orderID)
	require.NoError(t, err, "the order survives a failed delete")
	assert.Equal(t, created.Order.Version, order.Version)
	expenses, err := healthy.expenses.ListByPurchaseOrder(ctx, firmID, orderID)
	require.NoError(t, err)
	assert.Len(t, expenses, 3, "the rolled back expense delete left the schedule in place")

	require.NoError(t, healthy.orders.Delete(ctx, firmID, orderID, procurementapp.DeletePurchaseOrderRequest{Version: order.Version}))
	_, err = healthy.orders.GetByID(ctx, firmID, orderID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var remaining int64
	require.NoError(t, db.Table("expenses").Where("purchase_order_id = ?", orderID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
