package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReconcileOutcome names what a reconciliation run did
type ReconcileOutcome string

const (
	ReconcileSkipped           ReconcileOutcome = "skipped"
	ReconcileAlreadyReconciled ReconcileOutcome = "already_reconciled"
	ReconcileGenerated         ReconcileOutcome = "generated"
)

// Skip reasons
const (
	SkipReasonNoTerms       = "no_payment_terms"
	SkipReasonPayOnReceipt  = "pay_on_receipt"
	SkipReasonZeroTotal     = "non_positive_total"
	SkipReasonEmptySchedule = "empty_schedule"
)

// ReconcileResult reports the outcome of Reconcile
type ReconcileResult struct {
	Outcome  ReconcileOutcome
	Expenses []*finance.Expense // set for ReconcileGenerated
	Reason   string             // set for ReconcileSkipped
}

// Generated returns the number of expenses the run inserted
func (r ReconcileResult) Generated() int {
	return len(r.Expenses)
}

// Reconciler turns an order's payment schedule into expenses exactly once.
type Reconciler struct {
	expenseRepo finance.ExpenseRepository
	logger      *zap.Logger
	metrics     *telemetry.ProcurementMetrics
	now         func() time.Time
}

// NewReconciler creates a new Reconciler
func NewReconciler(expenseRepo finance.ExpenseRepository, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		expenseRepo: expenseRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMetrics sets the procurement metrics collector
func (r *Reconciler) SetMetrics(m *telemetry.ProcurementMetrics) {
	r.metrics = m
}

// Reconcile materializes the schedule of order as expenses.
// Orders without a schedule are skipped; orders that already have
// auto-generated expenses are left alone. A unique-index violation on insert
// means a concurrent run won and is reported as already reconciled.
// Generated expenses are APPROVED when the order is approved, PENDING otherwise.
func (r *Reconciler) Reconcile(ctx context.Context, order *procurement.PurchaseOrder) (ReconcileResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "reconcile",
		telemetry.SpanAttrFirmID, order.FirmID,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrPaymentTerms, order.PaymentTerms,
	)
	defer span.End()

	start := r.now()
	result, err := r.reconcile(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		return ReconcileResult{}, err
	}

	telemetry.SetAttributes(span, "outcome", string(result.Outcome), telemetry.SpanAttrInstallments, result.Generated())
	if r.metrics != nil {
		r.metrics.RecordReconciliation(ctx, order.FirmID, string(result.Outcome), order.PaymentTerms, result.Generated(), r.now().Sub(start))
	}
	return result, nil
}

func (r *Reconciler) reconcile(ctx context.Context, order *procurement.PurchaseOrder) (ReconcileResult, error) {
	if reason := skipReason(order); reason != "" {
		r.logger.Debug("reconciliation skipped",
			zap.String("order_id", order.ID.String()),
			zap.String("reason", reason),
		)
		return ReconcileResult{Outcome: ReconcileSkipped, Reason: reason}, nil
	}

	existing, err := r.expenseRepo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to load existing expenses: %w", err)
	}
	if len(existing) > 0 {
		return ReconcileResult{Outcome: ReconcileAlreadyReconciled}, nil
	}

	schedule := order.PaymentSchedule()
	if len(schedule) == 0 {
		return ReconcileResult{Outcome: ReconcileSkipped, Reason: SkipReasonEmptySchedule}, nil
	}

	status := finance.ExpenseStatusPending
	if order.IsApproved() {
		status = finance.ExpenseStatusApproved
	}
	src := finance.ExpenseSource{
		FirmID:          order.FirmID,
		PurchaseOrderID: order.ID,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		Reference:       order.OrderNumber,
		Description:     order.Reference,
		Currency:        order.Currency,
		CreatedBy:       order.CreatedBy,
	}

	expenses := make([]*finance.Expense, 0, len(schedule))
	for _, inst := range schedule {
		e, err := finance.NewAutoGeneratedExpense(src, finance.Installment{
			Number:     inst.InstallmentNumber,
			Percentage: inst.Percentage,
			DueDate:    inst.DueDate,
			Amount:     inst.Amount,
		}, status)
		if err != nil {
			return ReconcileResult{}, err
		}
		expenses = append(expenses, e)
	}

	if err := r.expenseRepo.InsertBatch(ctx, expenses); err != nil {
		if errors.Is(err, shared.ErrDuplicateEntry) {
			r.logger.Info("concurrent reconciliation detected",
				zap.String("order_id", order.ID.String()),
			)
			return ReconcileResult{Outcome: ReconcileAlreadyReconciled}, nil
		}
		return ReconcileResult{}, fmt.Errorf("failed to insert expenses: %w", err)
	}

	r.logger.Info("payment schedule reconciled",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", order.FirmID.String()),
		zap.String("payment_terms", order.PaymentTerms),
		zap.Int("installments", len(expenses)),
	)
	return ReconcileResult{Outcome: ReconcileGenerated, Expenses: expenses}, nil
}

func skipReason(order *procurement.PurchaseOrder) string {
	switch {
	case order.PaymentTerms == "":
		return SkipReasonNoTerms
	case procurement.IsPayOnReceipt(order.PaymentTerms):
		return SkipReasonPayOnReceipt
	case !order.Total.IsPositive():
		return SkipReasonZeroTotal
	}
	return ""
}
