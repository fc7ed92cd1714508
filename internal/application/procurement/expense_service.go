package procurement

import (
	"context"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseService exposes the expenses generated from purchase orders
type ExpenseService struct {
	orderRepo      procurement.PurchaseOrderRepository
	expenseRepo    finance.ExpenseRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	orderRepo procurement.PurchaseOrderRepository,
	expenseRepo finance.ExpenseRepository,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		orderRepo:   orderRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListByPurchaseOrder lists every expense of an order, including manual ones
func (s *ExpenseService) ListByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID) ([]ExpenseResponse, error) {
	if _, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindByPurchaseOrder(ctx, firmID, orderID, false)
	if err != nil {
		return nil, err
	}
	return ToExpenseResponses(expenses), nil
}

// MarkPaid settles an expense. Settled expenses survive order cancellation
// and deletion.
func (s *ExpenseService) MarkPaid(ctx context.Context, firmID, expenseID uuid.UUID, req MarkExpensePaidRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "mark_paid",
		telemetry.SpanAttrFirmID, firmID,
		telemetry.SpanAttrExpenseID, expenseID,
	)
	defer span.End()

	expense, err := s.expenseRepo.FindByIDForFirm(ctx, firmID, expenseID)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != expense.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	if err := expense.MarkPaid(paidAt); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, expense); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("expense marked as paid",
		zap.String("expense_id", expense.ID.String()),
		zap.String("purchase_order_id", expense.PurchaseOrderID.String()),
		zap.Int("installment_number", expense.InstallmentNumber),
	)

	events := expense.GetDomainEvents()
	expense.ClearDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish expense events",
				zap.String("expense_id", expense.ID.String()),
				zap.Error(err),
			)
		}
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}
