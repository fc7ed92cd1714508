package finance

import (
	"time"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeExpense    = "Expense"
	EventTypeExpenseSettled = "ExpenseSettled"
)

// ExpenseSettledEvent is raised when an expense is marked as paid
type ExpenseSettledEvent struct {
	shared.BaseDomainEvent
	ExpenseID         uuid.UUID       `json:"expense_id"`
	PurchaseOrderID   uuid.UUID       `json:"purchase_order_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaidAt            time.Time       `json:"paid_at"`
}

// NewExpenseSettledEvent creates a new ExpenseSettledEvent
func NewExpenseSettledEvent(expense *Expense) *ExpenseSettledEvent {
	paidAt := time.Now()
	if expense.PaidAt != nil {
		paidAt = *expense.PaidAt
	}
	return &ExpenseSettledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeExpenseSettled, AggregateTypeExpense, expense.ID, expense.FirmID),
		ExpenseID:         expense.ID,
		PurchaseOrderID:   expense.PurchaseOrderID,
		InstallmentNumber: expense.InstallmentNumber,
		Amount:            expense.Amount,
		Currency:          expense.Currency.String(),
		PaidAt:            paidAt,
	}
}
