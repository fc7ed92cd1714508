package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the status of a scheduled expense.
// It is a restricted mirror of the status of the purchase order it came from.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "PENDING"   // Scheduled, order not yet approved
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"  // Order approved, payable on due date
	ExpenseStatusPaid      ExpenseStatus = "PAID"      // Settled, never modified again
	ExpenseStatusCancelled ExpenseStatus = "CANCELLED" // Soft-ended with the order
)

// UnsettledStatuses are the statuses an expense can still leave
var UnsettledStatuses = []ExpenseStatus{ExpenseStatusPending, ExpenseStatusApproved}

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusPaid, ExpenseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the expense can no longer change
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusPaid || s == ExpenseStatusCancelled
}

// ExpenseSource carries the order-level fields copied onto every generated expense
type ExpenseSource struct {
	FirmID          uuid.UUID
	PurchaseOrderID uuid.UUID
	SupplierID      *uuid.UUID
	SupplierName    string
	Reference       string // order number
	Description     string
	Currency        valueobject.Currency
	CreatedBy       *uuid.UUID
}

// Installment is one scheduled payment to materialize
type Installment struct {
	Number     int
	Percentage decimal.Decimal
	DueDate    time.Time
	Amount     decimal.Decimal
}

// Expense represents a scheduled financial obligation aggregate root
type Expense struct {
	shared.FirmAggregateRoot
	PurchaseOrderID   uuid.UUID
	InstallmentNumber int
	DueDate           time.Time
	Amount            decimal.Decimal
	Currency          valueobject.Currency
	Percentage        decimal.Decimal
	IsAutoGenerated   bool
	Status            ExpenseStatus
	SupplierID        *uuid.UUID
	SupplierName      string
	Reference         string
	Description       string
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// NewAutoGeneratedExpense creates the expense for one installment of an order's schedule
func NewAutoGeneratedExpense(src ExpenseSource, inst Installment, status ExpenseStatus) (*Expense, error) {
	if src.FirmID == uuid.Nil {
		return nil, shared.NewValidationError("firm_id", "Firm ID cannot be empty")
	}
	if src.PurchaseOrderID == uuid.Nil {
		return nil, shared.NewValidationError("purchase_order_id", "Purchase order ID cannot be empty")
	}
	if inst.Number < 1 {
		return nil, shared.NewValidationError("installment_number", "Installment number must be at least 1")
	}
	if inst.Amount.IsNegative() {
		return nil, shared.NewValidationError("amount", "Amount cannot be negative")
	}
	if !src.Currency.IsValid() {
		return nil, shared.NewValidationError("currency", fmt.Sprintf("Invalid currency: %s", src.Currency))
	}
	if status != ExpenseStatusPending && status != ExpenseStatusApproved {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot schedule an expense in %s status", status))
	}

	expense := &Expense{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(src.FirmID),
		PurchaseOrderID:   src.PurchaseOrderID,
		InstallmentNumber: inst.Number,
		DueDate:           inst.DueDate,
		Amount:            inst.Amount,
		Currency:          src.Currency,
		Percentage:        inst.Percentage,
		IsAutoGenerated:   true,
		Status:            status,
		SupplierID:        src.SupplierID,
		SupplierName:      strings.TrimSpace(src.SupplierName),
		Reference:         src.Reference,
		Description:       installmentDescription(src, inst.Number),
	}
	if src.CreatedBy != nil {
		expense.SetCreatedBy(*src.CreatedBy)
	}
	return expense, nil
}

func installmentDescription(src ExpenseSource, number int) string {
	if d := strings.TrimSpace(src.Description); d != "" {
		return fmt.Sprintf("%s (installment %d)", d, number)
	}
	return fmt.Sprintf("%s installment %d", src.Reference, number)
}

// Money returns the amount as Money
func (e *Expense) Money() (valueobject.Money, error) {
	return valueobject.NewMoney(e.Amount, e.Currency)
}

// MarkPaid settles an approved expense. PAID is final. A PENDING expense
// belongs to an order that was never approved and is not payable yet.
func (e *Expense) MarkPaid(paidAt time.Time) error {
	switch e.Status {
	case ExpenseStatusPaid:
		return shared.NewDomainError("ALREADY_PAID", "Expense is already paid")
	case ExpenseStatusCancelled:
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled expense")
	case ExpenseStatusPending:
		return shared.NewDomainError("INVALID_STATE", "Expense is not payable until its purchase order is approved").
			WithDetail("current_status", string(e.Status))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	e.Status = ExpenseStatusPaid
	e.PaidAt = &paidAt
	e.Touch()

	e.AddDomainEvent(NewExpenseSettledEvent(e))
	return nil
}

// IsPaid returns true if the expense is settled
func (e *Expense) IsPaid() bool {
	return e.Status == ExpenseStatusPaid
}

// IsOverdue reports whether an unsettled expense is past its due date on day
func (e *Expense) IsOverdue(day time.Time) bool {
	return !e.Status.IsTerminal() && e.DueDate.Before(day)
}
