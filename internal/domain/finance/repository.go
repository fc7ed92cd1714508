package finance

import (
	"context"

	"github.com/google/uuid"
)

// ExpenseRepository defines the interface for expense persistence.
// The store enforces uniqueness on (purchase_order_id, installment_number);
// a violation surfaces as shared.ErrDuplicateEntry.
type ExpenseRepository interface {
	// InsertBatch inserts all expenses in one transaction, or none of them
	InsertBatch(ctx context.Context, expenses []*Expense) error

	// FindByPurchaseOrder lists the expenses of an order ordered by installment number
	FindByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, autoGeneratedOnly bool) ([]Expense, error)

	// UpdateStatusByPurchaseOrder moves the order's auto-generated expenses whose
	// status is in from to status to, and returns the number of rows changed
	UpdateStatusByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, from []ExpenseStatus, to ExpenseStatus) (int64, error)

	// DeleteByPurchaseOrder hard-deletes the order's auto-generated expenses
	// whose status is in statuses, and returns the number of rows removed
	DeleteByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, statuses []ExpenseStatus) (int64, error)

	// FindByIDForFirm finds an expense by ID for a specific firm
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Expense, error)

	// SaveWithLock writes the expense only if the stored version still equals
	// expense.Version. Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, expense *Expense) error
}
