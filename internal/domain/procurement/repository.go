package procurement

import (
	"context"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForFirm finds a purchase order by ID for a specific firm.
	// Returns shared.ErrNotFound when the order does not exist or belongs to another firm.
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*PurchaseOrder, error)

	// FindAllForFirm finds purchase orders for a firm.
	// filter.Filters["status"] narrows the result to a single Status.
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// CountForFirm counts purchase orders for a firm with the same filters as FindAllForFirm
	CountForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) (int64, error)

	// Create inserts a new purchase order and its items
	Create(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock writes the order only if the stored version still equals
	// order.Version, incrementing both in the same statement. Returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// DeleteWithLock removes the order if the stored version still equals
	// order.Version and the stored status is still the given status.
	DeleteWithLock(ctx context.Context, order *PurchaseOrder, status Status) error
}

// OrderNumberGenerator issues per-firm, collision-free, monotonically
// increasing sequence values. Implementations must be atomic in storage.
type OrderNumberGenerator interface {
	Next(ctx context.Context, firmID uuid.UUID) (int64, error)
}

// FirmDirectory resolves firm-level settings owned by the surrounding application
type FirmDirectory interface {
	// BaseCurrency returns the currency the firm books in
	BaseCurrency(ctx context.Context, firmID uuid.UUID) (valueobject.Currency, error)
}
