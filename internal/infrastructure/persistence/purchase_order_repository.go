package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByIDForFirm finds a purchase order by ID within a firm
func (r *GormPurchaseOrderRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	err := conn(ctx, r.db).
		Scopes(FirmScope(firmID)).
		Preload("Items", preloadItems).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists a firm's orders with paging, search and sorting
func (r *GormPurchaseOrderRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel

	query := r.applyFilter(conn(ctx, r.db).Model(&models.PurchaseOrderModel{}).Scopes(FirmScope(firmID)), filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Preload("Items", preloadItems).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountForFirm counts a firm's orders matching the same filters as FindAllForFirm
func (r *GormPurchaseOrderRepository) CountForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(conn(ctx, r.db).Model(&models.PurchaseOrderModel{}).Scopes(FirmScope(firmID)), filter).
		Count(&count).Error
	return count, err
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(supplier_name) LIKE ? OR LOWER(reference) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			if status, ok := value.(procurement.Status); ok && status != "" {
				query = query.Where("status = ?", string(status))
			}
		case "supplier_id":
			if id, ok := value.(uuid.UUID); ok {
				query = query.Where("supplier_id = ?", id)
			}
		case "payment_terms":
			if code, ok := value.(string); ok && code != "" {
				query = query.Where("payment_terms = ?", code)
			}
		case "from_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "to_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}
	return query
}

// Create inserts a new order and its items in one transaction
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return translateError(err)
		}
		if len(model.Items) == 0 {
			return nil
		}
		return translateError(tx.Create(&model.Items).Error)
	})
}

// SaveWithLock writes the order when the stored version still matches. The
// version bump happens in the same UPDATE as the check.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	columns := model.HeaderColumns()
	columns["version"] = gorm.Expr("version + 1")
	columns["updated_at"] = time.Now().UTC()

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND firm_id = ? AND version = ?", order.ID, order.FirmID, order.Version).
			Updates(columns)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return r.conflict(tx, order)
		}
		return r.replaceItems(tx, order.ID, model.Items)
	})
	if err != nil {
		return err
	}

	order.IncrementVersion()
	return nil
}

func (r *GormPurchaseOrderRepository) replaceItems(tx *gorm.DB, orderID uuid.UUID, items []models.PurchaseOrderItemModel) error {
	keep := make([]uuid.UUID, len(items))
	for i := range items {
		keep[i] = items[i].ID
	}

	stale := tx.Where("order_id = ?", orderID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&items).Error
}

// DeleteWithLock removes the order and its items when both the stored version
// and the stored status still match.
func (r *GormPurchaseOrderRepository) DeleteWithLock(ctx context.Context, order *procurement.PurchaseOrder, status procurement.Status) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND firm_id = ? AND version = ? AND status = ?",
			order.ID, order.FirmID, order.Version, string(status)).
			Delete(&models.PurchaseOrderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.conflict(tx, order)
		}
		return tx.Where("order_id = ?", order.ID).Delete(&models.PurchaseOrderItemModel{}).Error
	})
}

// conflict re-reads the stored status after a failed versioned write
func (r *GormPurchaseOrderRepository) conflict(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	var current models.PurchaseOrderModel
	err := tx.Select("status").
		Where("id = ? AND firm_id = ?", order.ID, order.FirmID).
		Take(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return &procurement.ConcurrencyConflictError{CurrentStatus: procurement.Status(current.Status)}
}

// translateError maps driver-level uniqueness errors onto domain errors
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDuplicateEntry
	}
	return err
}
