package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)

// InsertBatch inserts every expense in a single transaction. A unique
// violation on (purchase_order_id, installment_number) rolls the whole batch
// back and returns shared.ErrDuplicateEntry.
func (r *GormExpenseRepository) InsertBatch(ctx context.Context, expenses []*finance.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	rows := make([]*models.ExpenseModel, len(expenses))
	for i, e := range expenses {
		rows[i] = models.ExpenseModelFromDomain(e)
	}
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return translateError(tx.Create(&rows).Error)
	})
}

// FindByPurchaseOrder lists an order's expenses by installment number
func (r *GormExpenseRepository) FindByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, autoGeneratedOnly bool) ([]finance.Expense, error) {
	query := conn(ctx, r.db).
		Scopes(FirmScope(firmID)).
		Where("purchase_order_id = ?", orderID)
	if autoGeneratedOnly {
		query = query.Where("is_auto_generated = ?", true)
	}

	var rows []models.ExpenseModel
	if err := query.Order(orderClause("installment_number", "asc", ExpenseSortFields, "installment_number")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	expenses := make([]finance.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, nil
}

// UpdateStatusByPurchaseOrder moves the order's auto-generated expenses whose
// status is in from to status to. Cancelling stamps cancelled_at.
func (r *GormExpenseRepository) UpdateStatusByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, from []finance.ExpenseStatus, to finance.ExpenseStatus) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	columns := map[string]any{
		"status":     string(to),
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if to == finance.ExpenseStatusCancelled {
		columns["cancelled_at"] = now
	}

	result := conn(ctx, r.db).
		Model(&models.ExpenseModel{}).
		Scopes(FirmScope(firmID)).
		Where("purchase_order_id = ? AND is_auto_generated = ? AND status IN ?", orderID, true, statusStrings(from)).
		Updates(columns)
	return result.RowsAffected, result.Error
}

// DeleteByPurchaseOrder hard-deletes the order's auto-generated expenses
// whose status is in statuses.
func (r *GormExpenseRepository) DeleteByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID, statuses []finance.ExpenseStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).
		Scopes(FirmScope(firmID)).
		Where("purchase_order_id = ? AND is_auto_generated = ? AND status IN ?", orderID, true, statusStrings(statuses)).
		Delete(&models.ExpenseModel{})
	return result.RowsAffected, result.Error
}

// FindByIDForFirm finds an expense by ID within a firm
func (r *GormExpenseRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*finance.Expense, error) {
	var row models.ExpenseModel
	err := conn(ctx, r.db).
		Scopes(FirmScope(firmID)).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// SaveWithLock writes the expense's state columns when the stored version
// still matches.
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.Expense) error {
	columns := models.ExpenseModelFromDomain(expense).StateColumns()
	columns["version"] = gorm.Expr("version + 1")
	columns["updated_at"] = time.Now().UTC()

	result := conn(ctx, r.db).
		Model(&models.ExpenseModel{}).
		Where("id = ? AND firm_id = ? AND version = ?", expense.ID, expense.FirmID, expense.Version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := conn(ctx, r.db).Model(&models.ExpenseModel{}).
			Where("id = ? AND firm_id = ?", expense.ID, expense.FirmID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	expense.IncrementVersion()
	return nil
}

func statusStrings(statuses []finance.ExpenseStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
