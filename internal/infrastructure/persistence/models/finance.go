package models

import (
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate root.
// There is no foreign key to purchase_orders: paid expenses outlive the order.
type ExpenseModel struct {
	FirmAggregateModel
	PurchaseOrderID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_expense_order_installment,priority:1"`
	InstallmentNumber int             `gorm:"not null;uniqueIndex:idx_expense_order_installment,priority:2"`
	DueDate           time.Time       `gorm:"type:date;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency          string          `gorm:"type:char(3);not null"`
	Percentage        decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	IsAutoGenerated   bool            `gorm:"not null;default:false"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid"`
	SupplierName      string          `gorm:"type:varchar(200);not null;default:''"`
	Reference         string          `gorm:"type:varchar(100);not null;default:''"`
	Description       string          `gorm:"type:varchar(500);not null;default:''"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	e := &finance.Expense{
		PurchaseOrderID:   m.PurchaseOrderID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate.UTC(),
		Amount:            m.Amount,
		Currency:          valueobject.Currency(m.Currency),
		Percentage:        m.Percentage,
		IsAutoGenerated:   m.IsAutoGenerated,
		Status:            finance.ExpenseStatus(m.Status),
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		Reference:         m.Reference,
		Description:       m.Description,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
	}
	m.PopulateFirmAggregateRoot(&e.FirmAggregateRoot)
	return e
}

// FromDomain populates the model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainFirmAggregateRoot(e.FirmAggregateRoot)
	m.PurchaseOrderID = e.PurchaseOrderID
	m.InstallmentNumber = e.InstallmentNumber
	m.DueDate = e.DueDate
	m.Amount = e.Amount
	m.Currency = string(e.Currency)
	m.Percentage = e.Percentage
	m.IsAutoGenerated = e.IsAutoGenerated
	m.Status = string(e.Status)
	m.SupplierID = e.SupplierID
	m.SupplierName = e.SupplierName
	m.Reference = e.Reference
	m.Description = e.Description
	m.PaidAt = e.PaidAt
	m.CancelledAt = e.CancelledAt
}

// ExpenseModelFromDomain creates a new model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// StateColumns returns the columns a versioned expense update may change
func (m *ExpenseModel) StateColumns() map[string]any {
	return map[string]any{
		"status":       m.Status,
		"paid_at":      m.PaidAt,
		"cancelled_at": m.CancelledAt,
		"description":  m.Description,
	}
}
