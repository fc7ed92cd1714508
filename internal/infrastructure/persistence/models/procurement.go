package models

import (
	"time"

	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	FirmAggregateModel
	OrderNumber  string              `gorm:"type:varchar(50);not null"`
	Sequence     int64               `gorm:"not null"`
	Scheme       string              `gorm:"type:varchar(20);not null"`
	Status       string              `gorm:"type:varchar(20);not null;index"`
	SupplierID   *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierName string              `gorm:"type:varchar(200);not null;default:''"`
	Reference    string              `gorm:"type:varchar(100);not null;default:''"`
	Notes        string              `gorm:"type:text;not null;default:''"`
	Currency     string              `gorm:"type:char(3);not null"`
	BaseCurrency string              `gorm:"type:char(3);not null"`
	ExchangeRate decimal.NullDecimal `gorm:"type:decimal(18,8)"`
	OrderDate    time.Time           `gorm:"type:date;not null"`
	PaymentTerms string              `gorm:"type:varchar(32);not null;default:''"`
	Subtotal     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Total        decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	BaseSubtotal decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	BaseTaxTotal decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	BaseTotal    decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	ApprovedAt   *time.Time
	CancelledAt  *time.Time
	Items        []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel is the persistence model for an order line
type PurchaseOrderItemModel struct {
	BaseModel
	OrderID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	LineNumber   int                 `gorm:"not null"`
	Description  string              `gorm:"type:varchar(500);not null"`
	Quantity     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Unit         string              `gorm:"type:varchar(20);not null;default:''"`
	UnitPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TaxRate      decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Tax          decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Total        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	BaseSubtotal decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	BaseTax      decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	BaseTotal    decimal.NullDecimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the item model to a domain item
func (m *PurchaseOrderItemModel) ToDomain() procurement.PurchaseOrderItem {
	return procurement.PurchaseOrderItem{
		ID:           m.ID,
		OrderID:      m.OrderID,
		LineNumber:   m.LineNumber,
		Description:  m.Description,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		TaxRate:      m.TaxRate,
		Subtotal:     m.Subtotal,
		Tax:          m.Tax,
		Total:        m.Total,
		BaseSubtotal: m.BaseSubtotal,
		BaseTax:      m.BaseTax,
		BaseTotal:    m.BaseTotal,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// PurchaseOrderItemModelFromDomain converts a domain item to its model
func PurchaseOrderItemModelFromDomain(item *procurement.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:      item.OrderID,
		LineNumber:   item.LineNumber,
		Description:  item.Description,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		UnitPrice:    item.UnitPrice,
		TaxRate:      item.TaxRate,
		Subtotal:     item.Subtotal,
		Tax:          item.Tax,
		Total:        item.Total,
		BaseSubtotal: item.BaseSubtotal,
		BaseTax:      item.BaseTax,
		BaseTotal:    item.BaseTotal,
	}
}

// ToDomain converts the model to a domain aggregate. Domain events are not
// persisted, so the result carries none.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	order := &procurement.PurchaseOrder{
		FirmAggregateRoot: shared.FirmAggregateRoot{},
		OrderNumber:       m.OrderNumber,
		Sequence:          m.Sequence,
		Scheme:            procurement.SchemeName(m.Scheme),
		Status:            procurement.Status(m.Status),
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		Reference:         m.Reference,
		Notes:             m.Notes,
		Currency:          valueobject.Currency(m.Currency),
		BaseCurrency:      valueobject.Currency(m.BaseCurrency),
		ExchangeRate:      m.ExchangeRate,
		OrderDate:         m.OrderDate.UTC(),
		PaymentTerms:      m.PaymentTerms,
		Subtotal:          m.Subtotal,
		TaxTotal:          m.TaxTotal,
		Total:             m.Total,
		BaseSubtotal:      m.BaseSubtotal,
		BaseTaxTotal:      m.BaseTaxTotal,
		BaseTotal:         m.BaseTotal,
		ApprovedAt:        m.ApprovedAt,
		CancelledAt:       m.CancelledAt,
		Items:             make([]procurement.PurchaseOrderItem, len(m.Items)),
	}
	m.PopulateFirmAggregateRoot(&order.FirmAggregateRoot)
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the model from a domain aggregate, items included
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.FromDomainFirmAggregateRoot(o.FirmAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Sequence = o.Sequence
	m.Scheme = string(o.Scheme)
	m.Status = string(o.Status)
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Reference = o.Reference
	m.Notes = o.Notes
	m.Currency = string(o.Currency)
	m.BaseCurrency = string(o.BaseCurrency)
	m.ExchangeRate = o.ExchangeRate
	m.OrderDate = o.OrderDate
	m.PaymentTerms = o.PaymentTerms
	m.Subtotal = o.Subtotal
	m.TaxTotal = o.TaxTotal
	m.Total = o.Total
	m.BaseSubtotal = o.BaseSubtotal
	m.BaseTaxTotal = o.BaseTaxTotal
	m.BaseTotal = o.BaseTotal
	m.ApprovedAt = o.ApprovedAt
	m.CancelledAt = o.CancelledAt

	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&o.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a new model from a domain aggregate
func PurchaseOrderModelFromDomain(o *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// HeaderColumns returns the mutable order columns for a versioned update.
// Identity, firm and creator columns are never rewritten.
func (m *PurchaseOrderModel) HeaderColumns() map[string]any {
	return map[string]any{
		"status":         m.Status,
		"supplier_id":    m.SupplierID,
		"supplier_name":  m.SupplierName,
		"reference":      m.Reference,
		"notes":          m.Notes,
		"currency":       m.Currency,
		"exchange_rate":  m.ExchangeRate,
		"order_date":     m.OrderDate,
		"payment_terms":  m.PaymentTerms,
		"subtotal":       m.Subtotal,
		"tax_total":      m.TaxTotal,
		"total":          m.Total,
		"base_subtotal":  m.BaseSubtotal,
		"base_tax_total": m.BaseTaxTotal,
		"base_total":     m.BaseTotal,
		"approved_at":    m.ApprovedAt,
		"cancelled_at":   m.CancelledAt,
	}
}

// OrderSequenceModel stores the last order number issued per firm
type OrderSequenceModel struct {
	FirmID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}

// FirmSettingsModel stores the firm-level settings the order engine reads
type FirmSettingsModel struct {
	FirmID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BaseCurrency string    `gorm:"type:char(3);not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FirmSettingsModel) TableName() string {
	return "firm_settings"
}
