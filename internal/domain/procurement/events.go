package procurement

import (
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePaymentScheduleGenerated   = "PaymentScheduleGenerated"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	SupplierName string          `json:"supplier_name"`
	Scheme       SchemeName      `json:"scheme"`
	Status       Status          `json:"status"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.FirmID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierName:    order.SupplierName,
		Scheme:          order.Scheme,
		Status:          order.Status,
		Currency:        order.Currency.String(),
		Total:           order.Total,
	}
}

// PurchaseOrderStatusChangedEvent is raised on every successful transition
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	Scheme      SchemeName `json:"scheme"`
	From        Status     `json:"from"`
	To          Status     `json:"to"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, change StatusChange) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, order.ID, order.FirmID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Scheme:          order.Scheme,
		From:            change.From,
		To:              change.To,
	}
}

// PaymentScheduleGeneratedEvent is raised when expenses were materialized for an order
type PaymentScheduleGeneratedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	PaymentTerms string          `json:"payment_terms"`
	Installments int             `json:"installments"`
	Currency     string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewPaymentScheduleGeneratedEvent creates a new PaymentScheduleGeneratedEvent
func NewPaymentScheduleGeneratedEvent(order *PurchaseOrder, installments int) *PaymentScheduleGeneratedEvent {
	return &PaymentScheduleGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentScheduleGenerated, AggregateTypePurchaseOrder, order.ID, order.FirmID),
		OrderID:         order.ID,
		PaymentTerms:    order.PaymentTerms,
		Installments:    installments,
		Currency:        order.Currency.String(),
		Amount:          order.Total,
	}
}
