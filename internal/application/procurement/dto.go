package procurement

import (
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// ==================== Purchase Order DTOs ====================

// ItemRequest represents an order line in create and update requests
type ItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt=0"`
	Unit        string          `json:"unit" binding:"required,min=1,max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte=0"`
	TaxRate     decimal.Decimal `json:"tax_rate" binding:"decimal_gte=0"`
}

// OrderHeaderRequest carries the editable header fields of an order
type OrderHeaderRequest struct {
	SupplierID   *uuid.UUID       `json:"supplier_id"`
	SupplierName string           `json:"supplier_name" binding:"required,min=1,max=200"`
	Reference    string           `json:"reference" binding:"max=100"`
	Notes        string           `json:"notes"`
	Currency     string           `json:"currency" binding:"omitempty,currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate" binding:"omitempty,decimal_gt=0"`
	OrderDate    string           `json:"order_date" binding:"required,datetime=2006-01-02"`
	PaymentTerms string           `json:"payment_terms" binding:"max=32"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	OrderHeaderRequest
	Items     []ItemRequest `json:"items" binding:"dive"`
	CreatedBy *uuid.UUID    `json:"-"`
}

// UpdatePurchaseOrderRequest replaces the header of an order in its initial status.
// Items replaces the whole item list when present.
type UpdatePurchaseOrderRequest struct {
	OrderHeaderRequest
	Items   *[]ItemRequest `json:"items" binding:"omitempty,dive"`
	Version int            `json:"version" binding:"min=0"`
}

// TransitionRequest asks for a status change
type TransitionRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int    `json:"version" binding:"min=0"`
}

// DeletePurchaseOrderRequest carries the optional version of a delete
type DeletePurchaseOrderRequest struct {
	Version int `form:"version" binding:"min=0"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at order_date order_number total"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PreviewScheduleRequest asks for the installments a code would produce
type PreviewScheduleRequest struct {
	PaymentTerms string          `json:"payment_terms" binding:"max=32"`
	Total        decimal.Decimal `json:"total" binding:"decimal_gte=0"`
	OrderDate    string          `json:"order_date" binding:"required,datetime=2006-01-02"`
	Currency     string          `json:"currency" binding:"omitempty,currency"`
}

// PurchaseOrderItemResponse represents a purchase order item in API responses
type PurchaseOrderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	LineNumber   int       `json:"line_number"`
	Description  string    `json:"description"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	UnitPrice    string    `json:"unit_price"`
	TaxRate      string    `json:"tax_rate"`
	Subtotal     string    `json:"subtotal"`
	Tax          string    `json:"tax"`
	Total        string    `json:"total"`
	BaseSubtotal *string   `json:"base_subtotal,omitempty"`
	BaseTax      *string   `json:"base_tax,omitempty"`
	BaseTotal    *string   `json:"base_total,omitempty"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	FirmID             uuid.UUID                   `json:"firm_id"`
	OrderNumber        string                      `json:"order_number"`
	Status             string                      `json:"status"`
	StatusScheme       string                      `json:"status_scheme"`
	AllowedTransitions []string                    `json:"allowed_transitions"`
	SupplierID         *uuid.UUID                  `json:"supplier_id,omitempty"`
	SupplierName       string                      `json:"supplier_name"`
	Reference          string                      `json:"reference,omitempty"`
	Notes              string                      `json:"notes,omitempty"`
	Currency           string                      `json:"currency"`
	BaseCurrency       string                      `json:"base_currency"`
	ExchangeRate       *string                     `json:"exchange_rate,omitempty"`
	OrderDate          string                      `json:"order_date"`
	PaymentTerms       string                      `json:"payment_terms,omitempty"`
	Items              []PurchaseOrderItemResponse `json:"items"`
	ItemCount          int                         `json:"item_count"`
	Subtotal           string                      `json:"subtotal"`
	TaxTotal           string                      `json:"tax_total"`
	Total              string                      `json:"total"`
	BaseSubtotal       *string                     `json:"base_subtotal,omitempty"`
	BaseTaxTotal       *string                     `json:"base_tax_total,omitempty"`
	BaseTotal          *string                     `json:"base_total,omitempty"`
	ApprovedAt         *time.Time                  `json:"approved_at,omitempty"`
	CancelledAt        *time.Time                  `json:"cancelled_at,omitempty"`
	CreatedBy          *uuid.UUID                  `json:"created_by,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Version            int                         `json:"version"`
}

// ScheduledInstallmentResponse represents one previewed or generated installment
type ScheduledInstallmentResponse struct {
	InstallmentNumber int    `json:"installment_number"`
	Percentage        string `json:"percentage"`
	DueDate           string `json:"due_date"`
	Amount            string `json:"amount"`
}

// PaymentScheduleResponse is the result of a schedule preview
type PaymentScheduleResponse struct {
	PaymentTerms string                         `json:"payment_terms"`
	Currency     string                         `json:"currency,omitempty"`
	Total        string                         `json:"total"`
	Installments []ScheduledInstallmentResponse `json:"installments"`
}

// InstallmentRuleResponse is one (percentage, day offset) pair of a catalog entry
type InstallmentRuleResponse struct {
	Percentage string `json:"percentage"`
	DayOffset  int    `json:"day_offset"`
}

// PaymentTermsResponse is a catalog entry
type PaymentTermsResponse struct {
	Code         string                    `json:"code"`
	Name         string                    `json:"name"`
	Installments []InstallmentRuleResponse `json:"installments"`
}

// StatusChangeResponse describes an applied transition
type StatusChangeResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReconcileResultResponse describes a reconciliation run
type ReconcileResultResponse struct {
	Outcome   string `json:"outcome"`
	Generated int    `json:"generated"`
	Promoted  int64  `json:"promoted,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// OrderMutationResult is returned by create and transition
type OrderMutationResult struct {
	Order          PurchaseOrderResponse    `json:"order"`
	Change         *StatusChangeResponse    `json:"change,omitempty"`
	Reconciliation *ReconcileResultResponse `json:"reconciliation,omitempty"`
	Warnings       []ReconciliationWarning  `json:"warnings,omitempty"`
}

// ==================== Expense DTOs ====================

// MarkExpensePaidRequest settles an expense
type MarkExpensePaidRequest struct {
	PaidAt  *time.Time `json:"paid_at"`
	Version int        `json:"version" binding:"min=0"`
}

// ExpenseResponse represents a scheduled expense in API responses
type ExpenseResponse struct {
	ID                uuid.UUID  `json:"id"`
	FirmID            uuid.UUID  `json:"firm_id"`
	PurchaseOrderID   uuid.UUID  `json:"purchase_order_id"`
	InstallmentNumber int        `json:"installment_number"`
	DueDate           string     `json:"due_date"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	Percentage        string     `json:"percentage"`
	IsAutoGenerated   bool       `json:"is_auto_generated"`
	Status            string     `json:"status"`
	SupplierID        *uuid.UUID `json:"supplier_id,omitempty"`
	SupplierName      string     `json:"supplier_name"`
	Reference         string     `json:"reference"`
	Description       string     `json:"description"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// ==================== Converters ====================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

// ToPurchaseOrderResponse converts a domain order to its response DTO
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = PurchaseOrderItemResponse{
			ID:           item.ID,
			LineNumber:   item.LineNumber,
			Description:  item.Description,
			Quantity:     item.Quantity.String(),
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice.String(),
			TaxRate:      item.TaxRate.String(),
			Subtotal:     money(item.Subtotal),
			Tax:          money(item.Tax),
			Total:        money(item.Total),
			BaseSubtotal: nullMoney(item.BaseSubtotal),
			BaseTax:      nullMoney(item.BaseTax),
			BaseTotal:    nullMoney(item.BaseTotal),
		}
	}

	allowed := order.StatusScheme().AllowedNext(order.Status)
	transitions := make([]string, len(allowed))
	for i, s := range allowed {
		transitions[i] = string(s)
	}

	var rate *string
	if order.ExchangeRate.Valid {
		r := order.ExchangeRate.Decimal.String()
		rate = &r
	}

	return PurchaseOrderResponse{
		ID:                 order.ID,
		FirmID:             order.FirmID,
		OrderNumber:        order.OrderNumber,
		Status:             string(order.Status),
		StatusScheme:       string(order.Scheme),
		AllowedTransitions: transitions,
		SupplierID:         order.SupplierID,
		SupplierName:       order.SupplierName,
		Reference:          order.Reference,
		Notes:              order.Notes,
		Currency:           order.Currency.String(),
		BaseCurrency:       order.BaseCurrency.String(),
		ExchangeRate:       rate,
		OrderDate:          order.OrderDate.Format(DateLayout),
		PaymentTerms:       order.PaymentTerms,
		Items:              items,
		ItemCount:          len(items),
		Subtotal:           money(order.Subtotal),
		TaxTotal:           money(order.TaxTotal),
		Total:              money(order.Total),
		BaseSubtotal:       nullMoney(order.BaseSubtotal),
		BaseTaxTotal:       nullMoney(order.BaseTaxTotal),
		BaseTotal:          nullMoney(order.BaseTotal),
		ApprovedAt:         order.ApprovedAt,
		CancelledAt:        order.CancelledAt,
		CreatedBy:          order.CreatedBy,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}
}

// ToPurchaseOrderResponses converts a slice of domain orders
func ToPurchaseOrderResponses(orders []procurement.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out
}

// ToScheduledInstallmentResponses converts parsed installments
func ToScheduledInstallmentResponses(schedule []procurement.ScheduledInstallment) []ScheduledInstallmentResponse {
	out := make([]ScheduledInstallmentResponse, len(schedule))
	for i, inst := range schedule {
		out[i] = ScheduledInstallmentResponse{
			InstallmentNumber: inst.InstallmentNumber,
			Percentage:        inst.Percentage.String(),
			DueDate:           inst.DueDate.Format(DateLayout),
			Amount:            money(inst.Amount),
		}
	}
	return out
}

// ToPaymentTermsResponse converts a catalog entry
func ToPaymentTermsResponse(terms procurement.PaymentTerms) PaymentTermsResponse {
	shown := terms.Percentages()
	rules := make([]InstallmentRuleResponse, len(terms.Rules))
	for i, r := range terms.Rules {
		rules[i] = InstallmentRuleResponse{Percentage: shown[i].String(), DayOffset: r.DayOffset}
	}
	return PaymentTermsResponse{Code: terms.Code, Name: terms.Name, Installments: rules}
}

// ToExpenseResponse converts a domain expense to its response DTO
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:                e.ID,
		FirmID:            e.FirmID,
		PurchaseOrderID:   e.PurchaseOrderID,
		InstallmentNumber: e.InstallmentNumber,
		DueDate:           e.DueDate.Format(DateLayout),
		Amount:            money(e.Amount),
		Currency:          e.Currency.String(),
		Percentage:        e.Percentage.String(),
		IsAutoGenerated:   e.IsAutoGenerated,
		Status:            string(e.Status),
		SupplierID:        e.SupplierID,
		SupplierName:      e.SupplierName,
		Reference:         e.Reference,
		Description:       e.Description,
		PaidAt:            e.PaidAt,
		CancelledAt:       e.CancelledAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		Version:           e.Version,
	}
}

// ToExpenseResponses converts a slice of domain expenses
func ToExpenseResponses(expenses []finance.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i])
	}
	return out
}
