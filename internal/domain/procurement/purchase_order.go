package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength  = 500
	maxSupplierNameLength = 200
	maxReferenceLength    = 100
	maxUnitLength         = 20

	// Scales of the stored columns
	quantityScale     = 4
	unitPriceScale    = 4
	taxRateScale      = 2
	exchangeRateScale = 8
)

// Exclusive upper bounds of the stored columns
var (
	maxQuantity     = decimal.New(1, 14)
	maxUnitPrice    = decimal.New(1, 14)
	maxTaxRate      = decimal.NewFromInt(1000)
	maxExchangeRate = decimal.New(1, 10)
	maxAmount       = decimal.New(1, 16)
)

// exceedsScale reports whether v has more significant decimal places than places
func exceedsScale(v decimal.Decimal, places int32) bool {
	return !v.Equal(v.Round(places))
}

// ItemInput carries the caller-supplied fields of an order line
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// Validate checks an item input without building the item
func (in ItemInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return shared.NewValidationError("description", "Item description cannot be empty")
	}
	if len(in.Description) > maxDescriptionLength {
		return shared.NewValidationError("description", fmt.Sprintf("Item description cannot exceed %d characters", maxDescriptionLength))
	}
	if !in.Quantity.IsPositive() {
		return shared.NewValidationError("quantity", "Quantity must be positive")
	}
	if exceedsScale(in.Quantity, quantityScale) {
		return shared.NewValidationError("quantity", fmt.Sprintf("Quantity cannot have more than %d decimal places", quantityScale))
	}
	if in.Quantity.GreaterThanOrEqual(maxQuantity) {
		return shared.NewValidationError("quantity", fmt.Sprintf("Quantity must be less than %s", maxQuantity))
	}
	if strings.TrimSpace(in.Unit) == "" {
		return shared.NewValidationError("unit", "Unit cannot be empty")
	}
	if len(in.Unit) > maxUnitLength {
		return shared.NewValidationError("unit", fmt.Sprintf("Unit cannot exceed %d characters", maxUnitLength))
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewValidationError("unit_price", "Unit price cannot be negative")
	}
	if exceedsScale(in.UnitPrice, unitPriceScale) {
		return shared.NewValidationError("unit_price", fmt.Sprintf("Unit price cannot have more than %d decimal places", unitPriceScale))
	}
	if in.UnitPrice.GreaterThanOrEqual(maxUnitPrice) {
		return shared.NewValidationError("unit_price", fmt.Sprintf("Unit price must be less than %s", maxUnitPrice))
	}
	if in.TaxRate.IsNegative() {
		return shared.NewValidationError("tax_rate", "Tax rate cannot be negative")
	}
	if exceedsScale(in.TaxRate, taxRateScale) {
		return shared.NewValidationError("tax_rate", fmt.Sprintf("Tax rate cannot have more than %d decimal places", taxRateScale))
	}
	if in.TaxRate.GreaterThanOrEqual(maxTaxRate) {
		return shared.NewValidationError("tax_rate", fmt.Sprintf("Tax rate must be less than %s", maxTaxRate))
	}
	return nil
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percent, e.g. 7 for 7%
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal

	// Base-currency mirrors, valid only when the order carries an exchange rate
	BaseSubtotal decimal.NullDecimal
	BaseTax      decimal.NullDecimal
	BaseTotal    decimal.NullDecimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID uuid.UUID, lineNumber int, in ItemInput) (*PurchaseOrderItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &PurchaseOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		LineNumber:  lineNumber,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		Unit:        strings.TrimSpace(in.Unit),
		UnitPrice:   in.UnitPrice,
		TaxRate:     in.TaxRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.price()
	return item, nil
}

// Amounts returns the order-currency triple of the line
func (i *PurchaseOrderItem) Amounts() Amounts {
	return Amounts{Subtotal: i.Subtotal, Tax: i.Tax, Total: i.Total}
}

// BaseAmounts returns the base-currency triple and whether it is set
func (i *PurchaseOrderItem) BaseAmounts() (Amounts, bool) {
	if !i.BaseTotal.Valid {
		return Amounts{}, false
	}
	return Amounts{Subtotal: i.BaseSubtotal.Decimal, Tax: i.BaseTax.Decimal, Total: i.BaseTotal.Decimal}, true
}

func (i *PurchaseOrderItem) price() {
	a := ComputeLineAmounts(i.Quantity, i.UnitPrice, i.TaxRate)
	i.Subtotal = a.Subtotal
	i.Tax = a.Tax
	i.Total = a.Total
}

func (i *PurchaseOrderItem) setMirror(a *Amounts) {
	if a == nil {
		i.BaseSubtotal = decimal.NullDecimal{}
		i.BaseTax = decimal.NullDecimal{}
		i.BaseTotal = decimal.NullDecimal{}
		return
	}
	i.BaseSubtotal = decimal.NewNullDecimal(a.Subtotal)
	i.BaseTax = decimal.NewNullDecimal(a.Tax)
	i.BaseTotal = decimal.NewNullDecimal(a.Total)
}

// OrderHeader carries the caller-editable header fields of an order
type OrderHeader struct {
	SupplierID   *uuid.UUID
	SupplierName string
	Reference    string
	Notes        string
	Currency     valueobject.Currency
	ExchangeRate decimal.NullDecimal
	OrderDate    time.Time
	PaymentTerms string
}

// Validate checks the header against the firm's base currency
func (h OrderHeader) Validate(baseCurrency valueobject.Currency) error {
	if strings.TrimSpace(h.SupplierName) == "" {
		return shared.NewValidationError("supplier_name", "Supplier name cannot be empty")
	}
	if len(h.SupplierName) > maxSupplierNameLength {
		return shared.NewValidationError("supplier_name", fmt.Sprintf("Supplier name cannot exceed %d characters", maxSupplierNameLength))
	}
	if len(h.Reference) > maxReferenceLength {
		return shared.NewValidationError("reference", fmt.Sprintf("Reference cannot exceed %d characters", maxReferenceLength))
	}
	if !h.Currency.IsValid() {
		return shared.NewValidationError("currency", fmt.Sprintf("Invalid currency: %s", h.Currency))
	}
	if h.OrderDate.IsZero() {
		return shared.NewValidationError("order_date", "Order date is required")
	}
	if h.Currency == baseCurrency {
		if h.ExchangeRate.Valid {
			return shared.NewValidationError("exchange_rate", "Exchange rate must be empty when currency equals the base currency")
		}
	} else {
		if !h.ExchangeRate.Valid {
			return shared.NewValidationError("exchange_rate", fmt.Sprintf("Exchange rate to %s is required for %s orders", baseCurrency, h.Currency))
		}
		if !h.ExchangeRate.Decimal.IsPositive() {
			return shared.NewValidationError("exchange_rate", "Exchange rate must be positive")
		}
		if exceedsScale(h.ExchangeRate.Decimal, exchangeRateScale) {
			return shared.NewValidationError("exchange_rate", fmt.Sprintf("Exchange rate cannot have more than %d decimal places", exchangeRateScale))
		}
		if h.ExchangeRate.Decimal.GreaterThanOrEqual(maxExchangeRate) {
			return shared.NewValidationError("exchange_rate", fmt.Sprintf("Exchange rate must be less than %s", maxExchangeRate))
		}
	}
	if code := NormalizePaymentTermsCode(h.PaymentTerms); code != "" {
		if _, ok := LookupPaymentTerms(code); !ok {
			return shared.NewValidationError("payment_terms", fmt.Sprintf("Unknown payment terms: %s", code))
		}
	}
	return nil
}

// PurchaseOrder represents a purchase order aggregate root.
// Items and header fields can change only while the order is in the initial
// status of its scheme.
type PurchaseOrder struct {
	shared.FirmAggregateRoot
	OrderNumber  string
	Sequence     int64
	Scheme       SchemeName
	Status       Status
	SupplierID   *uuid.UUID
	SupplierName string
	Reference    string
	Notes        string
	Currency     valueobject.Currency
	BaseCurrency valueobject.Currency
	ExchangeRate decimal.NullDecimal
	OrderDate    time.Time
	PaymentTerms string
	Items        []PurchaseOrderItem
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	Total        decimal.Decimal
	BaseSubtotal decimal.NullDecimal
	BaseTaxTotal decimal.NullDecimal
	BaseTotal    decimal.NullDecimal
	ApprovedAt   *time.Time
	CancelledAt  *time.Time
}

// FormatOrderNumber renders a per-firm sequence value as an order number
func FormatOrderNumber(prefix string, sequence int64) string {
	return fmt.Sprintf("%s-%06d", prefix, sequence)
}

// NewPurchaseOrder creates a new purchase order in the initial status of scheme
func NewPurchaseOrder(firmID uuid.UUID, orderNumber string, sequence int64, scheme *StatusScheme, baseCurrency valueobject.Currency, header OrderHeader) (*PurchaseOrder, error) {
	if firmID == uuid.Nil {
		return nil, shared.NewValidationError("firm_id", "Firm ID cannot be empty")
	}
	if orderNumber == "" || sequence <= 0 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if scheme == nil {
		return nil, shared.NewDomainError("INVALID_STATUS_SCHEME", "Status scheme is required")
	}
	if !baseCurrency.IsValid() {
		return nil, shared.NewValidationError("base_currency", fmt.Sprintf("Invalid base currency: %s", baseCurrency))
	}
	if err := header.Validate(baseCurrency); err != nil {
		return nil, err
	}

	order := &PurchaseOrder{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		OrderNumber:       orderNumber,
		Sequence:          sequence,
		Scheme:            scheme.Name(),
		Status:            scheme.Initial(),
		BaseCurrency:      baseCurrency,
		Items:             make([]PurchaseOrderItem, 0),
	}
	order.applyHeader(header)
	if err := order.RecalculateTotals(); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// StatusScheme returns the scheme that governs the order
func (o *PurchaseOrder) StatusScheme() *StatusScheme {
	scheme, err := LookupScheme(o.Scheme)
	if err != nil {
		return FiveStateScheme
	}
	return scheme
}

// Header returns the current header fields
func (o *PurchaseOrder) Header() OrderHeader {
	return OrderHeader{
		SupplierID:   o.SupplierID,
		SupplierName: o.SupplierName,
		Reference:    o.Reference,
		Notes:        o.Notes,
		Currency:     o.Currency,
		ExchangeRate: o.ExchangeRate,
		OrderDate:    o.OrderDate,
		PaymentTerms: o.PaymentTerms,
	}
}

// IsInitial reports whether the order is still in its initial status
func (o *PurchaseOrder) IsInitial() bool {
	return o.StatusScheme().IsInitial(o.Status)
}

// IsTerminal reports whether the order can no longer change status
func (o *PurchaseOrder) IsTerminal() bool {
	return o.StatusScheme().IsTerminal(o.Status)
}

// IsApproved reports whether the order has reached the approval status
func (o *PurchaseOrder) IsApproved() bool {
	return o.ApprovedAt != nil
}

// CanModify returns true if items and header can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.IsInitial()
}

// EnsureModifiable returns EditNotAllowedError once the order left its initial status
func (o *PurchaseOrder) EnsureModifiable() error {
	if !o.IsInitial() {
		return &EditNotAllowedError{CurrentStatus: o.Status}
	}
	return nil
}

// UpdateHeader replaces the header fields. Only allowed in the initial status.
func (o *PurchaseOrder) UpdateHeader(header OrderHeader) error {
	if err := o.EnsureModifiable(); err != nil {
		return err
	}
	if err := header.Validate(o.BaseCurrency); err != nil {
		return err
	}
	previous := *o
	previous.Items = append([]PurchaseOrderItem(nil), o.Items...)
	o.applyHeader(header)
	if err := o.RecalculateTotals(); err != nil {
		*o = previous
		return err
	}
	o.Touch()
	return nil
}

// ReplaceItems swaps the whole item list. Only allowed in the initial status.
// Nothing changes if any input is invalid.
func (o *PurchaseOrder) ReplaceItems(inputs []ItemInput) error {
	if err := o.EnsureModifiable(); err != nil {
		return err
	}
	items := make([]PurchaseOrderItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := NewPurchaseOrderItem(o.ID, i+1, in)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}
	previous := o.Items
	o.Items = items
	if err := o.RecalculateTotals(); err != nil {
		o.Items = previous
		return err
	}
	o.Touch()
	return nil
}

// EnsureDeletable returns EditNotAllowedError once the order left its initial status
func (o *PurchaseOrder) EnsureDeletable() error {
	return o.EnsureModifiable()
}

// TransitionTo moves the order to target if the scheme allows it
func (o *PurchaseOrder) TransitionTo(target Status) (StatusChange, error) {
	scheme := o.StatusScheme()
	if !scheme.CanTransition(o.Status, target) {
		return StatusChange{}, &InvalidTransitionError{
			Current:   o.Status,
			Requested: target,
			Allowed:   scheme.AllowedNext(o.Status),
		}
	}
	if target == scheme.ApprovalStatus() && len(o.Items) == 0 {
		return StatusChange{}, shared.NewDomainError("NO_ITEMS", "Cannot approve an order without items")
	}

	change := StatusChange{From: o.Status, To: target}
	now := time.Now()
	o.Status = target
	switch {
	case target == scheme.ApprovalStatus():
		o.ApprovedAt = &now
	case scheme.IsCancellation(target):
		o.CancelledAt = &now
	}
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, change))
	return change, nil
}

// IsCancellation reports whether the order's current status soft-ends it
func (o *PurchaseOrder) IsCancellation() bool {
	return o.StatusScheme().IsCancellation(o.Status)
}

// HasExchangeRate reports whether the order mirrors amounts into base currency
func (o *PurchaseOrder) HasExchangeRate() bool {
	return o.ExchangeRate.Valid
}

// Amounts returns the order-currency totals
func (o *PurchaseOrder) Amounts() Amounts {
	return Amounts{Subtotal: o.Subtotal, Tax: o.TaxTotal, Total: o.Total}
}

// BaseAmounts returns the base-currency totals and whether they are set
func (o *PurchaseOrder) BaseAmounts() (Amounts, bool) {
	if !o.BaseTotal.Valid {
		return Amounts{}, false
	}
	return Amounts{Subtotal: o.BaseSubtotal.Decimal, Tax: o.BaseTaxTotal.Decimal, Total: o.BaseTotal.Decimal}, true
}

// PaymentSchedule previews the installments the order's terms produce
func (o *PurchaseOrder) PaymentSchedule() []ScheduledInstallment {
	return ParsePaymentTerms(o.PaymentTerms, o.Total, o.OrderDate)
}

// ItemCount returns the number of items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// RecalculateTotals re-prices every item and the order totals from the stored
// quantities, prices, tax rates and exchange rate. Running it again on an
// unchanged order yields identical values.
func (o *PurchaseOrder) RecalculateTotals() error {
	sum := ZeroAmounts()
	for idx := range o.Items {
		item := &o.Items[idx]
		item.price()
		if o.ExchangeRate.Valid {
			mirror, err := MirrorAmounts(item.Amounts(), o.Currency, o.BaseCurrency, o.ExchangeRate.Decimal)
			if err != nil {
				return shared.NewValidationError("exchange_rate", err.Error())
			}
			item.setMirror(&mirror)
		} else {
			item.setMirror(nil)
		}
		sum = sum.Add(item.Amounts())
	}

	total := sum.Subtotal.Add(sum.Tax)
	if total.GreaterThanOrEqual(maxAmount) {
		return shared.NewValidationError("total", fmt.Sprintf("Order total must be less than %s", maxAmount))
	}
	o.Subtotal = sum.Subtotal
	o.TaxTotal = sum.Tax
	o.Total = total

	if !o.ExchangeRate.Valid {
		o.BaseSubtotal = decimal.NullDecimal{}
		o.BaseTaxTotal = decimal.NullDecimal{}
		o.BaseTotal = decimal.NullDecimal{}
		return nil
	}
	mirror, err := MirrorAmounts(o.Amounts(), o.Currency, o.BaseCurrency, o.ExchangeRate.Decimal)
	if err != nil {
		return shared.NewValidationError("exchange_rate", err.Error())
	}
	if mirror.Total.GreaterThanOrEqual(maxAmount) {
		return shared.NewValidationError("total", fmt.Sprintf("Order total in %s must be less than %s", o.BaseCurrency, maxAmount))
	}
	o.BaseSubtotal = decimal.NewNullDecimal(mirror.Subtotal)
	o.BaseTaxTotal = decimal.NewNullDecimal(mirror.Tax)
	o.BaseTotal = decimal.NewNullDecimal(mirror.Total)
	return nil
}

func (o *PurchaseOrder) applyHeader(h OrderHeader) {
	o.SupplierID = h.SupplierID
	o.SupplierName = strings.TrimSpace(h.SupplierName)
	o.Reference = strings.TrimSpace(h.Reference)
	o.Notes = h.Notes
	o.Currency = h.Currency
	o.ExchangeRate = h.ExchangeRate
	o.OrderDate = DateOnly(h.OrderDate)
	o.PaymentTerms = NormalizePaymentTermsCode(h.PaymentTerms)
}
