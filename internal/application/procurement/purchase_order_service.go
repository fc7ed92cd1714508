package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconcileTrigger selects when an order's schedule becomes expenses
type ReconcileTrigger string

const (
	ReconcileOnApproval ReconcileTrigger = "approval"
	ReconcileOnCreation ReconcileTrigger = "creation"
)

// Warning codes
const (
	WarningReconciliationFailed = "RECONCILIATION_FAILED"
	WarningExpenseCascadeFailed = "EXPENSE_CASCADE_FAILED"
)

// ReconciliationWarning reports a failed expense side effect of a
// successful order write. The order change itself is persisted.
type ReconciliationWarning struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	OrderApproved     bool   `json:"order_approved"`
	ScheduleGenerated bool   `json:"schedule_generated"`
	Cause             string `json:"cause,omitempty"`
}

// ServiceConfig holds the procurement settings the orchestrator needs
type ServiceConfig struct {
	Scheme            *procurement.StatusScheme
	ReconcileOn       ReconcileTrigger
	OrderNumberPrefix string
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      procurement.PurchaseOrderRepository
	expenseRepo    finance.ExpenseRepository
	numbers        procurement.OrderNumberGenerator
	firms          procurement.FirmDirectory
	reconciler     *Reconciler
	config         ServiceConfig
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProcurementMetrics
	tx             shared.TransactionManager
}

// directTx runs fn without a transaction when no manager is configured
type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	expenseRepo finance.ExpenseRepository,
	numbers procurement.OrderNumberGenerator,
	firms procurement.FirmDirectory,
	cfg ServiceConfig,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Scheme == nil {
		cfg.Scheme = procurement.FiveStateScheme
	}
	if cfg.ReconcileOn == "" {
		cfg.ReconcileOn = ReconcileOnApproval
	}
	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = "PO"
	}
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		expenseRepo: expenseRepo,
		numbers:     numbers,
		firms:       firms,
		reconciler:  NewReconciler(expenseRepo, logger),
		config:      cfg,
		logger:      logger,
		tx:          directTx{},
	}
}

// SetTransactionManager sets the manager that makes multi-repository writes atomic
func (s *PurchaseOrderService) SetTransactionManager(tx shared.TransactionManager) {
	if tx == nil {
		tx = directTx{}
	}
	s.tx = tx
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the procurement metrics collector
func (s *PurchaseOrderService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
	s.reconciler.SetMetrics(m)
}

// Create validates and persists a new purchase order in the initial status of
// the configured scheme, reconciling immediately when configured to.
func (s *PurchaseOrderService) Create(ctx context.Context, firmID uuid.UUID, req CreatePurchaseOrderRequest) (*OrderMutationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create", telemetry.SpanAttrFirmID, firmID)
	defer span.End()

	baseCurrency, err := s.firms.BaseCurrency(ctx, firmID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to resolve base currency: %w", err)
	}
	header, err := toOrderHeader(req.OrderHeaderRequest, baseCurrency)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(baseCurrency); err != nil {
		return nil, err
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		return nil, err
	}

	// Sequence values are only spent on valid orders.
	seq, err := s.numbers.Next(ctx, firmID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order, err := procurement.NewPurchaseOrder(firmID, procurement.FormatOrderNumber(s.config.OrderNumberPrefix, seq), seq, s.config.Scheme, baseCurrency, header)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		order.SetCreatedBy(*req.CreatedBy)
	}
	if err := order.ReplaceItems(items); err != nil {
		return nil, err
	}
	// The created event carries the totals of the full item list.
	order.ClearDomainEvents()
	order.AddDomainEvent(procurement.NewPurchaseOrderCreatedEvent(order))

	if err := s.orderRepo.Create(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, order.ID, telemetry.SpanAttrOrderNumber, order.OrderNumber)

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", firmID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status_scheme", string(order.Scheme)),
	)

	result := &OrderMutationResult{}
	if s.config.ReconcileOn == ReconcileOnCreation {
		rec, warning := s.reconcileSoft(ctx, order)
		result.Reconciliation = rec
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
	}

	s.publishEvents(ctx, order)
	result.Order = ToPurchaseOrderResponse(order)
	return result, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, firmID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, firmID uuid.UUID, filter PurchaseOrderListFilter) (shared.Paginated[PurchaseOrderResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		domainFilter.Filters["status"] = procurement.ParseStatus(filter.Status)
	}

	orders, err := s.orderRepo.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return shared.Paginated[PurchaseOrderResponse]{}, err
	}
	total, err := s.orderRepo.CountForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return shared.Paginated[PurchaseOrderResponse]{}, err
	}
	return shared.NewPaginated(ToPurchaseOrderResponses(orders), total, domainFilter.Page, domainFilter.Limit()), nil
}

// Update replaces the header, and optionally the items, of an order that is
// still in its initial status. When the edit changes what the payment
// schedule is derived from, expenses generated earlier are discarded in the
// same transaction and the schedule is generated again.
func (s *PurchaseOrderService) Update(ctx context.Context, firmID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*OrderMutationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update",
		telemetry.SpanAttrFirmID, firmID,
		telemetry.SpanAttrOrderID, orderID,
	)
	defer span.End()

	order, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID)
	if err != nil {
		return nil, err
	}
	// The guard runs on the authoritative copy before any version check.
	if err := order.EnsureModifiable(); err != nil {
		return nil, err
	}
	if err := checkVersion(order, req.Version); err != nil {
		return nil, err
	}

	header, err := toOrderHeader(req.OrderHeaderRequest, order.BaseCurrency)
	if err != nil {
		return nil, err
	}
	var items []procurement.ItemInput
	if req.Items != nil {
		if items, err = toItemInputs(*req.Items); err != nil {
			return nil, err
		}
	}

	before := scheduleInputsOf(order)
	if err := order.UpdateHeader(header); err != nil {
		return nil, err
	}
	if req.Items != nil {
		if err := order.ReplaceItems(items); err != nil {
			return nil, err
		}
	}

	resync := !before.equal(scheduleInputsOf(order))
	scheduled := 0
	if resync {
		if scheduled, err = s.regenerableExpenses(ctx, order); err != nil {
			return nil, err
		}
	}

	var discarded int64
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.SaveWithLock(txCtx, order); err != nil {
			return err
		}
		if scheduled == 0 {
			return nil
		}
		var err error
		if discarded, err = s.expenseRepo.DeleteByPurchaseOrder(txCtx, firmID, order.ID, finance.UnsettledStatuses); err != nil {
			return fmt.Errorf("failed to discard the previous payment schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("purchase order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", firmID.String()),
		zap.Int("items", order.ItemCount()),
		zap.Bool("schedule_changed", resync),
		zap.Int64("expenses_discarded", discarded),
	)

	result := &OrderMutationResult{}
	if resync && (scheduled > 0 || s.config.ReconcileOn == ReconcileOnCreation) {
		rec, warning := s.reconcileSoft(ctx, order)
		result.Reconciliation = rec
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
	}

	s.publishEvents(ctx, order)
	result.Order = ToPurchaseOrderResponse(order)
	return result, nil
}

// regenerableExpenses counts the order's generated expenses and refuses when
// any of them already left the unsettled set.
func (s *PurchaseOrderService) regenerableExpenses(ctx context.Context, order *procurement.PurchaseOrder) (int, error) {
	expenses, err := s.expenseRepo.FindByPurchaseOrder(ctx, order.FirmID, order.ID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to load scheduled expenses: %w", err)
	}
	for _, e := range expenses {
		if e.Status.IsTerminal() {
			return 0, shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Payment schedule cannot change: installment %d is %s", e.InstallmentNumber, e.Status)).
				WithDetail("expense_id", e.ID.String()).
				WithDetail("expense_status", string(e.Status))
		}
	}
	return len(expenses), nil
}

// Transition moves an order to the requested status and applies the expense
// side effects of that status. Side-effect failures become warnings.
func (s *PurchaseOrderService) Transition(ctx context.Context, firmID, orderID uuid.UUID, req TransitionRequest) (*OrderMutationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "transition",
		telemetry.SpanAttrFirmID, firmID,
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrToStatus, req.Status,
	)
	defer span.End()

	order, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(order, req.Version); err != nil {
		return nil, err
	}

	change, err := order.TransitionTo(procurement.ParseStatus(req.Status))
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("purchase order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", firmID.String()),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	)

	result := &OrderMutationResult{
		Change: &StatusChangeResponse{From: string(change.From), To: string(change.To)},
	}
	scheme := order.StatusScheme()
	switch {
	case change.To == scheme.ApprovalStatus():
		rec, warning := s.reconcileSoft(ctx, order)
		result.Reconciliation = rec
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
	case scheme.IsCancellation(change.To):
		if warning := s.cancelExpenses(ctx, order); warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
	}

	s.publishEvents(ctx, order)
	result.Order = ToPurchaseOrderResponse(order)
	return result, nil
}

// Delete removes an order in its initial status together with its unsettled
// auto-generated expenses. Settled expenses are kept.
func (s *PurchaseOrderService) Delete(ctx context.Context, firmID, orderID uuid.UUID, req DeletePurchaseOrderRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "delete",
		telemetry.SpanAttrFirmID, firmID,
		telemetry.SpanAttrOrderID, orderID,
	)
	defer span.End()

	order, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID)
	if err != nil {
		return err
	}
	if err := order.EnsureDeletable(); err != nil {
		return err
	}
	if err := checkVersion(order, req.Version); err != nil {
		return err
	}

	var removed int64
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if removed, err = s.expenseRepo.DeleteByPurchaseOrder(txCtx, firmID, order.ID, finance.UnsettledStatuses); err != nil {
			return fmt.Errorf("failed to delete scheduled expenses: %w", err)
		}
		return s.orderRepo.DeleteWithLock(txCtx, order, order.Status)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("purchase order deleted",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", firmID.String()),
		zap.Int64("expenses_removed", removed),
	)
	return nil
}

// RetryReconciliation re-runs reconciliation for an approved order whose
// schedule failed to generate. Errors are returned, not downgraded.
func (s *PurchaseOrderService) RetryReconciliation(ctx context.Context, firmID, orderID uuid.UUID) (*ReconcileResultResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "retry_reconciliation",
		telemetry.SpanAttrFirmID, firmID,
		telemetry.SpanAttrOrderID, orderID,
	)
	defer span.End()

	order, err := s.orderRepo.FindByIDForFirm(ctx, firmID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsApproved() || order.IsCancellation() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Reconciliation can only be retried for approved orders, current status is %s", order.Status)).
			WithDetail("current_status", order.Status)
	}

	rec, err := s.reconcileAndPromote(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, order)
	return rec, nil
}

// PreviewSchedule computes the installments a payment-terms code produces
// without touching storage.
func (s *PurchaseOrderService) PreviewSchedule(_ context.Context, req PreviewScheduleRequest) (*PaymentScheduleResponse, error) {
	code := procurement.NormalizePaymentTermsCode(req.PaymentTerms)
	if code != "" {
		if _, ok := procurement.LookupPaymentTerms(code); !ok {
			return nil, shared.NewValidationError("payment_terms", fmt.Sprintf("Unknown payment terms: %s", code))
		}
	}
	if req.Total.IsNegative() {
		return nil, shared.NewValidationError("total", "Total cannot be negative")
	}
	orderDate, err := parseDate("order_date", req.OrderDate)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency != "" {
		if _, err := valueobject.ParseCurrency(currency); err != nil {
			return nil, shared.NewValidationError("currency", err.Error())
		}
	}

	total := valueobject.RoundAmount(req.Total)
	schedule := procurement.ParsePaymentTerms(code, total, orderDate)
	return &PaymentScheduleResponse{
		PaymentTerms: code,
		Currency:     currency,
		Total:        money(total),
		Installments: ToScheduledInstallmentResponses(schedule),
	}, nil
}

// ListPaymentTerms returns the payment-terms catalog
func (s *PurchaseOrderService) ListPaymentTerms() []PaymentTermsResponse {
	catalog := procurement.PaymentTermsCatalog()
	out := make([]PaymentTermsResponse, len(catalog))
	for i, t := range catalog {
		out[i] = ToPaymentTermsResponse(t)
	}
	return out
}

// reconcileSoft runs reconciliation and downgrades failure to a warning.
func (s *PurchaseOrderService) reconcileSoft(ctx context.Context, order *procurement.PurchaseOrder) (*ReconcileResultResponse, *ReconciliationWarning) {
	rec, err := s.reconcileAndPromote(ctx, order)
	if err == nil {
		return rec, nil
	}

	s.logger.Warn("payment schedule reconciliation failed",
		zap.String("order_id", order.ID.String()),
		zap.String("firm_id", order.FirmID.String()),
		zap.String("payment_terms", order.PaymentTerms),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordReconciliationWarning(ctx, order.FirmID)
	}
	return nil, &ReconciliationWarning{
		Code:              WarningReconciliationFailed,
		Message:           "Payment schedule could not be generated; retry reconciliation for this order",
		OrderApproved:     order.IsApproved(),
		ScheduleGenerated: false,
		Cause:             err.Error(),
	}
}

// reconcileAndPromote generates missing expenses and, for approved orders,
// promotes expenses created while the order was pending.
func (s *PurchaseOrderService) reconcileAndPromote(ctx context.Context, order *procurement.PurchaseOrder) (*ReconcileResultResponse, error) {
	result, err := s.reconciler.Reconcile(ctx, order)
	if err != nil {
		return nil, err
	}
	resp := &ReconcileResultResponse{
		Outcome:   string(result.Outcome),
		Generated: result.Generated(),
		Reason:    result.Reason,
	}
	if result.Outcome == ReconcileGenerated {
		order.AddDomainEvent(procurement.NewPaymentScheduleGeneratedEvent(order, result.Generated()))
	}

	if order.IsApproved() && result.Outcome == ReconcileAlreadyReconciled {
		promoted, err := s.expenseRepo.UpdateStatusByPurchaseOrder(ctx, order.FirmID, order.ID,
			[]finance.ExpenseStatus{finance.ExpenseStatusPending}, finance.ExpenseStatusApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to approve pending expenses: %w", err)
		}
		resp.Promoted = promoted
	}
	return resp, nil
}

// cancelExpenses soft-ends the order's unsettled auto-generated expenses.
func (s *PurchaseOrderService) cancelExpenses(ctx context.Context, order *procurement.PurchaseOrder) *ReconciliationWarning {
	cancelled, err := s.expenseRepo.UpdateStatusByPurchaseOrder(ctx, order.FirmID, order.ID,
		finance.UnsettledStatuses, finance.ExpenseStatusCancelled)
	if err != nil {
		s.logger.Warn("expense cancellation cascade failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return &ReconciliationWarning{
			Code:          WarningExpenseCascadeFailed,
			Message:       "Order cancelled but its scheduled expenses are still open",
			OrderApproved: order.IsApproved(),
			Cause:         err.Error(),
		}
	}
	s.logger.Info("expenses cancelled with order",
		zap.String("order_id", order.ID.String()),
		zap.Int64("expenses_cancelled", cancelled),
	)
	return nil
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *procurement.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// scheduleInputs are the order fields a generated payment schedule depends on
type scheduleInputs struct {
	total     decimal.Decimal
	terms     string
	orderDate time.Time
	currency  valueobject.Currency
}

func scheduleInputsOf(order *procurement.PurchaseOrder) scheduleInputs {
	return scheduleInputs{
		total:     order.Total,
		terms:     order.PaymentTerms,
		orderDate: order.OrderDate,
		currency:  order.Currency,
	}
}

func (a scheduleInputs) equal(b scheduleInputs) bool {
	return a.total.Equal(b.total) &&
		a.terms == b.terms &&
		a.orderDate.Equal(b.orderDate) &&
		a.currency == b.currency
}

// checkVersion rejects a write from a client holding an older copy.
// A zero version skips the check.
func checkVersion(order *procurement.PurchaseOrder, version int) error {
	if version != 0 && version != order.Version {
		return &procurement.ConcurrencyConflictError{CurrentStatus: order.Status}
	}
	return nil
}

func toOrderHeader(req OrderHeaderRequest, baseCurrency valueobject.Currency) (procurement.OrderHeader, error) {
	currency := baseCurrency
	if code := strings.TrimSpace(req.Currency); code != "" {
		c, err := valueobject.ParseCurrency(code)
		if err != nil {
			return procurement.OrderHeader{}, shared.NewValidationError("currency", err.Error())
		}
		currency = c
	}

	orderDate, err := parseDate("order_date", req.OrderDate)
	if err != nil {
		return procurement.OrderHeader{}, err
	}

	var rate decimal.NullDecimal
	if req.ExchangeRate != nil {
		rate = decimal.NewNullDecimal(*req.ExchangeRate)
	}

	return procurement.OrderHeader{
		SupplierID:   req.SupplierID,
		SupplierName: req.SupplierName,
		Reference:    req.Reference,
		Notes:        req.Notes,
		Currency:     currency,
		ExchangeRate: rate,
		OrderDate:    orderDate,
		PaymentTerms: req.PaymentTerms,
	}, nil
}

func toItemInputs(reqs []ItemRequest) ([]procurement.ItemInput, error) {
	items := make([]procurement.ItemInput, len(reqs))
	for i, r := range reqs {
		items[i] = procurement.ItemInput{
			Description: r.Description,
			Quantity:    r.Quantity,
			Unit:        r.Unit,
			UnitPrice:   r.UnitPrice,
			TaxRate:     r.TaxRate,
		}
		if err := items[i].Validate(); err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return nil, de.WithDetail("item_index", i)
			}
			return nil, err
		}
	}
	return items, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, shared.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError(field, fmt.Sprintf("%s must be formatted as YYYY-MM-DD", field))
	}
	return t, nil
}
