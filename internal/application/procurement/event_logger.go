package procurement

import (
	"context"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// EventLogger subscribes to procurement and expense events, logging each one
// and recording the matching business metric.
type EventLogger struct {
	logger  *zap.Logger
	metrics *telemetry.ProcurementMetrics
}

// NewEventLogger creates a new EventLogger. metrics may be nil.
func NewEventLogger(logger *zap.Logger, metrics *telemetry.ProcurementMetrics) *EventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventLogger{logger: logger, metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *EventLogger) EventTypes() []string {
	return []string{
		procurement.EventTypePurchaseOrderCreated,
		procurement.EventTypePurchaseOrderStatusChanged,
		procurement.EventTypePaymentScheduleGenerated,
		finance.EventTypeExpenseSettled,
	}
}

// Handle logs a domain event
func (h *EventLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("firm_id", event.FirmID().String()),
	}

	switch e := event.(type) {
	case *procurement.PurchaseOrderCreatedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("status", string(e.Status)),
			zap.String("total", e.Total.StringFixed(2)),
			zap.String("currency", e.Currency),
		)
		if h.metrics != nil {
			h.metrics.RecordOrderCreated(ctx, e.FirmID(), string(e.Scheme))
		}
	case *procurement.PurchaseOrderStatusChangedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
		)
		if h.metrics != nil {
			h.metrics.RecordTransition(ctx, e.FirmID(), string(e.From), string(e.To))
		}
	case *procurement.PaymentScheduleGeneratedEvent:
		fields = append(fields,
			zap.String("payment_terms", e.PaymentTerms),
			zap.Int("installments", e.Installments),
		)
	case *finance.ExpenseSettledEvent:
		fields = append(fields,
			zap.String("purchase_order_id", e.PurchaseOrderID.String()),
			zap.Int("installment_number", e.InstallmentNumber),
			zap.String("amount", e.Amount.StringFixed(2)),
		)
		if h.metrics != nil {
			h.metrics.RecordExpenseSettled(ctx, e.FirmID())
		}
	}

	h.logger.Info("domain event", fields...)
	return nil
}
