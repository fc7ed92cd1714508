package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ProcurementMetrics counts purchase-order lifecycle activity.
type ProcurementMetrics struct {
	ordersCreated          *Counter
	transitions            *Counter
	expensesGenerated      *Counter
	expensesSettled        *Counter
	reconciliations        *Counter
	reconciliationWarnings *Counter
	reconcileDuration      *Histogram
}

// NewProcurementMetrics registers the procurement instruments on meter.
func NewProcurementMetrics(meter metric.Meter) (*ProcurementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &ProcurementMetrics{}

	var err error
	counters := []struct {
		dst  **Counter
		name string
		desc string
		unit string
	}{
		{&m.ordersCreated, "farm_purchase_orders_created_total", "Purchase orders created", "{orders}"},
		{&m.transitions, "farm_purchase_order_transitions_total", "Successful purchase order status transitions", "{transitions}"},
		{&m.expensesGenerated, "farm_expenses_generated_total", "Expenses generated from payment schedules", "{expenses}"},
		{&m.expensesSettled, "farm_expenses_settled_total", "Expenses marked as paid", "{expenses}"},
		{&m.reconciliations, "farm_reconciliations_total", "Reconciliation runs by outcome", "{runs}"},
		{&m.reconciliationWarnings, "farm_reconciliation_warnings_total", "Reconciliation failures surfaced as warnings", "{warnings}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}

	m.reconcileDuration, err = NewHistogram(meter,
		"farm_reconciliation_duration_seconds",
		"Time spent reconciling a payment schedule",
		"s",
		SmallDurationBuckets,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOrderCreated counts a new purchase order.
func (m *ProcurementMetrics) RecordOrderCreated(ctx context.Context, firmID uuid.UUID, scheme string) {
	m.ordersCreated.Inc(ctx, AttrFirmID.String(firmID.String()), AttrStatusScheme.String(scheme))
}

// RecordTransition counts a status change.
func (m *ProcurementMetrics) RecordTransition(ctx context.Context, firmID uuid.UUID, from, to string) {
	m.transitions.Inc(ctx,
		AttrFirmID.String(firmID.String()),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	)
}

// RecordReconciliation counts a reconciliation run and its generated expenses.
func (m *ProcurementMetrics) RecordReconciliation(ctx context.Context, firmID uuid.UUID, outcome, terms string, generated int, elapsed time.Duration) {
	firm := AttrFirmID.String(firmID.String())
	m.reconciliations.Inc(ctx, firm, AttrOutcome.String(outcome), AttrPaymentTerms.String(terms))
	m.reconcileDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
	if generated > 0 {
		m.expensesGenerated.Add(ctx, int64(generated), firm, AttrPaymentTerms.String(terms))
	}
}

// RecordReconciliationWarning counts a soft reconciliation failure.
func (m *ProcurementMetrics) RecordReconciliationWarning(ctx context.Context, firmID uuid.UUID) {
	m.reconciliationWarnings.Inc(ctx, AttrFirmID.String(firmID.String()))
}

// RecordExpenseSettled counts an expense marked as paid.
func (m *ProcurementMetrics) RecordExpenseSettled(ctx context.Context, firmID uuid.UUID) {
	m.expensesSettled.Inc(ctx, AttrFirmID.String(firmID.String()))
}
