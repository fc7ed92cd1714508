package procurement

import (
	"context"
	"testing"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEventLogger_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewEventLogger(zap.New(core), nil)

	assert.ElementsMatch(t, []string{
		procurement.EventTypePurchaseOrderCreated,
		procurement.EventTypePurchaseOrderStatusChanged,
		procurement.EventTypePaymentScheduleGenerated,
		finance.EventTypeExpenseSettled,
	}, handler.EventTypes())

	order := newTestOrder(t, procurement.FiveStateScheme, procurement.TermsNet30, "80.00")
	change, err := order.TransitionTo(procurement.StatusApproved)
	require.NoError(t, err)

	require.NoError(t, handler.Handle(context.Background(), procurement.NewPurchaseOrderStatusChangedEvent(order, change)))
	require.NoError(t, handler.Handle(context.Background(), procurement.NewPaymentScheduleGeneratedEvent(order, 1)))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, procurement.EventTypePurchaseOrderStatusChanged, fields["event_type"])
	assert.Equal(t, "DRAFT", fields["from"])
	assert.Equal(t, "APPROVED", fields["to"])
	assert.Equal(t, int64(1), entries[1].ContextMap()["installments"])
}
