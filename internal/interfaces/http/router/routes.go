package router

import (
	"github.com/farmerp/backend/internal/interfaces/http/handler"
)

// ProcurementRoutes mounts the purchase order and payment terms endpoints
// under /procurement.
func ProcurementRoutes(orders *handler.PurchaseOrderHandler, expenses *handler.ExpenseHandler) *DomainGroup {
	procurement := NewDomainGroup("procurement", "/procurement")

	procurement.Group("purchase-orders", "/purchase-orders").
		POST("", orders.Create).
		GET("", orders.List).
		GET("/:id", orders.GetByID).
		PUT("/:id", orders.Update).
		DELETE("/:id", orders.Delete).
		POST("/:id/transitions", orders.Transition).
		POST("/:id/reconcile", orders.Reconcile).
		GET("/:id/expenses", expenses.ListByPurchaseOrder)

	procurement.Group("payment-terms", "/payment-terms").
		GET("", orders.ListPaymentTerms).
		POST("/preview", orders.PreviewSchedule)

	return procurement
}

// FinanceRoutes mounts the expense settlement endpoint under /finance
func FinanceRoutes(expenses *handler.ExpenseHandler) *DomainGroup {
	finance := NewDomainGroup("finance", "/finance")
	finance.Group("expenses", "/expenses").
		POST("/:id/pay", expenses.MarkPaid)
	return finance
}
