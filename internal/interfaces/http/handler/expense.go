package handler

import (
	"context"

	procurementapp "github.com/farmerp/backend/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseService is the application surface the expense endpoints need
type ExpenseService interface {
	ListByPurchaseOrder(ctx context.Context, firmID, orderID uuid.UUID) ([]procurementapp.ExpenseResponse, error)
	MarkPaid(ctx context.Context, firmID, expenseID uuid.UUID, req procurementapp.MarkExpensePaidRequest) (*procurementapp.ExpenseResponse, error)
}

// ExpenseHandler handles the scheduled expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ListByPurchaseOrder godoc
// @ID           listPurchaseOrderExpenses
// @Summary      List the expenses of a purchase order
// @Description  Returns the scheduled and manual expenses linked to the order, by installment number
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[[]procurementapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id}/expenses [get]
func (h *ExpenseHandler) ListByPurchaseOrder(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	expenses, err := h.expenseService.ListByPurchaseOrder(c.Request.Context(), firmID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}

// MarkPaid godoc
// @ID           payExpense
// @Summary      Settle an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Param        request body procurementapp.MarkExpensePaidRequest true "Settlement request"
// @Success      200 {object} APIResponse[procurementapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/expenses/{id}/pay [post]
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.MarkExpensePaidRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.MarkPaid(c.Request.Context(), firmID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}
