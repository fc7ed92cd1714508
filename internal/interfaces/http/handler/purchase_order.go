package handler

import (
	"context"

	procurementapp "github.com/farmerp/backend/internal/application/procurement"
	"github.com/farmerp/backend/internal/domain/shared"
	"github.com/farmerp/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderService is the application surface the order endpoints need
type PurchaseOrderService interface {
	Create(ctx context.Context, firmID uuid.UUID, req procurementapp.CreatePurchaseOrderRequest) (*procurementapp.OrderMutationResult, error)
	GetByID(ctx context.Context, firmID, orderID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter procurementapp.PurchaseOrderListFilter) (shared.Paginated[procurementapp.PurchaseOrderResponse], error)
	Update(ctx context.Context, firmID, orderID uuid.UUID, req procurementapp.UpdatePurchaseOrderRequest) (*procurementapp.OrderMutationResult, error)
	Transition(ctx context.Context, firmID, orderID uuid.UUID, req procurementapp.TransitionRequest) (*procurementapp.OrderMutationResult, error)
	Delete(ctx context.Context, firmID, orderID uuid.UUID, req procurementapp.DeletePurchaseOrderRequest) error
	RetryReconciliation(ctx context.Context, firmID, orderID uuid.UUID) (*procurementapp.ReconcileResultResponse, error)
	PreviewSchedule(ctx context.Context, req procurementapp.PreviewScheduleRequest) (*procurementapp.PaymentScheduleResponse, error)
	ListPaymentTerms() []procurementapp.PaymentTermsResponse
}

// PurchaseOrderHandler handles purchase order and payment terms endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Create an order in the initial status of the firm's scheme. Under the three-state scheme the payment schedule is generated immediately; a failure there is returned in warnings.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.CreatePurchaseOrderRequest true "Purchase order creation request"
// @Success      201 {object} APIResponse[procurementapp.OrderMutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var req procurementapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if userID, ok := middleware.GetUserID(c); ok {
		req.CreatedBy = &userID
	}

	result, err := h.orderService.Create(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), firmID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Retrieve a paginated list of the firm's purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        status query string false "Order status" Enums(DRAFT, APPROVED, SENT, RECEIVED, CANCELLED, PENDING, REJECTED)
// @Param        search query string false "Search term (order number, supplier name, reference)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" Enums(created_at, order_date, order_number, total) default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	var filter procurementapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @ID           updatePurchaseOrder
// @Summary      Update a purchase order
// @Description  Replace the header, and the items when given, of an order still in its initial status
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body procurementapp.UpdatePurchaseOrderRequest true "Purchase order update request"
// @Success      200 {object} APIResponse[procurementapp.OrderMutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.UpdatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.orderService.Update(c.Request.Context(), firmID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Transition godoc
// @ID           transitionPurchaseOrder
// @Summary      Change the status of a purchase order
// @Description  Apply a status transition allowed by the order's scheme. Approval generates the payment schedule and cancellation cancels the open expenses; failures there are returned in warnings.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body procurementapp.TransitionRequest true "Target status"
// @Success      200 {object} APIResponse[procurementapp.OrderMutationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id}/transitions [post]
func (h *PurchaseOrderHandler) Transition(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.TransitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.orderService.Transition(c.Request.Context(), firmID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order
// @Description  Delete an order still in its initial status together with its pending expenses
// @Tags         purchase-orders
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        version query int false "Expected version; 0 skips the check"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.DeletePurchaseOrderRequest
	if !h.bindQuery(c, &req) {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), firmID, orderID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reconcile godoc
// @ID           reconcilePurchaseOrder
// @Summary      Regenerate the payment schedule of an order
// @Description  Retry schedule generation for an approved order whose schedule could not be written
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.ReconcileResultResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id}/reconcile [post]
func (h *PurchaseOrderHandler) Reconcile(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.orderService.RetryReconciliation(c.Request.Context(), firmID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PreviewSchedule godoc
// @ID           previewPaymentSchedule
// @Summary      Preview a payment schedule
// @Description  Compute the installments a payment terms code yields for a total and order date without persisting anything
// @Tags         payment-terms
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.PreviewScheduleRequest true "Preview request"
// @Success      200 {object} APIResponse[procurementapp.PaymentScheduleResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/payment-terms/preview [post]
func (h *PurchaseOrderHandler) PreviewSchedule(c *gin.Context) {
	var req procurementapp.PreviewScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	schedule, err := h.orderService.PreviewSchedule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// ListPaymentTerms godoc
// @ID           listPaymentTerms
// @Summary      List the payment terms catalog
// @Tags         payment-terms
// @Produce      json
// @Success      200 {object} APIResponse[[]procurementapp.PaymentTermsResponse]
// @Security     BearerAuth
// @Router       /procurement/payment-terms [get]
func (h *PurchaseOrderHandler) ListPaymentTerms(c *gin.Context) {
	h.Success(c, h.orderService.ListPaymentTerms())
}
