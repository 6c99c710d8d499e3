package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	service services.OrderService
}

func NewOrderController(service services.OrderService) *OrderController {
	return &OrderController{service: service}
}

type orderItemRequest struct {
	DishID   uint `json:"dish_id" binding:"required"`
	Quantity uint `json:"quantity" binding:"required,gte=1"`
}

type createOrderRequest struct {
	TableID uint               `json:"table_id"`
	Items   []orderItemRequest `json:"items" binding:"dive"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// CreateOrder godoc
// @Summary Create order
// @Description Open an order for a free table; the table becomes occupied
// @Tags orders
// @Accept json
// @Produce json
// @Param order body createOrderRequest true "Table and dish selection"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]services.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItem{DishID: item.DishID, Quantity: item.Quantity})
	}

	order, err := oc.service.CreateOrder(c.Request.Context(), currentActor(c), req.TableID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// MyOrders godoc
// @Summary My orders
// @Description Orders taken by the authenticated waiter, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/orders/mine [get]
func (oc *OrderController) MyOrders(c *gin.Context) {
	orders, err := oc.service.ListWaiterOrders(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListOrders godoc
// @Summary List all orders
// @Tags orders
// @Produce json
// @Param status query string false "waiting, in_progress or closed"
// @Param waiter_id query int false "Waiter user ID"
// @Param table_id query int false "Table ID"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders [get]
func (oc *OrderController) ListOrders(c *gin.Context) {
	waiterID, ok := queryUint(c, "waiter_id")
	if !ok {
		return
	}
	tableID, ok := queryUint(c, "table_id")
	if !ok {
		return
	}

	orders, err := oc.service.ListOrders(c.Request.Context(), services.OrderFilter{
		Status:   c.Query("status"),
		WaiterID: waiterID,
		TableID:  tableID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.service.GetOrder(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddLine godoc
// @Summary Add dish to order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param line body orderItemRequest true "Dish and quantity"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/lines [post]
func (oc *OrderController) AddLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderItemRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.service.AddLine(c.Request.Context(), currentActor(c), id, services.OrderItem{
		DishID:   req.DishID,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RemoveLine godoc
// @Summary Remove line from order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Param lineId path int true "Line ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/lines/{lineId} [delete]
func (oc *OrderController) RemoveLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	order, err := oc.service.RemoveLine(c.Request.Context(), currentActor(c), id, lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus godoc
// @Summary Advance order status
// @Description Statuses only move forward: waiting, in_progress, closed
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/status [patch]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.service.UpdateStatus(c.Request.Context(), currentActor(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CloseOrder godoc
// @Summary Close order
// @Description Close the order and free its table
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/close [post]
func (oc *OrderController) CloseOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.service.CloseOrder(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
