package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"dealership/internal/lifecycle"
	"dealership/internal/repository"
	"dealership/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), repository.OrderFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) BeginShipping(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req lifecycle.ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	draft, err := h.orderService.BeginShipping(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// CommitShipping marks the order shipped. An empty body commits the open
// draft.
func (h *OrderHandler) CommitShipping(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		invalidRequest(c)
		return
	}
	var req *lifecycle.ShippingRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		req = &lifecycle.ShippingRequest{}
		if err := json.Unmarshal(raw, req); err != nil {
			invalidRequest(c)
			return
		}
	}
	order, err := h.orderService.CommitShipping(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateTracking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		TrackingNumber string `json:"tracking_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.UpdateTracking(c.Request.Context(), id, req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) AwaitingTracking(c *gin.Context) {
	orders, err := h.orderService.AwaitingTracking(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ContactLink(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	link, err := h.orderService.ContactLink(c.Request.Context(), id, c.Query("message"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *OrderHandler) AssignCar(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		CarID uint `json:"car_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.AssignCar(c.Request.Context(), id, req.CarID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UnassignCar(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	order, err := h.orderService.UnassignCar(c.Request.Context(), id, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
