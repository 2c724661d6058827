package handlers

import (
	"net/http"

	"dealership/internal/services"

	"github.com/gin-gonic/gin"
)

type WhatsAppHandler struct {
	whatsappService services.WhatsAppService
}

func NewWhatsAppHandler(whatsappService services.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsappService: whatsappService}
}

type SendMessageRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Send pushes a free-text message through the gateway.
func (h *WhatsAppHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	if err := h.whatsappService.SendMessage(c.Request.Context(), req.Phone, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Link returns the wa.me hand-off for phone and text.
func (h *WhatsAppHandler) Link(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"link":    h.whatsappService.Link(phone, c.Query("text")),
		"enabled": h.whatsappService.Enabled(),
	})
}
