package handlers

import (
	"net/http"

	"dealership/internal/currency"
	"dealership/internal/services"
	"dealership/internal/validation"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) GetRates(c *gin.Context) {
	rates, err := h.settingsService.LoadRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *SettingsHandler) SaveRates(c *gin.Context) {
	var req services.ExchangeRates
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(c, err)
		return
	}
	updatedBy := ""
	if claims := currentClaims(c); claims != nil {
		updatedBy = claims.Email
	}
	if err := h.settingsService.SaveRates(c.Request.Context(), req, updatedBy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Convert runs the calculator. An amount that cannot be converted answers
// available=false rather than an error.
func (h *SettingsHandler) Convert(c *gin.Context) {
	mode, ok := currency.ParseMode(c.Query("mode"))
	if !ok {
		respondError(c, validation.New("mode", "must be one of usdt_to_dzd dzd_to_usdt krw_to_usdt krw_to_dzd"))
		return
	}
	rates, err := h.settingsService.LoadRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"amount": c.Query("amount"), "mode": mode, "available": false}
	if v, ok := currency.Convert(c.Query("amount"), mode, rates.Currency()); ok {
		resp["available"] = true
		resp["result"] = v
		resp["formatted"] = currency.Format(v)
	}
	c.JSON(http.StatusOK, resp)
}
