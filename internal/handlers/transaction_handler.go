package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dealership/internal/repository"
	"dealership/internal/services"
	"dealership/internal/validation"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// transactionFilter reads type, category, related_order_id, from and to.
// Dates are YYYY-MM-DD; to is inclusive.
func transactionFilter(c *gin.Context) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Page:     pageQuery(c),
	}
	if v := c.Query("related_order_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, validation.New("related_order_id", "must be a number")
		}
		orderID := uint(id)
		filter.RelatedOrderID = &orderID
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
		add  time.Duration
	}{
		{"from", &filter.From, 0},
		{"to", &filter.To, 24*time.Hour - time.Nanosecond},
	} {
		v := c.Query(bound.name)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, validation.New(bound.name, "must be a date (YYYY-MM-DD)")
		}
		t = t.Add(bound.add)
		*bound.dst = &t
	}
	return filter, nil
}

func (h *TransactionHandler) List(c *gin.Context) {
	filter, err := transactionFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	txs, err := h.transactionService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req services.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tx, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *TransactionHandler) Summary(c *gin.Context) {
	filter, err := transactionFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.transactionService.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TransactionHandler) Export(c *gin.Context) {
	filter, err := transactionFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.transactionService.Export(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFilename(filter)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
