package handlers

import (
	"net/http"

	"dealership/internal/repository"
	"dealership/internal/services"

	"github.com/gin-gonic/gin"
)

type ShippingFormHandler struct {
	formService services.ShippingFormService
}

func NewShippingFormHandler(formService services.ShippingFormService) *ShippingFormHandler {
	return &ShippingFormHandler{formService: formService}
}

func (h *ShippingFormHandler) List(c *gin.Context) {
	forms, err := h.formService.ListForms(c.Request.Context(), repository.ShippingFormFilter{
		Status: c.Query("status"),
		Page:   pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_forms": forms})
}

func (h *ShippingFormHandler) Create(c *gin.Context) {
	var req services.ShippingFormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	form, err := h.formService.CreateForm(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

func (h *ShippingFormHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	form, err := h.formService.GetForm(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ShippingFormHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.ShippingFormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	form, err := h.formService.UpdateForm(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ShippingFormHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.formService.DeleteForm(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadDocument takes a multipart "file" and the document "kind".
func (h *ShippingFormHandler) UploadDocument(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	form, err := h.formService.UploadDocument(c.Request.Context(), id, c.PostForm("kind"), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ShippingFormHandler) RegeneratePDF(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	form, err := h.formService.RegeneratePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ShippingFormHandler) Share(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := h.formService.Share(c.Request.Context(), id, c.Query("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ShippingFormHandler) Send(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c)
			return
		}
	}
	result, err := h.formService.Send(c.Request.Context(), id, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
