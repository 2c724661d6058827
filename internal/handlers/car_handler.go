package handlers

import (
	"net/http"

	"dealership/internal/repository"
	"dealership/internal/services"

	"github.com/gin-gonic/gin"
)

type CarHandler struct {
	carService services.CarService
}

func NewCarHandler(carService services.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

func (h *CarHandler) List(c *gin.Context) {
	cars, err := h.carService.ListCars(c.Request.Context(), repository.CarFilter{
		Status: c.Query("status"),
		Brand:  c.Query("brand"),
		Page:   pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

func (h *CarHandler) Create(c *gin.Context) {
	var req services.CarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	car, err := h.carService.CreateCar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (h *CarHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	car, err := h.carService.GetCar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.CarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	car, err := h.carService.UpdateCar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.carService.DeleteCar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *CarHandler) UploadPhoto(c *gin.Context) {
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

	photo, err := h.carService.UploadPhoto(c.Request.Context(), id, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *CarHandler) RemovePhoto(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	car, err := h.carService.RemovePhoto(c.Request.Context(), id, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) UploadVideo(c *gin.Context) {
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

	car, err := h.carService.UploadVideo(c.Request.Context(), id, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) Broadcast(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	link, err := h.carService.BroadcastLink(c.Request.Context(), id, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}
