package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/services"
	"dealership/internal/storage"

	"github.com/gin-gonic/gin"
)

// Services are the use cases the API exposes.
type Services struct {
	Auth          services.AuthService
	Orders        services.OrderService
	Cars          services.CarService
	Transactions  services.TransactionService
	ShippingForms services.ShippingFormService
	Settings      services.SettingsService
	WhatsApp      services.WhatsAppService
}

const maxUploadMemory = 32 << 20

// NewRouter wires every route. filesDir is served under /files.
func NewRouter(svc Services, filesDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	router.MaxMultipartMemory = maxUploadMemory

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if filesDir != "" {
		router.Static(strings.TrimSuffix(storage.URLPrefix, "/"), filesDir)
	}

	authHandler := NewAuthHandler(svc.Auth)
	orderHandler := NewOrderHandler(svc.Orders)
	carHandler := NewCarHandler(svc.Cars)
	transactionHandler := NewTransactionHandler(svc.Transactions)
	formHandler := NewShippingFormHandler(svc.ShippingForms)
	settingsHandler := NewSettingsHandler(svc.Settings)
	whatsappHandler := NewWhatsAppHandler(svc.WhatsApp)

	router.POST("/api/auth/login", authHandler.Login)

	api := router.Group("/api", RequireAuth(svc.Auth))
	{
		api.GET("/auth/me", authHandler.Me)

		admin := api.Group("", RequireRole(string(models.RoleAdmin)))
		admin.GET("/profiles", authHandler.ListProfiles)
		admin.POST("/profiles", authHandler.Register)
		admin.PUT("/settings/rates", settingsHandler.SaveRates)

		api.GET("/settings/rates", settingsHandler.GetRates)
		api.GET("/convert", settingsHandler.Convert)

		orders := api.Group("/orders")
		orders.GET("", orderHandler.List)
		orders.POST("", orderHandler.Create)
		orders.GET("/awaiting-tracking", orderHandler.AwaitingTracking)
		orders.GET("/:id", orderHandler.Get)
		orders.PUT("/:id", orderHandler.Update)
		orders.DELETE("/:id", orderHandler.Delete)
		orders.POST("/:id/status", orderHandler.UpdateStatus)
		orders.POST("/:id/shipping/draft", orderHandler.BeginShipping)
		orders.POST("/:id/shipping", orderHandler.CommitShipping)
		orders.POST("/:id/tracking", orderHandler.UpdateTracking)
		orders.GET("/:id/contact-link", orderHandler.ContactLink)
		orders.POST("/:id/assign-car", orderHandler.AssignCar)
		orders.POST("/:id/unassign-car", orderHandler.UnassignCar)

		cars := api.Group("/cars")
		cars.GET("", carHandler.List)
		cars.POST("", carHandler.Create)
		cars.GET("/:id", carHandler.Get)
		cars.PUT("/:id", carHandler.Update)
		cars.DELETE("/:id", carHandler.Delete)
		cars.POST("/:id/photos", carHandler.UploadPhoto)
		cars.DELETE("/:id/photos", carHandler.RemovePhoto)
		cars.POST("/:id/video", carHandler.UploadVideo)
		cars.POST("/:id/broadcast", carHandler.Broadcast)

		txs := api.Group("/transactions")
		txs.GET("", transactionHandler.List)
		txs.POST("", transactionHandler.Create)
		txs.GET("/summary", transactionHandler.Summary)
		txs.GET("/export", transactionHandler.Export)
		txs.GET("/:id", transactionHandler.Get)
		txs.PUT("/:id", transactionHandler.Update)
		txs.DELETE("/:id", transactionHandler.Delete)

		forms := api.Group("/shipping-forms")
		forms.GET("", formHandler.List)
		forms.POST("", formHandler.Create)
		forms.GET("/:id", formHandler.Get)
		forms.PUT("/:id", formHandler.Update)
		forms.DELETE("/:id", formHandler.Delete)
		forms.POST("/:id/documents", formHandler.UploadDocument)
		forms.POST("/:id/pdf", formHandler.RegeneratePDF)
		forms.GET("/:id/share", formHandler.Share)
		forms.POST("/:id/send", formHandler.Send)

		api.POST("/whatsapp/send", whatsappHandler.Send)
		api.GET("/whatsapp/link", whatsappHandler.Link)
	}

	return router
}

// idParam reads :id, answering 400 itself when it is not a positive integer.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

const maxPageSize = 500

func pageQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit < 0 {
		limit = 0
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}
