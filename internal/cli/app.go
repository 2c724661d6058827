package cli

import (
	"fmt"
	"time"

	"dealership/internal/config"
	"dealership/internal/database"
	"dealership/internal/handlers"
	"dealership/internal/logger"
	"dealership/internal/pdf"
	"dealership/internal/redis"
	"dealership/internal/repository"
	"dealership/internal/services"
	"dealership/internal/storage"
	"dealership/pkg/whatsapp"

	"gorm.io/gorm"
)

// app is the wired service graph shared by the subcommands.
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	services  handlers.Services
	reminders services.ReminderService
	closers   []func() error
}

func (a *app) Close() {
	log := logger.WithComponent("cmd")
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Shutdown step failed")
		}
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func defaultRates(cfg *config.Config) services.ExchangeRates {
	return services.ExchangeRates{DZDPerUSDT: cfg.DefaultRateDZDUSDT, KRWPerUSDT: cfg.DefaultRateUSDTKRW}
}

// newApp opens the database, cache and blob store and builds every service.
func newApp(cfg *config.Config) (*app, error) {
	log := logger.WithComponent("cmd")

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db}
	a.closers = append(a.closers, func() error { return database.Close(db) })

	var cache redis.Cache
	if cfg.RedisURL != "" {
		client, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		cache = client
	} else {
		log.Warn().Msg("REDIS_URL not set, using in-process cache")
		cache = redis.NewMemory()
	}

	store, err := storage.NewLocal(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var client *whatsapp.Client
	if cfg.WhatsAppEnabled() {
		client = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		log.Warn().Msg("WHATSAPP_API_URL not set, only wa.me links are available")
	}

	repos := repository.New(db)
	whatsappService := services.NewWhatsAppService(client)
	settingsService := services.NewSettingsService(repos.Settings, cache, time.Duration(cfg.RatesCacheTTL)*time.Second, defaultRates(cfg))
	orderService := services.NewOrderService(repos, cache, time.Duration(cfg.DraftTTL)*time.Second, whatsappService)
	formService := services.NewShippingFormService(repos, store, pdf.NewRenderer(cfg.CompanyName), whatsappService)

	a.services = handlers.Services{
		Auth:          services.NewAuthService(repos.Profiles, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
		Orders:        orderService,
		Cars:          services.NewCarService(repos, store, whatsappService),
		Transactions:  services.NewTransactionService(repos, settingsService, formService),
		ShippingForms: formService,
		Settings:      settingsService,
		WhatsApp:      whatsappService,
	}
	a.reminders = services.NewReminderService(orderService, whatsappService, cfg.StaffWhatsApp)
	return a, nil
}
