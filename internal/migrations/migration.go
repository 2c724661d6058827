package migrations

import (
	"context"
	"errors"
	"strconv"

	"dealership/internal/logger"
	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/services"

	"gorm.io/gorm"
)

type Options struct {
	// Reset drops every table before migrating.
	Reset bool

	AdminEmail    string
	AdminPassword string

	RateDZDUSDT float64
	RateUSDTKRW float64
}

// RunMigrations creates the schema and the default data.
func RunMigrations(ctx context.Context, db *gorm.DB, opts Options) error {
	log := logger.WithComponent("migrations")
	log.Info().Msg("Running database migrations...")

	if opts.Reset {
		log.Warn().Msg("Dropping existing tables...")
		if err := db.Migrator().DropTable(models.All()...); err != nil {
			log.Warn().Err(err).Msg("Error dropping tables")
		}
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	if err := createDefaultData(ctx, repository.New(db), opts); err != nil {
		log.Warn().Err(err).Msg("Failed to create default data")
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// createDefaultData seeds the admin profile and the exchange rates, leaving
// existing rows untouched.
func createDefaultData(ctx context.Context, repos *repository.Repositories, opts Options) error {
	log := logger.WithComponent("migrations")

	if err := seedRate(ctx, repos, models.SettingRateDZDUSDT, opts.RateDZDUSDT); err != nil {
		return err
	}
	if err := seedRate(ctx, repos, models.SettingRateUSDTKRW, opts.RateUSDTKRW); err != nil {
		return err
	}

	if opts.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, skipping admin profile")
		return nil
	}
	if _, err := repos.Profiles.GetByEmail(ctx, opts.AdminEmail); err == nil {
		log.Info().Str("email", opts.AdminEmail).Msg("Admin profile already exists")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := services.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	admin := &models.Profile{
		Email:        opts.AdminEmail,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         string(models.RoleAdmin),
		IsActive:     true,
	}
	if err := repos.Profiles.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Msg("Admin profile created")
	return nil
}

func seedRate(ctx context.Context, repos *repository.Repositories, key string, value float64) error {
	if value <= 0 {
		return nil
	}
	_, err := repos.Settings.Get(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return repos.Settings.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), "system")
}
