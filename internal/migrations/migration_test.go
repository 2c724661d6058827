package migrations

import (
	"context"
	"testing"

	"dealership/internal/database"
	"dealership/internal/models"
	"dealership/internal/repository"

	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize("sqlite://:memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func rate(t *testing.T, repos *repository.Repositories, key string) string {
	t.Helper()
	s, err := repos.Settings.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return s.Value
}

func TestRunMigrationsSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	opts := Options{AdminEmail: "admin@example.com", AdminPassword: "s3cret-pass", RateDZDUSDT: 250, RateUSDTKRW: 1380}

	if err := RunMigrations(ctx, db, opts); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.New(db)

	if got := rate(t, repos, models.SettingRateDZDUSDT); got != "250" {
		t.Errorf("dzd rate = %q, want 250", got)
	}
	if got := rate(t, repos, models.SettingRateUSDTKRW); got != "1380" {
		t.Errorf("krw rate = %q, want 1380", got)
	}
	admin, err := repos.Profiles.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if admin.Role != string(models.RoleAdmin) || !admin.IsActive {
		t.Errorf("admin = %+v", admin)
	}
	if admin.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear")
	}

	// A second run keeps edited rates and does not duplicate the admin.
	if err := repos.Settings.Set(ctx, models.SettingRateDZDUSDT, "260", "someone"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := RunMigrations(ctx, db, opts); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if got := rate(t, repos, models.SettingRateDZDUSDT); got != "260" {
		t.Errorf("dzd rate after rerun = %q, want 260", got)
	}
	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	if profiles != 1 {
		t.Errorf("profiles = %d, want 1", profiles)
	}
}

func TestRunMigrationsReset(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	opts := Options{RateDZDUSDT: 250, RateUSDTKRW: 1380}

	if err := RunMigrations(ctx, db, opts); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.New(db)
	if err := repos.Settings.Set(ctx, models.SettingRateDZDUSDT, "999", "someone"); err != nil {
		t.Fatalf("set: %v", err)
	}

	opts.Reset = true
	if err := RunMigrations(ctx, db, opts); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := rate(t, repos, models.SettingRateDZDUSDT); got != "250" {
		t.Errorf("dzd rate after reset = %q, want 250", got)
	}
}

func TestRunMigrationsWithoutAdminPassword(t *testing.T) {
	db := openDB(t)
	if err := RunMigrations(context.Background(), db, Options{AdminEmail: "admin@example.com"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	if profiles != 0 {
		t.Errorf("profiles = %d, want 0", profiles)
	}
}
