package repository_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"dealership/internal/database"
	"dealership/internal/models"
	"dealership/internal/repository"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db, err := database.Initialize("sqlite://:memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db, repository.New(db)
}

func uintPtr(v uint) *uint { return &v }

func TestOrderReferences(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	for _, ref := range []string{"WA-2025-000001", "WA-2025-000002", "WA-2024-000009"} {
		o := &models.Order{ReferenceNumber: ref, CustomerName: "Amine", Status: "pending"}
		if err := repos.Orders.Create(ctx, o); err != nil {
			t.Fatalf("create %s: %v", ref, err)
		}
	}

	tests := []struct {
		prefix string
		want   string
	}{
		{"WA-2025-", "WA-2025-000002"},
		{"WA-2024-", "WA-2024-000009"},
		{"WA-2026-", ""},
	}
	for _, tt := range tests {
		got, err := repos.Orders.LatestReference(ctx, tt.prefix)
		if err != nil {
			t.Fatalf("LatestReference(%q): %v", tt.prefix, err)
		}
		if got != tt.want {
			t.Errorf("LatestReference(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}

	dup := &models.Order{ReferenceNumber: "WA-2025-000001", CustomerName: "Dup"}
	if err := repos.Orders.Create(ctx, dup); err == nil {
		t.Error("duplicate reference number was accepted")
	}
}

func TestOrderListAndCount(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	seed := []models.Order{
		{ReferenceNumber: "WA-2025-000001", CustomerName: "Amine", CustomerPhone: "0555", Status: "pending"},
		{ReferenceNumber: "WA-2025-000002", CustomerName: "Sara", CustomerPhone: "0666", Status: "shipped"},
		{ReferenceNumber: "WA-2025-000003", CustomerName: "Karim", CustomerPhone: "0777", Status: "shipped"},
	}
	for i := range seed {
		if err := repos.Orders.Create(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	shipped, err := repos.Orders.List(ctx, repository.OrderFilter{Status: "shipped"})
	if err != nil {
		t.Fatal(err)
	}
	if len(shipped) != 2 {
		t.Fatalf("shipped = %d, want 2", len(shipped))
	}
	if shipped[0].ReferenceNumber != "WA-2025-000003" {
		t.Errorf("newest first: got %s", shipped[0].ReferenceNumber)
	}

	found, err := repos.Orders.List(ctx, repository.OrderFilter{Search: "Sara"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].CustomerPhone != "0666" {
		t.Errorf("search = %+v", found)
	}

	limited, _ := repos.Orders.List(ctx, repository.OrderFilter{Page: repository.Page{Limit: 1}})
	if len(limited) != 1 {
		t.Errorf("limit = %d", len(limited))
	}

	n, err := repos.Orders.Count(ctx, "shipped")
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v", n, err)
	}
	all, _ := repos.Orders.Count(ctx, "")
	if all != 3 {
		t.Errorf("Count all = %d", all)
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	if _, err := repos.Orders.GetByID(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Orders.GetByID = %v", err)
	}
	if _, err := repos.Cars.GetByID(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Cars.GetByID = %v", err)
	}
	if err := repos.Cars.UpdateFields(ctx, 42, map[string]any{"status": "sold"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Cars.UpdateFields = %v", err)
	}
	if err := repos.ShippingForms.Delete(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ShippingForms.Delete = %v", err)
	}
	if _, err := repos.Settings.Get(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Settings.Get = %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Cars.Create(ctx, &models.Car{Brand: "Hyundai", Model: "Tucson"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction = %v", err)
	}
	if n, _ := repos.Cars.Count(ctx, ""); n != 0 {
		t.Errorf("rolled back car persisted: count %d", n)
	}

	err = repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Cars.Create(ctx, &models.Car{Brand: "Kia", Model: "Sorento"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := repos.Cars.Count(ctx, ""); n != 1 {
		t.Errorf("committed car missing: count %d", n)
	}
}

func TestDeleteByCarAndOrder(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	rows := []models.FinancialTransaction{
		{Type: "Income", Category: "Car Sale", Amount: 1, RelatedCarID: uintPtr(1), RelatedOrderID: uintPtr(10)},
		{Type: "Income", Category: "Car Sale", Amount: 2, RelatedCarID: uintPtr(1), RelatedOrderID: uintPtr(11)},
		{Type: "Income", Category: "Car Sale", Amount: 3, RelatedCarID: uintPtr(2), RelatedOrderID: uintPtr(10)},
		{Type: "Expense", Category: "Other", Amount: 4},
	}
	for i := range rows {
		if err := repos.Transactions.Create(ctx, &rows[i]); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repos.Transactions.DeleteByCarAndOrder(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
	left, _ := repos.Transactions.List(ctx, repository.TransactionFilter{})
	if len(left) != 3 {
		t.Errorf("remaining = %d, want 3", len(left))
	}

	byOrder, _ := repos.Transactions.List(ctx, repository.TransactionFilter{RelatedOrderID: uintPtr(10)})
	if len(byOrder) != 1 || byOrder[0].Amount != 3 {
		t.Errorf("by order = %+v", byOrder)
	}
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	if err := repos.Settings.Set(ctx, models.SettingRateDZDUSDT, "135", "a"); err != nil {
		t.Fatal(err)
	}
	if err := repos.Settings.Set(ctx, models.SettingRateDZDUSDT, "140", "b"); err != nil {
		t.Fatal(err)
	}
	if err := repos.Settings.Set(ctx, models.SettingRateUSDTKRW, "1350", "a"); err != nil {
		t.Fatal(err)
	}

	s, err := repos.Settings.Get(ctx, models.SettingRateDZDUSDT)
	if err != nil {
		t.Fatal(err)
	}
	if s.Value != "140" || s.UpdatedBy != "b" {
		t.Errorf("setting = %+v", s)
	}

	got, err := repos.Settings.GetMany(ctx, models.SettingRateDZDUSDT, models.SettingRateUSDTKRW, "other")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{models.SettingRateDZDUSDT: "140", models.SettingRateUSDTKRW: "1350"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetMany = %v", got)
	}
}

func TestCarPhotosStoredShapes(t *testing.T) {
	ctx := context.Background()
	db, repos := openTestDB(t)

	car := &models.Car{Brand: "Hyundai", Model: "Santa Fe", PhotosURLs: models.PhotoList{"a.jpg", "", "b.jpg"}}
	if err := repos.Cars.Create(ctx, car); err != nil {
		t.Fatal(err)
	}
	got, err := repos.Cars.GetByID(ctx, car.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a.jpg", "b.jpg"}; !reflect.DeepEqual([]string(got.PhotosURLs), want) {
		t.Errorf("photos = %#v", got.PhotosURLs)
	}

	// Rows written by older clients hold an array literal.
	if err := db.Exec("UPDATE car_inventory SET photos_urls = ? WHERE id = ?", `{x.jpg,null,y.jpg}`, car.ID).Error; err != nil {
		t.Fatal(err)
	}
	got, _ = repos.Cars.GetByID(ctx, car.ID)
	if want := []string{"x.jpg", "y.jpg"}; !reflect.DeepEqual([]string(got.PhotosURLs), want) {
		t.Errorf("legacy photos = %#v", got.PhotosURLs)
	}
}

func TestProfileEmailLookup(t *testing.T) {
	ctx := context.Background()
	_, repos := openTestDB(t)

	p := &models.Profile{Email: " Staff@Example.com ", PasswordHash: "x", Role: "staff", IsActive: true}
	if err := repos.Profiles.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := repos.Profiles.GetByEmail(ctx, "STAFF@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.Email != "staff@example.com" {
		t.Errorf("profile = %+v", got)
	}
	byID, err := repos.Profiles.GetByID(ctx, p.ID)
	if err != nil || byID.Email != got.Email {
		t.Errorf("GetByID = %+v, %v", byID, err)
	}
}
