package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dealership/internal/database"
	"dealership/internal/models"
	"dealership/internal/redis"
	"dealership/internal/repository"
	"dealership/internal/storage"
	"dealership/pkg/whatsapp"
)

const testBaseURL = "http://files.test"

type testEnv struct {
	repos    *repository.Repositories
	cache    *redis.Memory
	store    *storage.Local
	pdf      *fakePDF
	whatsapp *fakeWhatsApp
	settings SettingsService
	orders   OrderService
	cars     CarService
	forms    ShippingFormService
	txs      TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize("sqlite://:memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	store, err := storage.NewLocal(t.TempDir(), testBaseURL)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	env := &testEnv{
		repos:    repository.New(db),
		cache:    redis.NewMemory(),
		store:    store,
		pdf:      &fakePDF{},
		whatsapp: &fakeWhatsApp{},
	}
	env.settings = NewSettingsService(env.repos.Settings, env.cache, time.Minute, ExchangeRates{DZDPerUSDT: 135, KRWPerUSDT: 1350})
	env.orders = NewOrderService(env.repos, env.cache, 30*time.Minute, env.whatsapp)
	env.cars = NewCarService(env.repos, store, env.whatsapp)
	env.forms = NewShippingFormService(env.repos, store, env.pdf, env.whatsapp)
	env.txs = NewTransactionService(env.repos, env.settings, env.forms)
	return env
}

// exists reports whether a URL handed out by the store still has a file.
func (e *testEnv) exists(t *testing.T, url string) bool {
	t.Helper()
	p, ok := e.store.PathFor(url)
	if !ok {
		t.Fatalf("foreign url %q", url)
	}
	_, err := os.Stat(filepath.Join(e.store.Root, filepath.FromSlash(p)))
	return err == nil
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func uintPtr(v uint) *uint { return &v }

type fakePDF struct {
	calls int
	err   error
}

func (f *fakePDF) Render(form *models.ShippingForm) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3 " + form.CustomerName), nil
}

type sentMessage struct {
	Phone   string
	Message string
}

type fakeWhatsApp struct {
	mu      sync.Mutex
	enabled bool
	sent    []sentMessage
}

func (f *fakeWhatsApp) Enabled() bool { return f.enabled }

func (f *fakeWhatsApp) SendMessage(ctx context.Context, phone, message string) error {
	if !f.enabled {
		return whatsapp.ErrNotConfigured
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Phone: phone, Message: message})
	return nil
}

func (f *fakeWhatsApp) Link(phone, message string) string {
	return whatsapp.DeepLink(phone, message)
}

func mustOrder(t *testing.T, env *testEnv, name string) *models.Order {
	t.Helper()
	order, err := env.orders.CreateOrder(context.Background(), OrderInput{
		CustomerName:  name,
		CustomerPhone: "0555 12 34 56",
		CarBrand:      "Hyundai",
		CarModel:      "Tucson",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func mustCar(t *testing.T, env *testEnv) *models.Car {
	t.Helper()
	car, err := env.cars.CreateCar(context.Background(), CarInput{
		Brand: "Kia",
		Model: "Sportage",
		Year:  2022,
		VIN:   "knapm81abc123456",
	})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}
