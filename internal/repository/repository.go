package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories bundles every collection so a use case can run several
// writes inside one database transaction.
type Repositories struct {
	db *gorm.DB

	Orders        OrderRepository
	Cars          CarRepository
	Transactions  TransactionRepository
	ShippingForms ShippingFormRepository
	Settings      SettingsRepository
	Profiles      ProfileRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Orders:        NewOrderRepository(db),
		Cars:          NewCarRepository(db),
		Transactions:  NewTransactionRepository(db),
		ShippingForms: NewShippingFormRepository(db),
		Settings:      NewSettingsRepository(db),
		Profiles:      NewProfileRepository(db),
	}
}

// Transaction runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls every write back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Page limits list queries.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// updateFields applies a column map to one row and reports a missing row.
func updateFields(ctx context.Context, db *gorm.DB, model any, id any, fields map[string]any) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id any) error {
	res := db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
