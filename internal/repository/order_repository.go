package repository

import (
	"context"
	"strings"

	"dealership/internal/models"

	"gorm.io/gorm"
)

type OrderFilter struct {
	Status string
	Search string // matches reference, customer name or phone
	Page
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	LatestReference(ctx context.Context, prefix string) (string, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, order *models.Order) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("reference_number = ?", reference).First(&order).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// LatestReference returns the highest reference starting with prefix, or ""
// when none exists.
func (r *orderRepository) LatestReference(ctx context.Context, prefix string) (string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("reference_number LIKE ?", prefix+"%").
		Order("reference_number DESC").
		Limit(1).
		Pluck("reference_number", &refs).Error
	if err != nil || len(refs) == 0 {
		return "", err
	}
	return refs[0], nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("reference_number LIKE ? OR customer_name LIKE ? OR customer_phone LIKE ?", like, like, like)
	}
	var orders []models.Order
	err := filter.apply(q).Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count(ctx context.Context, status string) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return updateFields(ctx, r.db, &models.Order{}, id, fields)
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Order{}, id)
}
