package repository

import (
	"context"

	"dealership/internal/models"

	"gorm.io/gorm"
)

type ShippingFormFilter struct {
	Status string
	Page
}

type ShippingFormRepository interface {
	Create(ctx context.Context, form *models.ShippingForm) error
	GetByID(ctx context.Context, id uint) (*models.ShippingForm, error)
	FindByVIN(ctx context.Context, vin string) (*models.ShippingForm, error)
	List(ctx context.Context, filter ShippingFormFilter) ([]models.ShippingForm, error)
	Update(ctx context.Context, form *models.ShippingForm) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type shippingFormRepository struct {
	db *gorm.DB
}

func NewShippingFormRepository(db *gorm.DB) ShippingFormRepository {
	return &shippingFormRepository{db: db}
}

func (r *shippingFormRepository) Create(ctx context.Context, form *models.ShippingForm) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *shippingFormRepository) GetByID(ctx context.Context, id uint) (*models.ShippingForm, error) {
	var form models.ShippingForm
	if err := r.db.WithContext(ctx).First(&form, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &form, nil
}

func (r *shippingFormRepository) FindByVIN(ctx context.Context, vin string) (*models.ShippingForm, error) {
	var form models.ShippingForm
	if err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&form).Error; err != nil {
		return nil, notFound(err)
	}
	return &form, nil
}

func (r *shippingFormRepository) List(ctx context.Context, filter ShippingFormFilter) ([]models.ShippingForm, error) {
	q := r.db.WithContext(ctx).Model(&models.ShippingForm{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var forms []models.ShippingForm
	err := filter.apply(q).Order("created_at DESC, id DESC").Find(&forms).Error
	return forms, err
}

func (r *shippingFormRepository) Update(ctx context.Context, form *models.ShippingForm) error {
	return r.db.WithContext(ctx).Save(form).Error
}

func (r *shippingFormRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return updateFields(ctx, r.db, &models.ShippingForm{}, id, fields)
}

func (r *shippingFormRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.ShippingForm{}, id)
}
