package repository

import (
	"context"

	"dealership/internal/models"

	"gorm.io/gorm"
)

type CarFilter struct {
	Status string
	Brand  string
	Page
}

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id uint) (*models.Car, error)
	GetByVIN(ctx context.Context, vin string) (*models.Car, error)
	List(ctx context.Context, filter CarFilter) ([]models.Car, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, car *models.Car) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type carRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepository) GetByID(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (r *carRepository) GetByVIN(ctx context.Context, vin string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&car).Error; err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (r *carRepository) List(ctx context.Context, filter CarFilter) ([]models.Car, error) {
	q := r.db.WithContext(ctx).Model(&models.Car{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	var cars []models.Car
	err := filter.apply(q).Order("created_at DESC, id DESC").Find(&cars).Error
	return cars, err
}

func (r *carRepository) Count(ctx context.Context, status string) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Car{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *carRepository) Update(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *carRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return updateFields(ctx, r.db, &models.Car{}, id, fields)
}

func (r *carRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Car{}, id)
}
