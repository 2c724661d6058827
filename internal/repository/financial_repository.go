package repository

import (
	"context"
	"time"

	"dealership/internal/models"

	"gorm.io/gorm"
)

type TransactionFilter struct {
	Type           string
	Category       string
	RelatedOrderID *uint
	From, To       *time.Time
	Page
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.FinancialTransaction) error
	GetByID(ctx context.Context, id uint) (*models.FinancialTransaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.FinancialTransaction, error)
	Update(ctx context.Context, tx *models.FinancialTransaction) error
	Delete(ctx context.Context, id uint) error
	DeleteByCarAndOrder(ctx context.Context, carID, orderID uint) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.FinancialTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.FinancialTransaction, error) {
	var tx models.FinancialTransaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.FinancialTransaction, error) {
	q := r.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.RelatedOrderID != nil {
		q = q.Where("related_order_id = ?", *filter.RelatedOrderID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date < ?", *filter.To)
	}
	var txs []models.FinancialTransaction
	err := filter.apply(q).Order("date DESC, id DESC").Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.FinancialTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.FinancialTransaction{}, id)
}

// DeleteByCarAndOrder removes transactions created for exactly this
// car/order pairing.
func (r *transactionRepository) DeleteByCarAndOrder(ctx context.Context, carID, orderID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("related_car_id = ? AND related_order_id = ?", carID, orderID).
		Delete(&models.FinancialTransaction{})
	return res.RowsAffected, res.Error
}
