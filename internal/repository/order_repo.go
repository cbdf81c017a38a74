package repository

import (
	"magari/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order, collapsing onto the existing row when the unique
// transaction_id index rejects a duplicate.
func (r *OrderRepository) Create(o *models.Order) (*models.Order, error) {
	if err := r.db.Create(o).Error; err != nil {
		if existing, gerr := r.GetByTransactionID(o.TransactionID); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) GetByTransactionID(transactionID uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.Where("transaction_id = ?", transactionID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByBuyer(buyerID uint) ([]models.Order, error) {
	var list []models.Order
	err := r.db.Where("buyer_id = ?", buyerID).Order("id DESC").Find(&list).Error
	return list, err
}
