package repository

import (
	"magari/internal/models"

	"gorm.io/gorm"
)

type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Create inserts an inspection. The unique index on transaction_id makes
// this the hard exactly-once guarantee: a duplicate insert from a racing
// webhook/checkout pair collapses onto the first row, which is returned.
func (r *InspectionRepository) Create(i *models.Inspection) (*models.Inspection, error) {
	if err := r.db.Create(i).Error; err != nil {
		if existing, gerr := r.GetByTransactionID(i.TransactionID); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return i, nil
}

func (r *InspectionRepository) GetByTransactionID(transactionID uint) (*models.Inspection, error) {
	var i models.Inspection
	if err := r.db.Where("transaction_id = ?", transactionID).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InspectionRepository) ListByBuyer(buyerID uint) ([]models.Inspection, error) {
	var list []models.Inspection
	err := r.db.Where("buyer_id = ?", buyerID).Order("id DESC").Find(&list).Error
	return list, err
}
