package repository

import (
	"magari/internal/models"

	"gorm.io/gorm"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(v *models.Vehicle) error {
	return r.db.Create(v).Error
}

func (r *VehicleRepository) GetByID(id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
