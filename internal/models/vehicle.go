package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is the minimal listing record the payment engine needs: inspections
// and orders reference a vehicle, and the vehicle's dealer receives the
// revenue share. Listing attributes and search live elsewhere.
type Vehicle struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DealerID   uint           `gorm:"not null;index" json:"dealer_id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	PriceCents int64          `gorm:"not null" json:"price_cents"`
	Currency   string         `gorm:"size:3;default:'KES'" json:"currency"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Dealer User `gorm:"foreignKey:DealerID" json:"-"`
}

func (Vehicle) TableName() string { return "vehicles" }
