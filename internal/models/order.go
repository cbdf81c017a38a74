package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the business object a paid ORDER checkout produces. Same
// one-per-transaction guarantee as Inspection.
type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VehicleID     uint           `gorm:"not null;index" json:"vehicle_id"`
	BuyerID       uint           `gorm:"not null;index" json:"buyer_id"`
	DealerID      uint           `gorm:"not null;index" json:"dealer_id"`
	TransactionID uint           `gorm:"uniqueIndex;not null" json:"transaction_id"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	Status        string         `gorm:"size:20;not null;default:'PLACED'" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
}

func (Order) TableName() string { return "orders" }
