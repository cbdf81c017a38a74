package models

import (
	"time"

	"gorm.io/gorm"
)

// Inspection is the business object a paid INSPECTION or BOOKING checkout
// produces. The unique index on TransactionID guarantees at most one
// inspection per payment even when the checkout confirmation races the
// gateway webhook.
type Inspection struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VehicleID     uint           `gorm:"not null;index" json:"vehicle_id"`
	BuyerID       uint           `gorm:"not null;index" json:"buyer_id"`
	DealerID      uint           `gorm:"not null;index" json:"dealer_id"`
	TransactionID uint           `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Kind          string         `gorm:"size:20;not null" json:"kind"` // MECHANICAL | TEST_DRIVE
	Status        string         `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`
	ScheduledFor  *time.Time     `json:"scheduled_for"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
}

func (Inspection) TableName() string { return "inspections" }
