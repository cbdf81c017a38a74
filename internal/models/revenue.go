package models

import (
	"time"

	"gorm.io/gorm"
)

// RevenueSetting is the admin-editable dealer/platform percentage pair. At
// most one row is active at a time; the distributor reads the active row at
// the moment of distribution, never a cached copy.
type RevenueSetting struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	DealerPercentage   int            `gorm:"not null" json:"dealer_percentage"`
	PlatformPercentage int            `gorm:"not null" json:"platform_percentage"`
	IsActive           bool           `gorm:"not null;default:false;index" json:"is_active"`
	CreatedBy          uint           `json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RevenueSetting) TableName() string { return "revenue_settings" }

// RevenueSplit records how a completed transaction's amount was divided.
// One-to-one with the transaction (unique index); DealerAmountCents +
// PlatformAmountCents always equals the transaction amount. DealerCredited
// flips false->true exactly once, when the dealer wallet credit lands.
type RevenueSplit struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	TransactionID       uint           `gorm:"uniqueIndex;not null" json:"transaction_id"`
	DealerID            uint           `gorm:"not null;index" json:"dealer_id"`
	DealerAmountCents   int64          `gorm:"not null" json:"dealer_amount_cents"`
	PlatformAmountCents int64          `gorm:"not null" json:"platform_amount_cents"`
	DealerPercentage    int            `gorm:"not null" json:"dealer_percentage"` // snapshot of the setting applied
	PlatformPercentage  int            `gorm:"not null" json:"platform_percentage"`
	DealerCredited      bool           `gorm:"not null;default:false" json:"dealer_credited"`
	CreditedAt          *time.Time     `json:"credited_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"-"`
}

func (RevenueSplit) TableName() string { return "revenue_splits" }
