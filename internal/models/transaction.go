package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a recorded payment attempt keyed by the provider-issued
// reference. The unique index on Reference is what makes webhook replays and
// concurrent checkout confirmations collapse onto a single row.
type Transaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Reference   string         `gorm:"size:128;uniqueIndex;not null" json:"reference"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'KES'" json:"currency"`
	Purpose     string         `gorm:"size:20;not null;index" json:"purpose"` // INSPECTION, WALLET_DEPOSIT, ORDER, BOOKING
	RelatedID   uint           `gorm:"index" json:"related_id"`               // vehicle the payment was made against; 0 for deposits
	Status      string         `gorm:"size:20;not null;index" json:"status"`  // PENDING, COMPLETED, FAILED, REVERSED, LOCKED
	Channel     string         `gorm:"size:30" json:"channel"`                // card, mobile_money, ...
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }
