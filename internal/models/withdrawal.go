package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest is a dealer-initiated request to move funds out of a
// wallet. PENDING -> APPROVED|REJECTED|CANCELLED; APPROVED -> PROCESSING ->
// COMPLETED|FAILED. The wallet is debited when processing starts, and
// refunded if the payout fails.
type WithdrawalRequest struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	WalletID      uint           `gorm:"not null;index" json:"wallet_id"`
	BatchRef      string         `gorm:"size:64;uniqueIndex;not null" json:"batch_ref"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	PayoutPhone   string         `gorm:"size:20;not null" json:"payout_phone"`
	Status        string         `gorm:"size:20;not null;index" json:"status"`
	ApprovedBy    *uint          `json:"approved_by"`
	ApprovedAt    *time.Time     `json:"approved_at"`
	ProcessedAt   *time.Time     `json:"processed_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
	FailureReason string         `gorm:"size:255" json:"failure_reason,omitempty"`
	ProviderRef   string         `gorm:"size:128" json:"provider_ref"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
