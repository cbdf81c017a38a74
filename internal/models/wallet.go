package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a user's balance. BalanceCents must equal the sum of the
// wallet's ledger entry deltas at all times; every mutation goes through the
// wallet repository, which appends a LedgerEntry and updates the balance in
// one transaction under a row lock.
type Wallet struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceCents int64          `gorm:"not null;default:0" json:"balance_cents"`
	Currency     string         `gorm:"size:3;default:'KES'" json:"currency"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }

// LedgerEntry is an append-only, signed record of a balance change.
// ResultingBalanceCents snapshots the wallet balance after the change, taken
// under the wallet row lock, for audit. The unique (entry_type,
// source_reference) index makes a second entry for the same source a
// duplicate-key error, so replayed or racing credits cannot both land.
type LedgerEntry struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	WalletID              uint      `gorm:"not null;index" json:"wallet_id"`
	DeltaCents            int64     `gorm:"not null" json:"delta_cents"` // positive = credit, negative = debit
	ResultingBalanceCents int64     `gorm:"not null" json:"resulting_balance_cents"`
	EntryType             string    `gorm:"size:30;not null;uniqueIndex:idx_entry_source" json:"entry_type"` // REVENUE_CREDIT, DEPOSIT, WITHDRAWAL_DEBIT, WITHDRAWAL_REFUND
	SourceReference       string    `gorm:"size:128;not null;uniqueIndex:idx_entry_source" json:"source_reference"`
	CreatedAt             time.Time `json:"created_at"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
