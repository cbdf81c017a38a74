package repository

import (
	"errors"

	"magari/internal/models"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrDuplicateEntry      = errors.New("ledger entry already recorded for source")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, BalanceCents: 0, Currency: "KES"}
	if cerr := r.db.Create(w).Error; cerr != nil {
		// lost a create race on the unique user_id index
		if w2, gerr := r.GetByUserID(userID); gerr == nil {
			return w2, nil
		}
		return nil, cerr
	}
	return w, nil
}

// applyLedgerTx is the single path for wallet balance changes. It locks the
// wallet row, appends a ledger entry carrying the resulting balance, and
// updates the balance, all inside the caller's transaction. This is what
// keeps balance == sum(deltas) an invariant rather than a hope.
func applyLedgerTx(tx *gorm.DB, userID uint, delta int64, entryType, sourceRef string) (*models.LedgerEntry, error) {
	var w models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	newBalance := w.BalanceCents + delta
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}
	entry := &models.LedgerEntry{
		WalletID:              w.ID,
		DeltaCents:            delta,
		ResultingBalanceCents: newBalance,
		EntryType:             entryType,
		SourceReference:       sourceRef,
	}
	if err := tx.Create(entry).Error; err != nil {
		// insert race on the unique (entry_type, source_reference) index;
		// the winner already applied this change
		var dup *mysqldrv.MySQLError
		if errors.As(err, &dup) && dup.Number == 1062 {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	if err := tx.Model(&w).Update("balance_cents", newBalance).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Credit adds amountCents to the user's wallet atomically. The wallet is
// created if it doesn't exist yet (a dealer's first revenue share).
func (r *WalletRepository) Credit(userID uint, amountCents int64, entryType, sourceRef string) (*models.LedgerEntry, error) {
	if _, err := r.GetOrCreate(userID); err != nil {
		return nil, err
	}
	var entry *models.LedgerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		e, err := applyLedgerTx(tx, userID, amountCents, entryType, sourceRef)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit removes amountCents from the user's wallet atomically, failing with
// ErrInsufficientBalance if the balance would go negative.
func (r *WalletRepository) Debit(userID uint, amountCents int64, entryType, sourceRef string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		e, err := applyLedgerTx(tx, userID, -amountCents, entryType, sourceRef)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// HasEntryForSource reports whether a ledger entry of the given type already
// exists for the source reference. Used as the idempotency guard for
// deposit credits keyed on a transaction reference.
func (r *WalletRepository) HasEntryForSource(sourceRef, entryType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("source_reference = ? AND entry_type = ?", sourceRef, entryType).
		Count(&count).Error
	return count > 0, err
}

func (r *WalletRepository) Entries(walletID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := r.db.Where("wallet_id = ?", walletID).
		Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}
