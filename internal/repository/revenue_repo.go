package repository

import (
	"errors"
	"time"

	"magari/internal/domain"
	"magari/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoActiveSettings means no revenue split configuration is active. This is
// an operator problem, not something to retry.
var ErrNoActiveSettings = errors.New("no active revenue settings")

type RevenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

// ActiveSetting returns the single active settings row. It is read fresh on
// every distribution; an admin can change rates between requests.
func (r *RevenueRepository) ActiveSetting() (*models.RevenueSetting, error) {
	var s models.RevenueSetting
	err := r.db.Where("is_active = ?", true).Order("id DESC").First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSettings
		}
		return nil, err
	}
	return &s, nil
}

func (r *RevenueRepository) ListSettings() ([]models.RevenueSetting, error) {
	var list []models.RevenueSetting
	err := r.db.Order("id DESC").Find(&list).Error
	return list, err
}

// CreateSetting inserts a new settings row. When it is created active, the
// previously active row is deactivated in the same transaction so at most
// one row is ever authoritative.
func (r *RevenueRepository) CreateSetting(s *models.RevenueSetting) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if s.IsActive {
			if err := tx.Model(&models.RevenueSetting{}).
				Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(s).Error
	})
}

func (r *RevenueRepository) ActivateSetting(id uint) (*models.RevenueSetting, error) {
	var s models.RevenueSetting
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RevenueSetting{}).
			Where("is_active = ? AND id <> ?", true, id).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&s).Update("is_active", true).Error; err != nil {
			return err
		}
		s.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RevenueRepository) DeactivateSetting(id uint) error {
	return r.db.Model(&models.RevenueSetting{}).Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *RevenueRepository) SplitByTransactionID(transactionID uint) (*models.RevenueSplit, error) {
	var s models.RevenueSplit
	if err := r.db.Where("transaction_id = ?", transactionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSplit persists a split row. A duplicate-key failure on the unique
// transaction_id index means a concurrent distributor won the race; the
// existing row is returned unchanged.
func (r *RevenueRepository) CreateSplit(s *models.RevenueSplit) (*models.RevenueSplit, error) {
	if err := r.db.Create(s).Error; err != nil {
		if existing, gerr := r.SplitByTransactionID(s.TransactionID); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return s, nil
}

// SettleDealerShare credits the dealer's wallet for a persisted split and
// flips dealer_credited, in one transaction under a lock on the split row.
// Calling it again after it has succeeded is a no-op that returns the settled
// split, which is what makes distribution retries safe: the split is never
// recomputed and the wallet is never credited twice.
func (r *RevenueRepository) SettleDealerShare(splitID uint) (*models.RevenueSplit, *models.LedgerEntry, error) {
	var (
		out   models.RevenueSplit
		entry *models.LedgerEntry
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var s models.RevenueSplit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&s, splitID).Error; err != nil {
			return err
		}
		if s.DealerCredited {
			out = s
			return nil
		}
		var t models.Transaction
		if err := tx.First(&t, s.TransactionID).Error; err != nil {
			return err
		}
		if err := ensureWalletTx(tx, s.DealerID); err != nil {
			return err
		}
		e, err := applyLedgerTx(tx, s.DealerID, s.DealerAmountCents, domain.EntryRevenueCredit, t.Reference)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&s).Updates(map[string]interface{}{
			"dealer_credited": true,
			"credited_at":     now,
		}).Error; err != nil {
			return err
		}
		s.DealerCredited = true
		s.CreditedAt = &now
		out = s
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, entry, nil
}

// ensureWalletTx creates the user's wallet inside tx if it doesn't exist yet.
func ensureWalletTx(tx *gorm.DB, userID uint) error {
	var w models.Wallet
	err := tx.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.Wallet{UserID: userID, Currency: "KES"}).Error
}
