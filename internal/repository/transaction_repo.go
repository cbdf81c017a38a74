package repository

import (
	"errors"
	"time"

	"magari/internal/domain"
	"magari/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidTransition is returned when a status change would violate the
	// monotonic ordering (e.g. completing a FAILED transaction).
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyCompleted signals an idempotent replay: the transaction was
	// completed before this call. Callers treat it as success.
	ErrAlreadyCompleted = errors.New("transaction already completed")
	// ErrNoMatch is returned by FindRecentUnclaimed when nothing qualifies.
	ErrNoMatch = errors.New("no matching transaction")
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateOrGet returns the existing transaction for the reference unchanged,
// or inserts a new one. An insert race on the unique reference index is
// resolved by re-fetching the winner's row, so at-least-once webhook delivery
// and concurrent checkout confirmations converge on a single record.
// The second return value reports whether a new row was created.
func (r *TransactionRepository) CreateOrGet(t *models.Transaction) (*models.Transaction, bool, error) {
	var existing models.Transaction
	err := r.db.Where("reference = ?", t.Reference).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if t.Status == "" {
		t.Status = domain.TxPending
	}
	if err := r.db.Create(t).Error; err != nil {
		var winner models.Transaction
		if ferr := r.db.Where("reference = ?", t.Reference).First(&winner).Error; ferr == nil {
			return &winner, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

func (r *TransactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Where("reference = ?", reference).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkCompleted transitions PENDING -> COMPLETED under a row lock, so
// concurrent webhook and checkout callers serialize instead of racing.
// A transaction that is already COMPLETED returns the row together with
// ErrAlreadyCompleted; FAILED/REVERSED/LOCKED return ErrInvalidTransition.
func (r *TransactionRepository) MarkCompleted(reference string) (*models.Transaction, error) {
	var out models.Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).First(&t).Error; err != nil {
			return err
		}
		switch t.Status {
		case domain.TxCompleted:
			out = t
			return ErrAlreadyCompleted
		case domain.TxPending:
		default:
			return ErrInvalidTransition
		}
		now := time.Now()
		if err := tx.Model(&t).Updates(map[string]interface{}{
			"status":       domain.TxCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}
		t.Status = domain.TxCompleted
		t.CompletedAt = &now
		out = t
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			return &out, ErrAlreadyCompleted
		}
		return nil, err
	}
	return &out, nil
}

// MarkFailed transitions PENDING -> FAILED. Already-FAILED rows are returned
// as-is (idempotent); COMPLETED rows never regress and return
// ErrInvalidTransition.
func (r *TransactionRepository) MarkFailed(reference string) (*models.Transaction, error) {
	var out models.Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).First(&t).Error; err != nil {
			return err
		}
		switch t.Status {
		case domain.TxFailed:
			out = t
			return nil
		case domain.TxPending:
		default:
			return ErrInvalidTransition
		}
		if err := tx.Model(&t).Update("status", domain.TxFailed).Error; err != nil {
			return err
		}
		t.Status = domain.TxFailed
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindRecentUnclaimed is the fallback matcher for checkout confirmations that
// arrive without a payment reference: the most recent PENDING/COMPLETED
// transaction for the owner and purpose within the window that no inspection
// or order has claimed yet. Best effort; two concurrent payments for the same
// owner/purpose inside the window are ambiguous, and the newer one wins.
func (r *TransactionRepository) FindRecentUnclaimed(userID uint, purpose string, window time.Duration) (*models.Transaction, error) {
	cutoff := time.Now().Add(-window)
	var t models.Transaction
	err := r.db.
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Where("status IN ?", []string{domain.TxPending, domain.TxCompleted}).
		Where("created_at >= ?", cutoff).
		Where("id NOT IN (?)", r.db.Model(&models.Inspection{}).Select("transaction_id")).
		Where("id NOT IN (?)", r.db.Model(&models.Order{}).Select("transaction_id")).
		Order("created_at DESC, id DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoMatch
		}
		return nil, err
	}
	return &t, nil
}
