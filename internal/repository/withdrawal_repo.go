package repository

import (
	"errors"
	"time"

	"magari/internal/domain"
	"magari/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyProcessed signals an idempotent replay of a withdrawal that has
// already been debited (PROCESSING or later). Callers treat it as success.
var ErrAlreadyProcessed = errors.New("withdrawal already processed")

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(w *models.WithdrawalRequest) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) Update(w *models.WithdrawalRequest) error {
	return r.db.Save(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByBatchRef(batchRef string) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.Where("batch_ref = ?", batchRef).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByUser(userID uint) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) ListByStatus(status string) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.Where("status = ?", status).Order("id ASC").Find(&list).Error
	return list, err
}

// Approve moves PENDING -> APPROVED. The wallet balance is re-checked under
// a lock at approval time, not trusted from creation time: the wallet may
// have been drained since the request was filed. Taking the wallet lock here
// also serializes approval against concurrent processing on the same wallet.
func (r *WithdrawalRepository) Approve(id, adminID uint) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error; err != nil {
			return err
		}
		if w.Status != domain.WithdrawalPending {
			return ErrInvalidTransition
		}
		var wallet models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wallet, w.WalletID).Error; err != nil {
			return err
		}
		if w.AmountCents > wallet.BalanceCents {
			return ErrInsufficientBalance
		}
		now := time.Now()
		if err := tx.Model(&w).Updates(map[string]interface{}{
			"status":      domain.WithdrawalApproved,
			"approved_by": adminID,
			"approved_at": now,
		}).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalApproved
		w.ApprovedBy = &adminID
		w.ApprovedAt = &now
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Reject moves PENDING -> REJECTED.
func (r *WithdrawalRepository) Reject(id, adminID uint, reason string) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error; err != nil {
			return err
		}
		if w.Status != domain.WithdrawalPending {
			return ErrInvalidTransition
		}
		if err := tx.Model(&w).Updates(map[string]interface{}{
			"status":         domain.WithdrawalRejected,
			"approved_by":    adminID,
			"failure_reason": reason,
		}).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalRejected
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel moves PENDING -> CANCELLED, owner only.
func (r *WithdrawalRepository) Cancel(id, userID uint) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).First(&w).Error; err != nil {
			return err
		}
		if w.Status != domain.WithdrawalPending {
			return ErrInvalidTransition
		}
		if err := tx.Model(&w).Update("status", domain.WithdrawalCancelled).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalCancelled
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// BeginProcessing moves APPROVED -> PROCESSING and debits the wallet in the
// same transaction. The balance is re-validated under the wallet lock: two
// approved requests against the same wallet cannot both debit past zero.
// PROCESSING/COMPLETED rows return the row with ErrAlreadyProcessed so a
// repeated execute call is a no-op rather than a second debit.
func (r *WithdrawalRepository) BeginProcessing(id uint) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error; err != nil {
			return err
		}
		switch w.Status {
		case domain.WithdrawalProcessing, domain.WithdrawalCompleted:
			out = w
			return ErrAlreadyProcessed
		case domain.WithdrawalApproved:
		default:
			return ErrInvalidTransition
		}
		if _, err := applyLedgerTx(tx, w.UserID, -w.AmountCents,
			domain.EntryWithdrawalDebit, w.BatchRef); err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&w).Updates(map[string]interface{}{
			"status":       domain.WithdrawalProcessing,
			"processed_at": now,
		}).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalProcessing
		w.ProcessedAt = &now
		out = w
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return &out, ErrAlreadyProcessed
		}
		return nil, err
	}
	return &out, nil
}

// MarkCompleted moves PROCESSING -> COMPLETED (payout confirmed by the rail).
// Already-COMPLETED rows are returned as-is.
func (r *WithdrawalRepository) MarkCompleted(batchRef, providerRef string) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("batch_ref = ?", batchRef).First(&w).Error; err != nil {
			return err
		}
		if w.Status == domain.WithdrawalCompleted {
			out = w
			return nil
		}
		if w.Status != domain.WithdrawalProcessing {
			return ErrInvalidTransition
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":       domain.WithdrawalCompleted,
			"completed_at": now,
		}
		if providerRef != "" {
			updates["provider_ref"] = providerRef
		}
		if err := tx.Model(&w).Updates(updates).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalCompleted
		w.CompletedAt = &now
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkFailed moves PROCESSING -> FAILED and refunds the debit in the same
// transaction, so the wallet never loses money to a payout that never landed.
func (r *WithdrawalRepository) MarkFailed(batchRef, reason string) (*models.WithdrawalRequest, error) {
	var out models.WithdrawalRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("batch_ref = ?", batchRef).First(&w).Error; err != nil {
			return err
		}
		if w.Status == domain.WithdrawalFailed {
			out = w
			return nil
		}
		if w.Status != domain.WithdrawalProcessing {
			return ErrInvalidTransition
		}
		if _, err := applyLedgerTx(tx, w.UserID, w.AmountCents,
			domain.EntryWithdrawalRefund, w.BatchRef); err != nil {
			return err
		}
		if err := tx.Model(&w).Updates(map[string]interface{}{
			"status":         domain.WithdrawalFailed,
			"failure_reason": reason,
		}).Error; err != nil {
			return err
		}
		w.Status = domain.WithdrawalFailed
		w.FailureReason = reason
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
