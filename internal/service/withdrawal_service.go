package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"magari/internal/domain"
	"magari/internal/models"
	"magari/internal/repository"
	"magari/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount = errors.New("withdrawal amount must be positive")
	ErrInvalidPhone  = errors.New("invalid payout phone number")
)

type WithdrawalService struct {
	withdrawals WithdrawalStore
	wallets     WalletStore
	provider    payment.Provider
	notif       Notifier
	timeout     time.Duration
}

func NewWithdrawalService(withdrawals WithdrawalStore, wallets WalletStore, provider payment.Provider, notif Notifier, timeout time.Duration) *WithdrawalService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WithdrawalService{
		withdrawals: withdrawals,
		wallets:     wallets,
		provider:    provider,
		notif:       notif,
		timeout:     timeout,
	}
}

// Create files a PENDING withdrawal request. The balance check here is a
// courtesy to the caller; the authoritative checks happen under the wallet
// lock at approval and again at processing.
func (s *WithdrawalService) Create(userID uint, amountCents int64, phone string) (*models.WithdrawalRequest, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	normalized := normalizePhone(phone)
	if normalized == "" {
		return nil, ErrInvalidPhone
	}
	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrInsufficientBalance
		}
		return nil, err
	}
	if amountCents > wallet.BalanceCents {
		return nil, repository.ErrInsufficientBalance
	}
	w := &models.WithdrawalRequest{
		UserID:      userID,
		WalletID:    wallet.ID,
		BatchRef:    fmt.Sprintf("wd-%s", uuid.New().String()),
		AmountCents: amountCents,
		PayoutPhone: normalized,
		Status:      domain.WithdrawalPending,
	}
	if err := s.withdrawals.Create(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Cancel is owner-only and valid from PENDING only.
func (s *WithdrawalService) Cancel(userID, id uint) (*models.WithdrawalRequest, error) {
	return s.withdrawals.Cancel(id, userID)
}

// Approve is performed by an administrator. The repository re-checks the
// wallet balance under a lock; a request whose wallet has since been drained
// fails with ErrInsufficientBalance even though it passed at creation time.
func (s *WithdrawalService) Approve(adminID, id uint) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.Approve(id, adminID)
	if err != nil {
		return nil, err
	}
	if s.notif != nil {
		_ = s.notif.Notify(w.UserID, "WITHDRAWAL_APPROVED", "Withdrawal approved",
			"Your withdrawal request has been approved and will be processed shortly.",
			map[string]interface{}{"withdrawal_id": w.ID, "amount_cents": w.AmountCents})
	}
	return w, nil
}

func (s *WithdrawalService) Reject(adminID, id uint, reason string) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.Reject(id, adminID, reason)
	if err != nil {
		return nil, err
	}
	if s.notif != nil {
		_ = s.notif.Notify(w.UserID, "WITHDRAWAL_REJECTED", "Withdrawal rejected",
			"Your withdrawal request was rejected: "+reason,
			map[string]interface{}{"withdrawal_id": w.ID})
	}
	return w, nil
}

// Process debits the wallet and hands the payout to the rail. The debit and
// the PROCESSING transition happen in one unit of work inside the
// repository; calling Process again on a request that is already
// PROCESSING or COMPLETED is a no-op that returns the row unchanged.
// If the transfer cannot even be initiated, the request is failed and the
// debit refunded immediately rather than left in limbo.
func (s *WithdrawalService) Process(ctx context.Context, id uint) (*models.WithdrawalRequest, error) {
	w, err := s.withdrawals.BeginProcessing(id)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return w, nil
		}
		return nil, err
	}
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, terr := s.provider.InitiateTransfer(tctx, payment.TransferRequest{
		AmountCents: w.AmountCents,
		PhoneNumber: w.PayoutPhone,
		Reason:      "Dealer withdrawal",
		BatchRef:    w.BatchRef,
	})
	if terr != nil {
		log.Printf("[Withdrawal] transfer init failed for %s: %v", w.BatchRef, terr)
		failed, ferr := s.withdrawals.MarkFailed(w.BatchRef, terr.Error())
		if ferr != nil {
			log.Printf("[Withdrawal] could not fail %s after transfer error: %v", w.BatchRef, ferr)
			return nil, ferr
		}
		return failed, fmt.Errorf("%w: %v", ErrGatewayUnavailable, terr)
	}
	if resp.TransferCode != "" {
		w.ProviderRef = resp.TransferCode
		if uerr := s.withdrawals.Update(w); uerr != nil {
			log.Printf("[Withdrawal] could not store provider ref for %s: %v", w.BatchRef, uerr)
		}
	}
	if s.notif != nil {
		_ = s.notif.Notify(w.UserID, "WITHDRAWAL_PROCESSING", "Withdrawal processing",
			"Your withdrawal is on its way.",
			map[string]interface{}{"withdrawal_id": w.ID, "amount_cents": w.AmountCents})
	}
	return w, nil
}

// HandleTransferEvent settles a PROCESSING withdrawal from the payout rail's
// webhook. Success completes it; failure or reversal fails it and the
// repository refunds the debit in the same unit of work. Events for rows in
// any other state are absorbed: the rail retries webhooks too.
func (s *WithdrawalService) HandleTransferEvent(event, batchRef, providerRef, reason string) error {
	switch event {
	case "transfer.success":
		w, err := s.withdrawals.MarkCompleted(batchRef, providerRef)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				log.Printf("[Withdrawal] transfer.success for %s in unexpected state, ignoring", batchRef)
				return nil
			}
			return err
		}
		if s.notif != nil {
			_ = s.notif.Notify(w.UserID, "WITHDRAWAL_COMPLETED", "Withdrawal completed",
				"Your withdrawal has been paid out.",
				map[string]interface{}{"withdrawal_id": w.ID, "amount_cents": w.AmountCents})
		}
		return nil
	case "transfer.failed", "transfer.reversed":
		if reason == "" {
			reason = event
		}
		w, err := s.withdrawals.MarkFailed(batchRef, reason)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				log.Printf("[Withdrawal] %s for %s in unexpected state, ignoring", event, batchRef)
				return nil
			}
			return err
		}
		if s.notif != nil {
			_ = s.notif.Notify(w.UserID, "WITHDRAWAL_FAILED", "Withdrawal failed",
				"Your withdrawal could not be paid out; the amount has been returned to your wallet.",
				map[string]interface{}{"withdrawal_id": w.ID, "amount_cents": w.AmountCents})
		}
		return nil
	default:
		log.Printf("[Withdrawal] unhandled transfer event %q for %s", event, batchRef)
		return nil
	}
}

func (s *WithdrawalService) ListMine(userID uint) ([]models.WithdrawalRequest, error) {
	return s.withdrawals.ListByUser(userID)
}

func (s *WithdrawalService) ListPending() ([]models.WithdrawalRequest, error) {
	return s.withdrawals.ListByStatus(domain.WithdrawalPending)
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizePhone coerces a Kenyan phone number into 254XXXXXXXXX form.
func normalizePhone(s string) string {
	s = nonDigits.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "0") {
		s = "254" + s[1:]
	} else if !strings.HasPrefix(s, "254") {
		s = "254" + s
	}
	if len(s) != 12 {
		return ""
	}
	return s
}
