package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"magari/internal/domain"
	"magari/internal/models"
	"magari/internal/repository"
	"magari/pkg/payment"

	"gorm.io/gorm"
)

var (
	// ErrNoRecentPayment: no reference was supplied and the recency matcher
	// found nothing. The client should retry or supply the reference.
	ErrNoRecentPayment = errors.New("no recent payment found")
	// ErrPaymentNotConfirmed: the gateway does not report the payment as
	// successful. Terminal for that reference.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	// ErrGatewayUnavailable: the gateway could not be reached after retries.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrUnknownPurpose: the purpose is not one the engine recognises.
	ErrUnknownPurpose = errors.New("unknown payment purpose")
	// ErrVehicleRequired: a dealer-revenue checkout needs a vehicle to
	// resolve the dealer being paid.
	ErrVehicleRequired = errors.New("vehicle not found for checkout")
)

const gatewayAttempts = 3

type CheckoutService struct {
	txns        TransactionStore
	revenue     Distributor
	wallets     WalletStore
	vehicles    VehicleStore
	inspections InspectionStore
	orders      OrderStore
	provider    payment.Provider
	notif       Notifier

	matchWindow    time.Duration
	gatewayTimeout time.Duration
}

func NewCheckoutService(
	txns TransactionStore,
	revenue Distributor,
	wallets WalletStore,
	vehicles VehicleStore,
	inspections InspectionStore,
	orders OrderStore,
	provider payment.Provider,
	notif Notifier,
	matchWindow, gatewayTimeout time.Duration,
) *CheckoutService {
	if matchWindow <= 0 {
		matchWindow = 5 * time.Minute
	}
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &CheckoutService{
		txns:           txns,
		revenue:        revenue,
		wallets:        wallets,
		vehicles:       vehicles,
		inspections:    inspections,
		orders:         orders,
		provider:       provider,
		notif:          notif,
		matchWindow:    matchWindow,
		gatewayTimeout: gatewayTimeout,
	}
}

// CheckoutResult is what a confirmed checkout hands back: the settled
// transaction, the applied revenue split (dealer purposes), and whichever
// dependent object the purpose produced.
type CheckoutResult struct {
	Transaction *models.Transaction  `json:"transaction"`
	Split       *models.RevenueSplit `json:"split,omitempty"`
	Inspection  *models.Inspection   `json:"inspection,omitempty"`
	Order       *models.Order        `json:"order,omitempty"`
	Deposit     *models.LedgerEntry  `json:"deposit,omitempty"`
}

// ConfirmAndProceed is the client-facing confirmation entry point. It
// resolves a transaction, either by explicit reference through gateway
// verification or by the recency matcher when no reference was supplied,
// then distributes revenue and creates the dependent business object exactly
// once per transaction, no matter how many times the client retries or how
// the call races the gateway webhook.
func (s *CheckoutService) ConfirmAndProceed(ctx context.Context, userID uint, purpose string, relatedID uint, reference string) (*CheckoutResult, error) {
	if !domain.ValidPurpose(purpose) {
		return nil, ErrUnknownPurpose
	}
	var (
		txn *models.Transaction
		err error
	)
	if reference != "" {
		txn, err = s.resolveByReference(ctx, userID, purpose, relatedID, reference)
	} else {
		txn, err = s.resolveByMatcher(ctx, userID, purpose)
	}
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Transaction: txn}
	if purpose == domain.PurposeWalletDeposit {
		entry, derr := s.creditDeposit(txn)
		if derr != nil {
			return nil, derr
		}
		result.Deposit = entry
		return result, nil
	}

	vehicleID := relatedID
	if vehicleID == 0 {
		vehicleID = txn.RelatedID
	}
	if vehicleID == 0 {
		return nil, ErrVehicleRequired
	}
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleRequired
		}
		return nil, err
	}
	split, err := s.revenue.Distribute(txn, vehicle.DealerID)
	if err != nil {
		return nil, err
	}
	result.Split = split

	switch purpose {
	case domain.PurposeInspection, domain.PurposeBooking:
		kind := domain.InspectionKindMechanical
		if purpose == domain.PurposeBooking {
			kind = domain.InspectionKindTestDrive
		}
		insp, ierr := s.inspections.GetByTransactionID(txn.ID)
		if ierr != nil {
			if !errors.Is(ierr, gorm.ErrRecordNotFound) {
				return nil, ierr
			}
			insp, ierr = s.inspections.Create(&models.Inspection{
				VehicleID:     vehicle.ID,
				BuyerID:       userID,
				DealerID:      vehicle.DealerID,
				TransactionID: txn.ID,
				Kind:          kind,
				Status:        "SCHEDULED",
			})
			if ierr != nil {
				return nil, ierr
			}
		}
		result.Inspection = insp
	case domain.PurposeOrder:
		order, oerr := s.orders.GetByTransactionID(txn.ID)
		if oerr != nil {
			if !errors.Is(oerr, gorm.ErrRecordNotFound) {
				return nil, oerr
			}
			order, oerr = s.orders.Create(&models.Order{
				VehicleID:     vehicle.ID,
				BuyerID:       userID,
				DealerID:      vehicle.DealerID,
				TransactionID: txn.ID,
				AmountCents:   txn.AmountCents,
				Status:        "PLACED",
			})
			if oerr != nil {
				return nil, oerr
			}
		}
		result.Order = order
	}
	if s.notif != nil {
		_ = s.notif.Notify(userID, "CHECKOUT_CONFIRMED", "Payment applied",
			"Your payment has been confirmed and applied.",
			map[string]interface{}{"reference": txn.Reference, "purpose": purpose})
	}
	return result, nil
}

// resolveByReference verifies the reference with the gateway and records or
// completes the transaction. The gateway's answer is untrusted: if a
// transaction already exists for the reference, its amount and owner must
// agree with what the gateway (and caller) claim.
func (s *CheckoutService) resolveByReference(ctx context.Context, userID uint, purpose string, relatedID uint, reference string) (*models.Transaction, error) {
	res, err := s.verifyWithRetry(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, ErrPaymentNotConfirmed
	}
	txn, created, err := s.txns.CreateOrGet(&models.Transaction{
		Reference:   reference,
		UserID:      userID,
		AmountCents: res.AmountCents,
		Currency:    res.Currency,
		Purpose:     purpose,
		RelatedID:   relatedID,
		Channel:     res.Channel,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		if txn.UserID != 0 && txn.UserID != userID {
			log.Printf("[Checkout] reference %s belongs to user %d, claimed by user %d",
				reference, txn.UserID, userID)
			return nil, ErrPaymentNotConfirmed
		}
		if txn.AmountCents != res.AmountCents {
			log.Printf("[Checkout] amount mismatch on %s: recorded %d, gateway %d",
				reference, txn.AmountCents, res.AmountCents)
			return nil, ErrPaymentNotConfirmed
		}
		if txn.Currency != "" && res.Currency != "" && txn.Currency != res.Currency {
			log.Printf("[Checkout] currency mismatch on %s: recorded %s, gateway %s",
				reference, txn.Currency, res.Currency)
			return nil, ErrPaymentNotConfirmed
		}
	}
	return s.complete(txn.Reference)
}

// resolveByMatcher falls back to the most recent unclaimed payment for the
// owner and purpose inside the match window. Best effort by design.
func (s *CheckoutService) resolveByMatcher(ctx context.Context, userID uint, purpose string) (*models.Transaction, error) {
	txn, err := s.txns.FindRecentUnclaimed(userID, purpose, s.matchWindow)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrNoRecentPayment
		}
		return nil, err
	}
	if txn.Status == domain.TxPending {
		res, verr := s.verifyWithRetry(ctx, txn.Reference)
		if verr != nil {
			return nil, verr
		}
		if !res.Success() {
			return nil, ErrPaymentNotConfirmed
		}
		return s.complete(txn.Reference)
	}
	return txn, nil
}

// complete marks the transaction completed, treating an
// already-completed replay as success.
func (s *CheckoutService) complete(reference string) (*models.Transaction, error) {
	txn, err := s.txns.MarkCompleted(reference)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return txn, nil
		}
		if errors.Is(err, repository.ErrInvalidTransition) {
			// FAILED or REVERSED; nothing to confirm
			return nil, ErrPaymentNotConfirmed
		}
		return nil, err
	}
	return txn, nil
}

func (s *CheckoutService) creditDeposit(txn *models.Transaction) (*models.LedgerEntry, error) {
	exists, err := s.wallets.HasEntryForSource(txn.Reference, domain.EntryDeposit)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}
	entry, err := s.wallets.Credit(txn.UserID, txn.AmountCents, domain.EntryDeposit, txn.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// lost the race to the gateway webhook
			log.Printf("[Checkout] deposit %s already credited", txn.Reference)
			return nil, nil
		}
		return nil, err
	}
	if s.notif != nil {
		_ = s.notif.Notify(txn.UserID, "WALLET_CREDITED", "Deposit received",
			"Your wallet deposit has been credited.",
			map[string]interface{}{"amount_cents": txn.AmountCents, "reference": txn.Reference})
	}
	return entry, nil
}

// verifyWithRetry calls the gateway with a bounded per-attempt timeout and a
// small number of retries with backoff. Persistent failure surfaces as
// ErrGatewayUnavailable, never as a silent success.
func (s *CheckoutService) verifyWithRetry(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= gatewayAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		vctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
		res, err := s.provider.VerifyTransaction(vctx, reference)
		cancel()
		if err == nil {
			return res, nil
		}
		lastErr = err
		log.Printf("[Checkout] gateway verify attempt %d/%d failed for %s: %v",
			attempt, gatewayAttempts, reference, err)
	}
	return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, lastErr)
}
