package service

import (
	"errors"
	"log"

	"magari/internal/domain"
	"magari/internal/models"
	"magari/internal/repository"

	"gorm.io/gorm"
)

// ChargeEvent is a normalized gateway charge notification. Delivery is
// at-least-once and unordered; Reference is the only identity that matters.
type ChargeEvent struct {
	Event       string // charge.success | charge.failed
	Reference   string
	AmountCents int64
	Currency    string
	Channel     string
	Purpose     string
	RelatedID   uint
	UserID      uint
}

type WebhookService struct {
	txns        TransactionStore
	wallets     WalletStore
	vehicles    VehicleStore
	inspections InspectionStore
	orders      OrderStore
	revenue     Distributor
	notif       Notifier
}

func NewWebhookService(
	txns TransactionStore,
	wallets WalletStore,
	vehicles VehicleStore,
	inspections InspectionStore,
	orders OrderStore,
	revenue Distributor,
	notif Notifier,
) *WebhookService {
	return &WebhookService{
		txns:        txns,
		wallets:     wallets,
		vehicles:    vehicles,
		inspections: inspections,
		orders:      orders,
		revenue:     revenue,
		notif:       notif,
	}
}

// HandleCharge upserts the transaction for the event's reference and applies
// whatever side effects are safe at this point. It never fails because the
// dependent business object does not exist yet; a webhook routinely lands
// before the client finishes its checkout flow, and the transaction record
// it leaves behind is exactly what the checkout orchestrator picks up later.
func (s *WebhookService) HandleCharge(ev ChargeEvent) error {
	if ev.Reference == "" {
		log.Printf("[Webhook] charge event without reference, ignoring")
		return nil
	}
	txn, created, err := s.txns.CreateOrGet(&models.Transaction{
		Reference:   ev.Reference,
		UserID:      ev.UserID,
		AmountCents: ev.AmountCents,
		Currency:    ev.Currency,
		Purpose:     ev.Purpose,
		RelatedID:   ev.RelatedID,
		Channel:     ev.Channel,
		Status:      domain.TxPending,
	})
	if err != nil {
		return err
	}
	if created {
		log.Printf("[Webhook] recorded transaction %s (purpose=%s user=%d amount=%d)",
			ev.Reference, ev.Purpose, ev.UserID, ev.AmountCents)
	}

	switch ev.Event {
	case "charge.failed":
		if _, err := s.txns.MarkFailed(ev.Reference); err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				// failure event after completion: out-of-order delivery, keep COMPLETED
				log.Printf("[Webhook] ignoring charge.failed for already-settled %s", ev.Reference)
				return nil
			}
			return err
		}
		return nil
	case "charge.success":
		updated, err := s.txns.MarkCompleted(ev.Reference)
		if err != nil && !errors.Is(err, repository.ErrAlreadyCompleted) {
			if errors.Is(err, repository.ErrInvalidTransition) {
				log.Printf("[Webhook] charge.success for %s in status %s, cannot complete",
					ev.Reference, txn.Status)
				return nil
			}
			return err
		}
		txn = updated
		return s.applyCompleted(txn)
	default:
		log.Printf("[Webhook] unhandled charge event %q for %s", ev.Event, ev.Reference)
		return nil
	}
}

// applyCompleted performs the side effects that are safe without the client:
// deposit credits, and revenue distribution when the checkout flow has
// already linked a dependent object. Everything here is idempotent, so a
// replayed event changes nothing.
func (s *WebhookService) applyCompleted(txn *models.Transaction) error {
	if txn.Purpose == domain.PurposeWalletDeposit {
		exists, err := s.wallets.HasEntryForSource(txn.Reference, domain.EntryDeposit)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := s.wallets.Credit(txn.UserID, txn.AmountCents, domain.EntryDeposit, txn.Reference); err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				// lost the race to a concurrent checkout confirmation
				log.Printf("[Webhook] deposit %s already credited", txn.Reference)
				return nil
			}
			return err
		}
		if s.notif != nil {
			_ = s.notif.Notify(txn.UserID, "WALLET_CREDITED", "Deposit received",
				"Your wallet deposit has been credited.",
				map[string]interface{}{"amount_cents": txn.AmountCents, "reference": txn.Reference})
		}
		return nil
	}

	if !domain.DealerRevenuePurpose(txn.Purpose) {
		return nil
	}
	if !s.dependentObjectExists(txn.ID) {
		// client hasn't confirmed yet; the orchestrator distributes when it does
		log.Printf("[Webhook] %s completed, awaiting checkout confirmation", txn.Reference)
		if s.notif != nil {
			_ = s.notif.Notify(txn.UserID, "PAYMENT_CONFIRMED", "Payment confirmed",
				"Your payment was received. Finish checkout to proceed.",
				map[string]interface{}{"reference": txn.Reference})
		}
		return nil
	}
	if txn.RelatedID == 0 {
		log.Printf("[Webhook] %s has a linked object but no vehicle, skipping distribution", txn.Reference)
		return nil
	}
	vehicle, err := s.vehicles.GetByID(txn.RelatedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Webhook] vehicle %d not found for %s, deferring distribution",
				txn.RelatedID, txn.Reference)
			return nil
		}
		return err
	}
	if _, err := s.revenue.Distribute(txn, vehicle.DealerID); err != nil {
		return err
	}
	return nil
}

func (s *WebhookService) dependentObjectExists(transactionID uint) bool {
	if _, err := s.inspections.GetByTransactionID(transactionID); err == nil {
		return true
	}
	if _, err := s.orders.GetByTransactionID(transactionID); err == nil {
		return true
	}
	return false
}
