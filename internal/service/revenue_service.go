package service

import (
	"errors"
	"log"

	"magari/internal/domain"
	"magari/internal/models"

	"gorm.io/gorm"
)

// ErrNotCompleted is returned when distribution is attempted on a
// transaction that has not been confirmed by the gateway.
var ErrNotCompleted = errors.New("transaction not completed")

type RevenueService struct {
	revenue RevenueStore
	notif   Notifier
}

func NewRevenueService(revenue RevenueStore, notif Notifier) *RevenueService {
	return &RevenueService{revenue: revenue, notif: notif}
}

// SplitAmount divides amountCents per the settings: the dealer share is
// floored to the smallest currency unit and the platform absorbs the
// rounding remainder, so the two shares always sum to the amount exactly.
func SplitAmount(amountCents int64, s *models.RevenueSetting) (dealerCents, platformCents int64) {
	dealerCents = amountCents * int64(s.DealerPercentage) / 100
	platformCents = amountCents - dealerCents
	return dealerCents, platformCents
}

// Distribute computes and persists the revenue split for a completed
// transaction and credits the dealer's wallet exactly once. Replays are
// absorbed: an already-settled split is returned unchanged, and a split that
// was persisted but not yet credited (a crashed earlier attempt) resumes at
// the credit step without recomputing amounts, even if the admin has since
// changed the active percentages.
func (s *RevenueService) Distribute(t *models.Transaction, dealerID uint) (*models.RevenueSplit, error) {
	if t.Status != domain.TxCompleted {
		return nil, ErrNotCompleted
	}
	split, err := s.revenue.SplitByTransactionID(t.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		setting, serr := s.revenue.ActiveSetting()
		if serr != nil {
			return nil, serr
		}
		dealerCents, platformCents := SplitAmount(t.AmountCents, setting)
		split, err = s.revenue.CreateSplit(&models.RevenueSplit{
			TransactionID:       t.ID,
			DealerID:            dealerID,
			DealerAmountCents:   dealerCents,
			PlatformAmountCents: platformCents,
			DealerPercentage:    setting.DealerPercentage,
			PlatformPercentage:  setting.PlatformPercentage,
		})
		if err != nil {
			return nil, err
		}
	} else if split.DealerCredited {
		return split, nil
	}
	settled, entry, err := s.revenue.SettleDealerShare(split.ID)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		log.Printf("[Revenue] dealer %d credited %d cents for transaction %d (ledger entry %d)",
			settled.DealerID, settled.DealerAmountCents, settled.TransactionID, entry.ID)
		if s.notif != nil {
			_ = s.notif.Notify(settled.DealerID, "REVENUE_CREDITED", "Sale proceeds credited",
				"Your share of a completed payment has been credited to your wallet.",
				map[string]interface{}{
					"amount_cents":   settled.DealerAmountCents,
					"transaction_id": settled.TransactionID,
				})
		}
	}
	return settled, nil
}
