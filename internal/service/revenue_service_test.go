package service

import (
	"testing"
	"time"

	"magari/internal/domain"
	"magari/internal/models"
	"magari/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestSplitAmount(t *testing.T) {
	cases := []struct {
		name         string
		amount       int64
		dealerPct    int
		wantDealer   int64
		wantPlatform int64
	}{
		{"sixty forty on 10000", 10000, 60, 6000, 4000},
		{"remainder goes to platform", 101, 60, 60, 41},
		{"odd amount", 9999, 60, 5999, 4000},
		{"all to dealer", 10000, 100, 10000, 0},
		{"all to platform", 10000, 0, 0, 10000},
		{"one cent", 1, 60, 0, 1},
		{"zero", 0, 60, 0, 0},
		{"seventy thirty", 2550, 70, 1785, 765},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setting := &models.RevenueSetting{
				DealerPercentage:   tc.dealerPct,
				PlatformPercentage: 100 - tc.dealerPct,
			}
			dealer, platform := SplitAmount(tc.amount, setting)
			assert.Equal(t, tc.wantDealer, dealer)
			assert.Equal(t, tc.wantPlatform, platform)
			assert.Equal(t, tc.amount, dealer+platform, "shares must sum to the amount")
		})
	}
}

func TestDistributeCreatesAndSettlesSplit(t *testing.T) {
	revenue := new(MockRevenueStore)
	notif := new(MockNotifier)
	svc := NewRevenueService(revenue, notif)

	txn := &models.Transaction{ID: 7, Reference: "ref-7", AmountCents: 10000, Status: domain.TxCompleted}
	setting := &models.RevenueSetting{ID: 1, DealerPercentage: 60, PlatformPercentage: 40, IsActive: true}

	revenue.On("SplitByTransactionID", uint(7)).Return(nil, gorm.ErrRecordNotFound)
	revenue.On("ActiveSetting").Return(setting, nil)
	created := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerID: 2, DealerAmountCents: 6000, PlatformAmountCents: 4000}
	revenue.On("CreateSplit", mock.MatchedBy(func(s *models.RevenueSplit) bool {
		return s.TransactionID == 7 && s.DealerID == 2 &&
			s.DealerAmountCents == 6000 && s.PlatformAmountCents == 4000 &&
			s.DealerPercentage == 60 && s.PlatformPercentage == 40
	})).Return(created, nil)
	now := time.Now()
	settled := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerID: 2, DealerAmountCents: 6000, PlatformAmountCents: 4000, DealerCredited: true, CreditedAt: &now}
	entry := &models.LedgerEntry{ID: 11, DeltaCents: 6000, EntryType: domain.EntryRevenueCredit}
	revenue.On("SettleDealerShare", uint(3)).Return(settled, entry, nil)
	notif.On("Notify", uint(2), "REVENUE_CREDITED", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	got, err := svc.Distribute(txn, 2)
	assert.NoError(t, err)
	assert.True(t, got.DealerCredited)
	assert.Equal(t, int64(6000), got.DealerAmountCents)
	revenue.AssertExpectations(t)
	notif.AssertExpectations(t)
}

func TestDistributeReplayReturnsSettledSplitUnchanged(t *testing.T) {
	revenue := new(MockRevenueStore)
	svc := NewRevenueService(revenue, nil)

	txn := &models.Transaction{ID: 7, AmountCents: 10000, Status: domain.TxCompleted}
	existing := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerID: 2, DealerAmountCents: 6000, DealerCredited: true}
	revenue.On("SplitByTransactionID", uint(7)).Return(existing, nil)

	got, err := svc.Distribute(txn, 2)
	assert.NoError(t, err)
	assert.Same(t, existing, got)
	revenue.AssertNotCalled(t, "ActiveSetting")
	revenue.AssertNotCalled(t, "CreateSplit", mock.Anything)
	revenue.AssertNotCalled(t, "SettleDealerShare", mock.Anything)
}

func TestDistributeResumesUncreditedSplitWithoutRecomputing(t *testing.T) {
	revenue := new(MockRevenueStore)
	svc := NewRevenueService(revenue, nil)

	// split was persisted at 60/40 but the credit never landed; the active
	// setting has since changed and must not be consulted
	txn := &models.Transaction{ID: 7, AmountCents: 10000, Status: domain.TxCompleted}
	existing := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerID: 2, DealerAmountCents: 6000, PlatformAmountCents: 4000, DealerCredited: false}
	revenue.On("SplitByTransactionID", uint(7)).Return(existing, nil)
	settled := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerID: 2, DealerAmountCents: 6000, PlatformAmountCents: 4000, DealerCredited: true}
	revenue.On("SettleDealerShare", uint(3)).Return(settled, (*models.LedgerEntry)(nil), nil)

	got, err := svc.Distribute(txn, 2)
	assert.NoError(t, err)
	assert.True(t, got.DealerCredited)
	revenue.AssertNotCalled(t, "ActiveSetting")
	revenue.AssertNotCalled(t, "CreateSplit", mock.Anything)
}

func TestDistributeRejectsUncompletedTransaction(t *testing.T) {
	revenue := new(MockRevenueStore)
	svc := NewRevenueService(revenue, nil)

	for _, status := range []string{domain.TxPending, domain.TxFailed, domain.TxReversed, domain.TxLocked} {
		txn := &models.Transaction{ID: 7, AmountCents: 10000, Status: status}
		_, err := svc.Distribute(txn, 2)
		assert.ErrorIs(t, err, ErrNotCompleted, "status %s", status)
	}
	revenue.AssertNotCalled(t, "SplitByTransactionID", mock.Anything)
}

func TestDistributeFailsWithoutActiveSetting(t *testing.T) {
	revenue := new(MockRevenueStore)
	svc := NewRevenueService(revenue, nil)

	txn := &models.Transaction{ID: 7, AmountCents: 10000, Status: domain.TxCompleted}
	revenue.On("SplitByTransactionID", uint(7)).Return(nil, gorm.ErrRecordNotFound)
	revenue.On("ActiveSetting").Return(nil, repository.ErrNoActiveSettings)

	_, err := svc.Distribute(txn, 2)
	assert.ErrorIs(t, err, repository.ErrNoActiveSettings)
	revenue.AssertNotCalled(t, "CreateSplit", mock.Anything)
}
