package service

import (
	"testing"

	"magari/internal/domain"
	"magari/internal/models"
	"magari/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type webhookFixture struct {
	txns        *MockTransactionStore
	wallets     *MockWalletStore
	vehicles    *MockVehicleStore
	inspections *MockInspectionStore
	orders      *MockOrderStore
	revenue     *MockDistributor
	svc         *WebhookService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		txns:        new(MockTransactionStore),
		wallets:     new(MockWalletStore),
		vehicles:    new(MockVehicleStore),
		inspections: new(MockInspectionStore),
		orders:      new(MockOrderStore),
		revenue:     new(MockDistributor),
	}
	f.svc = NewWebhookService(f.txns, f.wallets, f.vehicles, f.inspections, f.orders, f.revenue, nil)
	return f
}

func depositEvent() ChargeEvent {
	return ChargeEvent{
		Event:       "charge.success",
		Reference:   "ref-1",
		AmountCents: 5000,
		Currency:    "KES",
		Purpose:     domain.PurposeWalletDeposit,
		UserID:      1,
	}
}

func TestHandleChargeIgnoresMissingReference(t *testing.T) {
	f := newWebhookFixture()
	err := f.svc.HandleCharge(ChargeEvent{Event: "charge.success"})
	assert.NoError(t, err)
	f.txns.AssertNotCalled(t, "CreateOrGet", mock.Anything)
}

func TestHandleChargeDepositReplaySingleCredit(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, AmountCents: 5000, Purpose: domain.PurposeWalletDeposit, Status: domain.TxCompleted}

	f.txns.On("CreateOrGet", mock.Anything).Return(txn, true, nil).Once()
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, false, nil)
	f.txns.On("MarkCompleted", "ref-1").Return(txn, nil).Once()
	f.txns.On("MarkCompleted", "ref-1").Return(txn, repository.ErrAlreadyCompleted)
	f.wallets.On("HasEntryForSource", "ref-1", domain.EntryDeposit).Return(false, nil).Once()
	f.wallets.On("HasEntryForSource", "ref-1", domain.EntryDeposit).Return(true, nil)
	entry := &models.LedgerEntry{ID: 11, DeltaCents: 5000}
	f.wallets.On("Credit", uint(1), int64(5000), domain.EntryDeposit, "ref-1").Return(entry, nil).Once()

	for i := 0; i < 5; i++ {
		assert.NoError(t, f.svc.HandleCharge(depositEvent()))
	}
	f.wallets.AssertNumberOfCalls(t, "Credit", 1)
}

func TestHandleChargeDepositAbsorbsCreditRace(t *testing.T) {
	// the checkout confirmation can credit between this handler's guard read
	// and its insert; the unique ledger index rejects the second credit and
	// the event is acked as a replay
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, AmountCents: 5000, Purpose: domain.PurposeWalletDeposit, Status: domain.TxCompleted}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, false, nil)
	f.txns.On("MarkCompleted", "ref-1").Return(txn, repository.ErrAlreadyCompleted)
	f.wallets.On("HasEntryForSource", "ref-1", domain.EntryDeposit).Return(false, nil)
	f.wallets.On("Credit", uint(1), int64(5000), domain.EntryDeposit, "ref-1").
		Return(nil, repository.ErrDuplicateEntry)

	assert.NoError(t, f.svc.HandleCharge(depositEvent()))
	f.wallets.AssertNumberOfCalls(t, "Credit", 1)
}

func TestHandleChargeFailedAfterCompletedIsIgnored(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, Status: domain.TxCompleted}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, false, nil)
	f.txns.On("MarkFailed", "ref-1").Return(nil, repository.ErrInvalidTransition)

	err := f.svc.HandleCharge(ChargeEvent{Event: "charge.failed", Reference: "ref-1"})
	assert.NoError(t, err)
}

func TestHandleChargeFailedMarksPendingFailed(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", Status: domain.TxPending}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, true, nil)
	failed := &models.Transaction{ID: 7, Reference: "ref-1", Status: domain.TxFailed}
	f.txns.On("MarkFailed", "ref-1").Return(failed, nil)

	err := f.svc.HandleCharge(ChargeEvent{Event: "charge.failed", Reference: "ref-1"})
	assert.NoError(t, err)
	f.txns.AssertExpectations(t)
}

func TestHandleChargeSuccessDefersDistributionWithoutDependentObject(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, AmountCents: 10000, Purpose: domain.PurposeInspection, RelatedID: 9, Status: domain.TxCompleted}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, true, nil)
	f.txns.On("MarkCompleted", "ref-1").Return(txn, nil)
	f.inspections.On("GetByTransactionID", uint(7)).Return(nil, gorm.ErrRecordNotFound)
	f.orders.On("GetByTransactionID", uint(7)).Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.HandleCharge(ChargeEvent{
		Event: "charge.success", Reference: "ref-1", AmountCents: 10000,
		Purpose: domain.PurposeInspection, RelatedID: 9, UserID: 1,
	})
	assert.NoError(t, err)
	f.revenue.AssertNotCalled(t, "Distribute", mock.Anything, mock.Anything)
}

func TestHandleChargeSuccessDistributesWhenObjectLinked(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, AmountCents: 10000, Purpose: domain.PurposeInspection, RelatedID: 9, Status: domain.TxCompleted}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, false, nil)
	f.txns.On("MarkCompleted", "ref-1").Return(txn, repository.ErrAlreadyCompleted)
	f.inspections.On("GetByTransactionID", uint(7)).Return(&models.Inspection{ID: 5, TransactionID: 7}, nil)
	f.vehicles.On("GetByID", uint(9)).Return(&models.Vehicle{ID: 9, DealerID: 2}, nil)
	split := &models.RevenueSplit{ID: 3, TransactionID: 7, DealerCredited: true}
	f.revenue.On("Distribute", txn, uint(2)).Return(split, nil)

	err := f.svc.HandleCharge(ChargeEvent{
		Event: "charge.success", Reference: "ref-1", AmountCents: 10000,
		Purpose: domain.PurposeInspection, RelatedID: 9, UserID: 1,
	})
	assert.NoError(t, err)
	f.revenue.AssertExpectations(t)
}

func TestHandleChargeSuccessMissingVehicleDefers(t *testing.T) {
	f := newWebhookFixture()
	txn := &models.Transaction{ID: 7, Reference: "ref-1", UserID: 1, AmountCents: 10000, Purpose: domain.PurposeOrder, RelatedID: 9, Status: domain.TxCompleted}
	f.txns.On("CreateOrGet", mock.Anything).Return(txn, false, nil)
	f.txns.On("MarkCompleted", "ref-1").Return(txn, nil)
	f.inspections.On("GetByTransactionID", uint(7)).Return(nil, gorm.ErrRecordNotFound)
	f.orders.On("GetByTransactionID", uint(7)).Return(&models.Order{ID: 6, TransactionID: 7}, nil)
	f.vehicles.On("GetByID", uint(9)).Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.HandleCharge(ChargeEvent{
		Event: "charge.success", Reference: "ref-1", AmountCents: 10000,
		Purpose: domain.PurposeOrder, RelatedID: 9, UserID: 1,
	})
	assert.NoError(t, err)
	f.revenue.AssertNotCalled(t, "Distribute", mock.Anything, mock.Anything)
}
