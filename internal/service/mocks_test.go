package service

import (
	"context"
	"time"

	"magari/internal/models"
	"magari/pkg/payment"

	"github.com/stretchr/testify/mock"
)

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) CreateOrGet(t *models.Transaction) (*models.Transaction, bool, error) {
	args := m.Called(t)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockTransactionStore) GetByReference(reference string) (*models.Transaction, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionStore) MarkCompleted(reference string) (*models.Transaction, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionStore) MarkFailed(reference string) (*models.Transaction, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionStore) FindRecentUnclaimed(userID uint, purpose string, window time.Duration) (*models.Transaction, error) {
	args := m.Called(userID, purpose, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockRevenueStore struct {
	mock.Mock
}

func (m *MockRevenueStore) ActiveSetting() (*models.RevenueSetting, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueSetting), args.Error(1)
}

func (m *MockRevenueStore) SplitByTransactionID(transactionID uint) (*models.RevenueSplit, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueSplit), args.Error(1)
}

func (m *MockRevenueStore) CreateSplit(s *models.RevenueSplit) (*models.RevenueSplit, error) {
	args := m.Called(s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueSplit), args.Error(1)
}

func (m *MockRevenueStore) SettleDealerShare(splitID uint) (*models.RevenueSplit, *models.LedgerEntry, error) {
	args := m.Called(splitID)
	var split *models.RevenueSplit
	var entry *models.LedgerEntry
	if args.Get(0) != nil {
		split = args.Get(0).(*models.RevenueSplit)
	}
	if args.Get(1) != nil {
		entry = args.Get(1).(*models.LedgerEntry)
	}
	return split, entry, args.Error(2)
}

type MockWalletStore struct {
	mock.Mock
}

func (m *MockWalletStore) GetByUserID(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletStore) GetOrCreate(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletStore) Credit(userID uint, amountCents int64, entryType, sourceRef string) (*models.LedgerEntry, error) {
	args := m.Called(userID, amountCents, entryType, sourceRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockWalletStore) HasEntryForSource(sourceRef, entryType string) (bool, error) {
	args := m.Called(sourceRef, entryType)
	return args.Bool(0), args.Error(1)
}

type MockWithdrawalStore struct {
	mock.Mock
}

func (m *MockWithdrawalStore) Create(w *models.WithdrawalRequest) error {
	args := m.Called(w)
	return args.Error(0)
}

func (m *MockWithdrawalStore) GetByID(id uint) (*models.WithdrawalRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) Update(w *models.WithdrawalRequest) error {
	args := m.Called(w)
	return args.Error(0)
}

func (m *MockWithdrawalStore) ListByUser(userID uint) ([]models.WithdrawalRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) ListByStatus(status string) ([]models.WithdrawalRequest, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) Approve(id, adminID uint) (*models.WithdrawalRequest, error) {
	args := m.Called(id, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) Reject(id, adminID uint, reason string) (*models.WithdrawalRequest, error) {
	args := m.Called(id, adminID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) Cancel(id, userID uint) (*models.WithdrawalRequest, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) BeginProcessing(id uint) (*models.WithdrawalRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) MarkCompleted(batchRef, providerRef string) (*models.WithdrawalRequest, error) {
	args := m.Called(batchRef, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalStore) MarkFailed(batchRef, reason string) (*models.WithdrawalRequest, error) {
	args := m.Called(batchRef, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(u *models.User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockVehicleStore struct {
	mock.Mock
}

func (m *MockVehicleStore) GetByID(id uint) (*models.Vehicle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

type MockInspectionStore struct {
	mock.Mock
}

func (m *MockInspectionStore) Create(i *models.Inspection) (*models.Inspection, error) {
	args := m.Called(i)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inspection), args.Error(1)
}

func (m *MockInspectionStore) GetByTransactionID(transactionID uint) (*models.Inspection, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inspection), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Create(o *models.Order) (*models.Order, error) {
	args := m.Called(o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) GetByTransactionID(transactionID uint) (*models.Order, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockDistributor struct {
	mock.Mock
}

func (m *MockDistributor) Distribute(t *models.Transaction, dealerID uint) (*models.RevenueSplit, error) {
	args := m.Called(t, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueSplit), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	args := m.Called(userID, notifType, title, body, data)
	return args.Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) VerifyTransaction(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.VerifyResult), args.Error(1)
}

func (m *MockProvider) InitiateTransfer(ctx context.Context, req payment.TransferRequest) (*payment.TransferResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TransferResponse), args.Error(1)
}
