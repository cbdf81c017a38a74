package service

import (
	"time"

	"magari/internal/models"
)

// Store interfaces consumed by the services. The gorm repositories in
// internal/repository satisfy them; tests substitute mocks.

type TransactionStore interface {
	CreateOrGet(t *models.Transaction) (*models.Transaction, bool, error)
	GetByReference(reference string) (*models.Transaction, error)
	MarkCompleted(reference string) (*models.Transaction, error)
	MarkFailed(reference string) (*models.Transaction, error)
	FindRecentUnclaimed(userID uint, purpose string, window time.Duration) (*models.Transaction, error)
}

type RevenueStore interface {
	ActiveSetting() (*models.RevenueSetting, error)
	SplitByTransactionID(transactionID uint) (*models.RevenueSplit, error)
	CreateSplit(s *models.RevenueSplit) (*models.RevenueSplit, error)
	SettleDealerShare(splitID uint) (*models.RevenueSplit, *models.LedgerEntry, error)
}

type WalletStore interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	GetOrCreate(userID uint) (*models.Wallet, error)
	Credit(userID uint, amountCents int64, entryType, sourceRef string) (*models.LedgerEntry, error)
	HasEntryForSource(sourceRef, entryType string) (bool, error)
}

type WithdrawalStore interface {
	Create(w *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	Update(w *models.WithdrawalRequest) error
	ListByUser(userID uint) ([]models.WithdrawalRequest, error)
	ListByStatus(status string) ([]models.WithdrawalRequest, error)
	Approve(id, adminID uint) (*models.WithdrawalRequest, error)
	Reject(id, adminID uint, reason string) (*models.WithdrawalRequest, error)
	Cancel(id, userID uint) (*models.WithdrawalRequest, error)
	BeginProcessing(id uint) (*models.WithdrawalRequest, error)
	MarkCompleted(batchRef, providerRef string) (*models.WithdrawalRequest, error)
	MarkFailed(batchRef, reason string) (*models.WithdrawalRequest, error)
}

type VehicleStore interface {
	GetByID(id uint) (*models.Vehicle, error)
}

type InspectionStore interface {
	Create(i *models.Inspection) (*models.Inspection, error)
	GetByTransactionID(transactionID uint) (*models.Inspection, error)
}

type OrderStore interface {
	Create(o *models.Order) (*models.Order, error)
	GetByTransactionID(transactionID uint) (*models.Order, error)
}

type NotificationStore interface {
	Create(n *models.Notification) error
}

// Distributor is the revenue distribution entry point the checkout and
// webhook flows call.
type Distributor interface {
	Distribute(t *models.Transaction, dealerID uint) (*models.RevenueSplit, error)
}

// Notifier pushes a user-facing notification. Services tolerate a nil
// Notifier so the engine can run headless in tests.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{}) error
}
