package domain

const (
	RoleBuyer  = "BUYER"
	RoleDealer = "DEALER"
	RoleAdmin  = "ADMIN"
)

// Transaction purposes: what the buyer paid for.
const (
	PurposeInspection    = "INSPECTION"
	PurposeWalletDeposit = "WALLET_DEPOSIT"
	PurposeOrder         = "ORDER"
	PurposeBooking       = "BOOKING"
)

// Transaction statuses. Transitions are monotonic: a COMPLETED transaction
// never goes back to PENDING.
const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
	TxReversed  = "REVERSED"
	TxLocked    = "LOCKED" // funds held, e.g. during a dispute
)

// Withdrawal request statuses.
const (
	WithdrawalPending    = "PENDING"
	WithdrawalApproved   = "APPROVED"
	WithdrawalRejected   = "REJECTED"
	WithdrawalProcessing = "PROCESSING"
	WithdrawalCompleted  = "COMPLETED"
	WithdrawalFailed     = "FAILED"
	WithdrawalCancelled  = "CANCELLED"
)

// Ledger entry types.
const (
	EntryRevenueCredit    = "REVENUE_CREDIT"
	EntryDeposit          = "DEPOSIT"
	EntryWithdrawalDebit  = "WITHDRAWAL_DEBIT"
	EntryWithdrawalRefund = "WITHDRAWAL_REFUND"
)

// Inspection kinds. An INSPECTION purpose books a mechanical inspection, a
// BOOKING purpose books a test drive; both produce an Inspection row.
const (
	InspectionKindMechanical = "MECHANICAL"
	InspectionKindTestDrive  = "TEST_DRIVE"
)

func ValidPurpose(p string) bool {
	switch p {
	case PurposeInspection, PurposeWalletDeposit, PurposeOrder, PurposeBooking:
		return true
	}
	return false
}

// DealerRevenuePurpose reports whether proceeds for the purpose are split
// between the dealer and the platform. Wallet deposits belong to the buyer
// in full.
func DealerRevenuePurpose(p string) bool {
	return p == PurposeInspection || p == PurposeOrder || p == PurposeBooking
}
