package payment

import (
	"context"
)

// VerifyResult is what the gateway reports for a reference. Treated as
// untrusted input: callers cross-check amount and currency against the
// recorded transaction before acting on it.
type VerifyResult struct {
	Reference   string
	Status      string // success | failed | abandoned | pending
	AmountCents int64
	Currency    string
	Channel     string
	PaidAt      string
}

func (v *VerifyResult) Success() bool { return v.Status == "success" }

// TransferRequest asks the gateway to pay out to a mobile money number.
type TransferRequest struct {
	AmountCents int64
	PhoneNumber string // e.g. 254712345678
	Reason      string
	BatchRef    string // our withdrawal batch_ref; echoed back in the transfer webhook
}

type TransferResponse struct {
	TransferCode string
	Status       string
}

// Provider is the payment gateway collaborator: transaction verification for
// checkout confirmation and transfers for withdrawal payouts.
type Provider interface {
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)
	InitiateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)
}
