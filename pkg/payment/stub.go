package payment

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// StubProvider is an in-memory provider for development and tests. Seed it
// with SetVerifyResult, or rely on the default: references prefixed "stub_"
// verify as successful for the seeded default amount.
type StubProvider struct {
	mu            sync.Mutex
	verifyResults map[string]*VerifyResult
	transferErr   error
	DefaultAmount int64
	TransferCalls []TransferRequest
}

func NewStubProvider() *StubProvider {
	return &StubProvider{
		verifyResults: make(map[string]*VerifyResult),
		DefaultAmount: 10000,
	}
}

func (s *StubProvider) SetVerifyResult(reference string, res *VerifyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyResults[reference] = res
}

func (s *StubProvider) FailTransfers(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferErr = err
}

func (s *StubProvider) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.verifyResults[reference]; ok {
		return res, nil
	}
	status := "failed"
	if strings.HasPrefix(reference, "stub_") {
		status = "success"
	}
	return &VerifyResult{
		Reference:   reference,
		Status:      status,
		AmountCents: s.DefaultAmount,
		Currency:    "KES",
		Channel:     "card",
	}, nil
}

func (s *StubProvider) InitiateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	s.TransferCalls = append(s.TransferCalls, req)
	return &TransferResponse{
		TransferCode: "TRF_" + uuid.New().String()[:8],
		Status:       "pending",
	}, nil
}
