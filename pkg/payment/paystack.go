package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PaystackProvider talks to the Paystack REST API.
type PaystackProvider struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewPaystackProvider(baseURL, secretKey string, timeout time.Duration) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type paystackVerifyResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"` // smallest currency unit
		Currency  string `json:"currency"`
		Channel   string `json:"channel"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

// VerifyTransaction fetches the gateway's view of a reference.
func (p *PaystackProvider) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify: %d %s", resp.StatusCode, string(respBody))
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack verify: %s", out.Message)
	}
	return &VerifyResult{
		Reference:   out.Data.Reference,
		Status:      out.Data.Status,
		AmountCents: out.Data.Amount,
		Currency:    out.Data.Currency,
		Channel:     out.Data.Channel,
		PaidAt:      out.Data.PaidAt,
	}, nil
}

type paystackRecipientResp struct {
	Status bool `json:"status"`
	Data   struct {
		RecipientCode string `json:"recipient_code"`
	} `json:"data"`
}

type paystackTransferResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TransferCode string `json:"transfer_code"`
		Status       string `json:"status"`
	} `json:"data"`
}

// InitiateTransfer creates a mobile money recipient and queues the transfer.
// Final settlement arrives asynchronously on the transfer webhook, keyed by
// req.BatchRef.
func (p *PaystackProvider) InitiateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	recipient, err := p.createRecipient(ctx, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("paystack recipient: %w", err)
	}
	payload := map[string]interface{}{
		"source":    "balance",
		"amount":    req.AmountCents,
		"recipient": recipient,
		"reason":    req.Reason,
		"reference": req.BatchRef,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/transfer", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	log.Printf("[Paystack] POST /transfer reference=%s amount=%d phone=%s",
		req.BatchRef, req.AmountCents, req.PhoneNumber)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[Paystack] transfer response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("paystack transfer: %d %s", resp.StatusCode, string(respBody))
	}
	var out paystackTransferResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack transfer: %s", out.Message)
	}
	return &TransferResponse{
		TransferCode: out.Data.TransferCode,
		Status:       out.Data.Status,
	}, nil
}

func (p *PaystackProvider) createRecipient(ctx context.Context, phone string) (string, error) {
	payload := map[string]string{
		"type":           "mobile_money",
		"name":           phone,
		"account_number": phone,
		"bank_code":      "MPESA",
		"currency":       "KES",
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/transferrecipient", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	var out paystackRecipientResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if !out.Status || out.Data.RecipientCode == "" {
		return "", fmt.Errorf("recipient not created: %s", string(respBody))
	}
	return out.Data.RecipientCode, nil
}
