package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"magari/config"
	"magari/internal/service"

	"github.com/gin-gonic/gin"
)

// TransferWebhookHandler settles withdrawal payouts from the gateway's
// transfer events. Transfers are keyed by the batch reference we supplied
// when initiating them.
type TransferWebhookHandler struct {
	cfg *config.PaystackConfig
	svc *service.WithdrawalService
}

func NewTransferWebhookHandler(cfg *config.PaystackConfig, svc *service.WithdrawalService) *TransferWebhookHandler {
	return &TransferWebhookHandler{cfg: cfg, svc: svc}
}

type transferWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference    string `json:"reference"`
		TransferCode string `json:"transfer_code"`
		Reason       string `json:"reason"`
	} `json:"data"`
}

func (h *TransferWebhookHandler) HandleTransfer(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if !validPaystackSignature(h.cfg.WebhookSecret, body, c.GetHeader("X-Paystack-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	var payload transferWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	switch payload.Event {
	case "transfer.success", "transfer.failed", "transfer.reversed":
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err := h.svc.HandleTransferEvent(payload.Event, payload.Data.Reference, payload.Data.TransferCode, payload.Data.Reason); err != nil {
		log.Printf("[webhook] transfer processing failed: ref=%s err=%v", payload.Data.Reference, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
