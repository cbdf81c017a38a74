package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"magari/config"
	"magari/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookHandler receives gateway charge events. The signature is
// verified over the raw body before any parsing; once an event is
// authenticated and recorded the handler acknowledges with 200 even when
// downstream processing fails, so the gateway does not retry forever.
type PaymentWebhookHandler struct {
	cfg *config.PaystackConfig
	svc *service.WebhookService
}

func NewPaymentWebhookHandler(cfg *config.PaystackConfig, svc *service.WebhookService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{cfg: cfg, svc: svc}
}

type chargeWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Amount    int64           `json:"amount"`
		Currency  string          `json:"currency"`
		Channel   string          `json:"channel"`
		Metadata  json.RawMessage `json:"metadata"`
	} `json:"data"`
}

type chargeMetadata struct {
	Purpose   string          `json:"purpose"`
	RelatedID json.RawMessage `json:"related_id"`
	UserID    json.RawMessage `json:"user_id"`
}

func (h *PaymentWebhookHandler) HandleCharge(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if !validPaystackSignature(h.cfg.WebhookSecret, body, c.GetHeader("X-Paystack-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	var payload chargeWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	switch payload.Event {
	case "charge.success", "charge.failed":
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	meta := parseChargeMetadata(payload.Data.Metadata)
	ev := service.ChargeEvent{
		Event:       payload.Event,
		Reference:   payload.Data.Reference,
		AmountCents: payload.Data.Amount,
		Currency:    payload.Data.Currency,
		Channel:     payload.Data.Channel,
		Purpose:     meta.purpose,
		RelatedID:   meta.relatedID,
		UserID:      meta.userID,
	}
	if err := h.svc.HandleCharge(ev); err != nil {
		log.Printf("[webhook] charge processing failed: ref=%s err=%v", ev.Reference, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validPaystackSignature checks the HMAC-SHA512 of the raw body against the
// X-Paystack-Signature header. Constant-time compare.
func validPaystackSignature(secret string, body []byte, signature string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type parsedMetadata struct {
	purpose   string
	relatedID uint
	userID    uint
}

// parseChargeMetadata tolerates the gateway sending metadata values as
// either numbers or strings.
func parseChargeMetadata(raw json.RawMessage) parsedMetadata {
	var out parsedMetadata
	if len(raw) == 0 {
		return out
	}
	var meta chargeMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return out
	}
	out.purpose = meta.Purpose
	out.relatedID = flexibleUint(meta.RelatedID)
	out.userID = flexibleUint(meta.UserID)
	return out
}

func flexibleUint(raw json.RawMessage) uint {
	if len(raw) == 0 {
		return 0
	}
	var n uint
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, perr := strconv.ParseUint(s, 10, 64); perr == nil {
			return uint(v)
		}
	}
	return 0
}
