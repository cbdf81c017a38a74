package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"magari/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.PaystackConfig{WebhookSecret: secret}
	h := NewPaymentWebhookHandler(cfg, nil)
	r := gin.New()
	r.POST("/webhooks/paystack", h.HandleCharge)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Paystack-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	r := webhookTestRouter("whsec")
	w := postWebhook(r, []byte(`{"event":"charge.success"}`), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	r := webhookTestRouter("whsec")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)
	w := postWebhook(r, body, signBody("wrong-secret", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	r := webhookTestRouter("whsec")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":10000}}`)
	sig := signBody("whsec", body)
	tampered := bytes.Replace(body, []byte("10000"), []byte("99999"), 1)
	w := postWebhook(r, tampered, sig)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcknowledgesUnhandledEvent(t *testing.T) {
	r := webhookTestRouter("whsec")
	body := []byte(`{"event":"subscription.create","data":{}}`)
	w := postWebhook(r, body, signBody("whsec", body))
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["status"])
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	r := webhookTestRouter("whsec")
	body := []byte(`{"event":`)
	w := postWebhook(r, body, signBody("whsec", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseChargeMetadataFlexibleTypes(t *testing.T) {
	meta := parseChargeMetadata(json.RawMessage(`{"purpose":"INSPECTION","related_id":9,"user_id":"12"}`))
	assert.Equal(t, "INSPECTION", meta.purpose)
	assert.Equal(t, uint(9), meta.relatedID)
	assert.Equal(t, uint(12), meta.userID)

	meta = parseChargeMetadata(nil)
	assert.Empty(t, meta.purpose)
	assert.Zero(t, meta.relatedID)

	meta = parseChargeMetadata(json.RawMessage(`"not an object"`))
	assert.Empty(t, meta.purpose)
}

func TestFlexibleUint(t *testing.T) {
	assert.Equal(t, uint(7), flexibleUint(json.RawMessage(`7`)))
	assert.Equal(t, uint(7), flexibleUint(json.RawMessage(`"7"`)))
	assert.Equal(t, uint(0), flexibleUint(json.RawMessage(`"abc"`)))
	assert.Equal(t, uint(0), flexibleUint(nil))
}
