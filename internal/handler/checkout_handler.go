package handler

import (
	"errors"
	"log"
	"net/http"

	"magari/internal/middleware"
	"magari/internal/repository"
	"magari/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	svc *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type ConfirmCheckoutRequest struct {
	Purpose          string `json:"purpose" binding:"required"`
	RelatedID        uint   `json:"related_id"`
	PaymentReference string `json:"payment_reference"`
}

// ConfirmCheckout resolves the caller's payment, completes it, and runs
// the follow-on work for its purpose (revenue split plus inspection or
// order, or a wallet credit).
func (h *CheckoutHandler) ConfirmCheckout(c *gin.Context) {
	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	res, err := h.svc.ConfirmAndProceed(c.Request.Context(), userID, req.Purpose, req.RelatedID, req.PaymentReference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPurpose):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrVehicleRequired):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoRecentPayment):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPaymentNotConfirmed):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNoActiveSettings):
			log.Printf("[checkout] no active revenue settings: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "revenue settings unavailable"})
		default:
			log.Printf("[checkout] confirm failed: user=%d purpose=%s err=%v", userID, req.Purpose, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout confirmation failed"})
		}
		return
	}
	resp := gin.H{"transaction": res.Transaction}
	if res.Split != nil {
		resp["revenue_split"] = res.Split
	}
	if res.Inspection != nil {
		resp["inspection"] = res.Inspection
	}
	if res.Order != nil {
		resp["order"] = res.Order
	}
	if res.Deposit != nil {
		resp["deposit"] = res.Deposit
	}
	c.JSON(http.StatusOK, resp)
}
