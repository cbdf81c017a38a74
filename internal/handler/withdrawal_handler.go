package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"magari/internal/middleware"
	"magari/internal/repository"
	"magari/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WithdrawalHandler struct {
	svc *service.WithdrawalService
}

func NewWithdrawalHandler(svc *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

type CreateWithdrawalRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	PayoutPhone string `json:"payout_phone" binding:"required"`
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	w, err := h.svc.Create(userID, req.AmountCents, req.PayoutPhone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Printf("[withdrawal] create failed: user=%d err=%v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create withdrawal"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.svc.ListMine(userID)
	if err != nil {
		log.Printf("[withdrawal] list failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *WithdrawalHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)
	w, err := h.svc.Cancel(userID, id)
	if err != nil {
		withdrawalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// Admin endpoints.

func (h *WithdrawalHandler) ListPending(c *gin.Context) {
	list, err := h.svc.ListPending()
	if err != nil {
		log.Printf("[withdrawal] pending list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *WithdrawalHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	adminID := middleware.GetUserID(c)
	w, err := h.svc.Approve(adminID, id)
	if err != nil {
		withdrawalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	w, err := h.svc.Reject(adminID, id, req.Reason)
	if err != nil {
		withdrawalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) Process(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	w, err := h.svc.Process(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGatewayUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "withdrawal": w})
			return
		}
		withdrawalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func withdrawalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
	case errors.Is(err, repository.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("[withdrawal] operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal operation failed"})
	}
}
