package handler

import (
	"log"
	"net/http"
	"strconv"

	"magari/internal/middleware"
	"magari/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *repository.WalletRepository
}

func NewWalletHandler(wallets *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.wallets.GetOrCreate(userID)
	if err != nil {
		log.Printf("[wallet] fetch failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wallet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w})
}

func (h *WalletHandler) ListEntries(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.wallets.GetOrCreate(userID)
	if err != nil {
		log.Printf("[wallet] fetch failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wallet"})
		return
	}
	limit, offset := paginate(c)
	entries, err := h.wallets.Entries(w.ID, limit, offset)
	if err != nil {
		log.Printf("[wallet] entries failed: wallet=%d err=%v", w.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load ledger"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w, "entries": entries})
}

func paginate(c *gin.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
