package handler

import (
	"errors"
	"log"
	"net/http"

	"magari/internal/middleware"
	"magari/internal/models"
	"magari/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RevenueSettingsHandler is the admin surface for the dealer/platform
// percentage pairs. Creating a setting as active deactivates the previous
// one in the same unit of work; in-flight distributions keep the snapshot
// they read.
type RevenueSettingsHandler struct {
	revenue *repository.RevenueRepository
}

func NewRevenueSettingsHandler(revenue *repository.RevenueRepository) *RevenueSettingsHandler {
	return &RevenueSettingsHandler{revenue: revenue}
}

type CreateSettingRequest struct {
	DealerPercentage   int  `json:"dealer_percentage" binding:"required,min=0,max=100"`
	PlatformPercentage int  `json:"platform_percentage" binding:"min=0,max=100"`
	IsActive           bool `json:"is_active"`
}

func (h *RevenueSettingsHandler) List(c *gin.Context) {
	list, err := h.revenue.ListSettings()
	if err != nil {
		log.Printf("[revenue] list settings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

func (h *RevenueSettingsHandler) Active(c *gin.Context) {
	s, err := h.revenue.ActiveSetting()
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSettings) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[revenue] active setting failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": s})
}

func (h *RevenueSettingsHandler) Create(c *gin.Context) {
	var req CreateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DealerPercentage+req.PlatformPercentage != 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentages must sum to 100"})
		return
	}
	s := &models.RevenueSetting{
		DealerPercentage:   req.DealerPercentage,
		PlatformPercentage: req.PlatformPercentage,
		IsActive:           req.IsActive,
		CreatedBy:          middleware.GetUserID(c),
	}
	if err := h.revenue.CreateSetting(s); err != nil {
		log.Printf("[revenue] create setting failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create setting"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"setting": s})
}

func (h *RevenueSettingsHandler) Activate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s, err := h.revenue.ActivateSetting(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
			return
		}
		log.Printf("[revenue] activate setting failed: id=%d err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": s})
}

func (h *RevenueSettingsHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.revenue.DeactivateSetting(id); err != nil {
		log.Printf("[revenue] deactivate setting failed: id=%d err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
