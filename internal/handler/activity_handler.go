package handler

import (
	"log"
	"net/http"

	"magari/internal/middleware"
	"magari/internal/repository"

	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the buyer's paid-for objects.
type ActivityHandler struct {
	inspections *repository.InspectionRepository
	orders      *repository.OrderRepository
}

func NewActivityHandler(inspections *repository.InspectionRepository, orders *repository.OrderRepository) *ActivityHandler {
	return &ActivityHandler{inspections: inspections, orders: orders}
}

func (h *ActivityHandler) ListInspections(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.inspections.ListByBuyer(userID)
	if err != nil {
		log.Printf("[activity] inspections failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load inspections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inspections": list})
}

func (h *ActivityHandler) ListOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.orders.ListByBuyer(userID)
	if err != nil {
		log.Printf("[activity] orders failed: user=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}
