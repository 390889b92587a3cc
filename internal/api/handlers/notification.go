package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"feedsync/internal/logger"
	"feedsync/internal/notifications"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	queue  *notifications.Queue
	logger *logger.Logger
}

func NewNotificationHandler(queue *notifications.Queue, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		queue:  queue,
		logger: logger,
	}
}

// List returns ready notifications with ?ready=true, otherwise the latest
// ones of ?store_id.
func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 500 {
		limit = 20
	}

	if c.Query("ready") == "true" {
		list, err := h.queue.Ready(c.Request.Context(), limit)
		if err != nil {
			h.logger.Error("Failed to fetch ready notifications: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list, "limit": limit})
		return
	}

	storeID, err := notifications.ParseStoreID(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id or ready=true is required"})
		return
	}
	list, err := h.queue.List(c.Request.Context(), storeID, limit)
	if err != nil {
		h.logger.Error("Failed to fetch notifications of store %d: %v", storeID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "limit": limit})
}

func (h *NotificationHandler) Get(c *gin.Context) {
	n, err := h.queue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}
