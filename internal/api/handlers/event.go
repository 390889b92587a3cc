package handlers

import (
	"context"
	"errors"
	"net/http"

	"feedsync/internal/logger"
	"feedsync/internal/queue"

	"github.com/gin-gonic/gin"
)

type Publisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

type EventHandler struct {
	publisher Publisher
	logger    *logger.Logger
}

func NewEventHandler(publisher Publisher, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// Publish queues a synchronization for the worker. Store and credentials
// come from the path and headers, never from the body.
func (h *EventHandler) Publish(c *gin.Context) {
	storeID, ok := storeParam(c)
	if !ok {
		return
	}
	auth, ok := storeAuth(c)
	if !ok {
		return
	}

	var event queue.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event.StoreID = storeID
	event.Auth = auth

	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		if errors.Is(err, queue.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to queue %s event for store %d: %v", event.Type, storeID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue event"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Event queued", "type": event.Type})
}
