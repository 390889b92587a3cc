package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"feedsync/internal/logger"
	"feedsync/internal/services/ecom"
	"feedsync/internal/taxonomy"
	"feedsync/internal/transform"

	"github.com/gin-gonic/gin"
)

const (
	headerMyID        = "X-My-ID"
	headerAccessToken = "X-Access-Token"
)

func storeParam(c *gin.Context) (int64, bool) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store id"})
		return 0, false
	}
	return storeID, true
}

func storeAuth(c *gin.Context) (ecom.Auth, bool) {
	auth := ecom.Auth{
		MyID:        c.GetHeader(headerMyID),
		AccessToken: c.GetHeader(headerAccessToken),
	}
	if auth.MyID == "" || auth.AccessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing store credentials"})
		return auth, false
	}
	return auth, true
}

// syncFailed maps a synchronization error to a response. Upstream failures
// are reported as a bad gateway with the upstream status and body.
func syncFailed(c *gin.Context, log *logger.Logger, err error, meta map[string]interface{}) {
	body := gin.H{"error": err.Error()}
	if len(meta) > 0 {
		body["meta"] = meta
	}

	var reqErr *ecom.RequestError
	switch {
	case errors.Is(err, transform.ErrMissingSKU):
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &reqErr):
		log.WithFields(reqErr.Fields()).Error("Sync failed upstream: %v", err)
		body["upstream"] = reqErr.Fields()
		c.JSON(http.StatusBadGateway, body)
	case errors.Is(err, taxonomy.ErrNotResolved), errors.Is(err, ecom.ErrUnexpectedResponse):
		log.Error("Sync failed: %v", err)
		c.JSON(http.StatusBadGateway, body)
	default:
		log.Error("Sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, body)
	}
}
