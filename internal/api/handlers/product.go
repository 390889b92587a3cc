package handlers

import (
	"net/http"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/syncer"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	newRunner syncer.Factory
	logger    *logger.Logger
}

func NewProductHandler(factory syncer.Factory, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		newRunner: factory,
		logger:    logger,
	}
}

type syncProductRequest struct {
	Product     feed.Record    `json:"product" binding:"required"`
	Variations  []feed.Record  `json:"variations"`
	IsVariation bool           `json:"is_variation"`
	AppData     models.AppData `json:"app_data"`
}

type syncImagesRequest struct {
	ImageLinks []string `json:"image_links" binding:"required"`
}

// Sync creates or updates one feed product, and its variations when the
// request carries an item group.
func (h *ProductHandler) Sync(c *gin.Context) {
	storeID, ok := storeParam(c)
	if !ok {
		return
	}
	auth, ok := storeAuth(c)
	if !ok {
		return
	}

	var req syncProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log := h.logger.WithFields(map[string]interface{}{"store_id": storeID})
	result, err := h.newRunner(storeID, auth).SyncProduct(c.Request.Context(), syncer.ProductRequest{
		Product:     req.Product,
		Variations:  req.Variations,
		IsVariation: req.IsVariation,
		App:         req.AppData,
	})
	if err != nil {
		var meta map[string]interface{}
		if result != nil {
			meta = result.Meta
		}
		syncFailed(c, log, err, meta)
		return
	}

	status := http.StatusOK
	if result.Written && result.Method == http.MethodPost {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"data":       result.Response,
		"sku":        result.SKU,
		"method":     result.Method,
		"written":    result.Written,
		"product_id": result.ProductID,
		"meta":       result.Meta,
	})
}

// SyncImages imports the given links as the product pictures.
func (h *ProductHandler) SyncImages(c *gin.Context) {
	storeID, ok := storeParam(c)
	if !ok {
		return
	}
	auth, ok := storeAuth(c)
	if !ok {
		return
	}

	var req syncImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID := c.Param("id")
	log := h.logger.WithFields(map[string]interface{}{"store_id": storeID, "product_id": productID})
	pictures, err := h.newRunner(storeID, auth).SyncImages(c.Request.Context(), productID, req.ImageLinks)
	if err != nil {
		syncFailed(c, log, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     pictures,
		"imported": len(pictures),
		"total":    len(req.ImageLinks),
	})
}
