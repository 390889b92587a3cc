// Package syncer reconciles feed records with the products stored on the
// e-commerce platform.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"feedsync/internal/feed"
	"feedsync/internal/images"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/services/ecom"
	"feedsync/internal/specs"
	"feedsync/internal/taxonomy"
	"feedsync/internal/transform"
)

// Store is the platform API surface used by a synchronization.
type Store interface {
	taxonomy.Store
	StoreID() int64
	Auth() ecom.Auth
	FindProductsBySKU(ctx context.Context, sku string) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*ecom.WriteResult, error)
	UpdateProduct(ctx context.Context, productID string, body interface{}) (*ecom.WriteResult, error)
}

// Settings are the service wide defaults; AppData may override them per
// request.
type Settings struct {
	DefaultQuantity     int
	UpdateProduct       bool
	BackorderEnabled    bool
	BackorderDays       int
	TaxonomyMaxAttempts int
	TaxonomyRetryDelay  time.Duration
}

type Syncer struct {
	store    Store
	importer *images.Importer
	specs    *specs.Mapper
	settings Settings
	logger   *logger.Logger
}

func New(store Store, importer *images.Importer, mapper *specs.Mapper, settings Settings, logger *logger.Logger) *Syncer {
	return &Syncer{
		store:    store,
		importer: importer,
		specs:    mapper,
		settings: settings,
		logger:   logger.WithFields(map[string]interface{}{"store_id": store.StoreID()}),
	}
}

// ProductRequest is one product of the feed, with its variation records when
// it heads an item group.
type ProductRequest struct {
	Product     feed.Record    `json:"product"`
	Variations  []feed.Record  `json:"variations,omitempty"`
	IsVariation bool           `json:"is_variation,omitempty"`
	App         models.AppData `json:"app_data"`
}

// Result reports what a product synchronization did. Meta keeps the request
// context of every step for diagnostics.
type Result struct {
	SKU       string                 `json:"sku"`
	Method    string                 `json:"method"`
	ProductID string                 `json:"product_id,omitempty"`
	Written   bool                   `json:"written"`
	Response  map[string]interface{} `json:"response"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

func (s *Syncer) options(app models.AppData) transform.Options {
	opts := transform.Options{
		StoreID:              s.store.StoreID(),
		DefaultQuantity:      s.settings.DefaultQuantity,
		BackorderOnZeroStock: s.settings.BackorderEnabled || app.BackorderOnZeroStock,
		BackorderDays:        s.settings.BackorderDays,
	}
	if app.DefaultQuantity > 0 {
		opts.DefaultQuantity = app.DefaultQuantity
	}
	if app.BackorderDays > 0 {
		opts.BackorderDays = app.BackorderDays
	}
	return opts
}

// newTransformer builds a transformer whose taxonomy cache lives for one
// synchronization only.
func (s *Syncer) newTransformer() *transform.Transformer {
	resolver := taxonomy.NewResolver(s.store, s.settings.TaxonomyMaxAttempts, s.settings.TaxonomyRetryDelay, s.logger)
	return transform.NewTransformer(s.specs, resolver, s.logger)
}

// SyncProduct creates the product when its SKU is unknown, or updates it when
// updates are enabled, then replaces its variations for item groups.
func (s *Syncer) SyncProduct(ctx context.Context, req ProductRequest) (*Result, error) {
	sku := transform.SKU(req.Product)
	if sku == "" {
		s.logger.Error("[syncer] %v", transform.ErrMissingSKU)
		return nil, transform.ErrMissingSKU
	}
	log := s.logger.WithFields(map[string]interface{}{"sku": sku})
	result := &Result{SKU: sku, Meta: map[string]interface{}{}}

	lookup := "/products.json?sku=" + sku
	result.Meta["find_product_by_sku"] = map[string]interface{}{"resource": lookup, "sku": sku, "method": http.MethodGet}
	found, err := s.store.FindProductsBySKU(ctx, sku)
	if err != nil {
		return result, fmt.Errorf("find product %s: %w", sku, err)
	}

	var previous *models.Product
	var productID string
	result.Method = http.MethodPost
	resource := "/products.json"
	if len(found) > 0 {
		previous = &found[0]
		productID = previous.ID
		result.Method = http.MethodPatch
		resource = "/products/" + productID + ".json"
	}
	result.ProductID = productID

	transformer := s.newTransformer()
	parsed, err := transformer.Product(ctx, req.Product, previous, s.options(req.App))
	if err != nil {
		result.Meta["parse_product_error"] = ecom.ErrorFields(err)
		return result, fmt.Errorf("transform product %s: %w", sku, err)
	}

	if !s.settings.UpdateProduct && !req.App.UpdateProduct && result.Method != http.MethodPost {
		log.Info("[syncer] product exists and updates are disabled, skipping")
		result.Response = map[string]interface{}{}
		return result, nil
	}

	body, _ := json.Marshal(parsed)
	result.Meta["ecom_request"] = map[string]interface{}{"resource": resource, "method": result.Method, "product": string(body)}

	var written *ecom.WriteResult
	if result.Method == http.MethodPost {
		written, err = s.store.CreateProduct(ctx, parsed)
	} else {
		written, err = s.store.UpdateProduct(ctx, productID, parsed)
	}
	if err != nil {
		return result, fmt.Errorf("%s product %s: %w", result.Method, sku, err)
	}
	result.Written = true
	log.Info("[syncer] product saved with %s, status %d", result.Method, written.Status)

	result.Response = written.Data
	if len(result.Response) == 0 {
		result.Response = map[string]interface{}{"_id": productID}
	}
	if id, ok := result.Response["_id"].(string); ok && id != "" {
		result.ProductID = id
	}

	if req.IsVariation {
		saved, err := s.store.FindProductsBySKU(ctx, sku)
		if err != nil {
			return result, fmt.Errorf("refetch product %s: %w", sku, err)
		}
		if len(saved) == 0 {
			return result, fmt.Errorf("%w: product %s not found after save", ecom.ErrUnexpectedResponse, sku)
		}
		result.ProductID = saved[0].ID
		if err := s.syncVariations(ctx, transformer, req.Variations, &saved[0], req.App); err != nil {
			return result, err
		}
	}

	return result, nil
}

// syncVariations replaces the variation list of product with the
// transformed records.
func (s *Syncer) syncVariations(ctx context.Context, transformer *transform.Transformer, records []feed.Record, product *models.Product, app models.AppData) error {
	log := s.logger.WithFields(map[string]interface{}{"product_id": product.ID, "sku": product.SKU})
	opts := s.options(app)

	variations := make([]models.Variation, 0, len(records))
	for _, record := range records {
		var previous *models.Variation
		if stored, ok := product.FindVariation(transform.SKU(record)); ok {
			previous = &stored
		}

		variation, err := transformer.Variation(ctx, record, previous, opts)
		if err != nil {
			return fmt.Errorf("transform variation of %s: %w", product.SKU, err)
		}
		if len(variation.Specifications) == 0 {
			log.Warn("[syncer] variation %s has no specifications, skipped", variation.SKU)
			continue
		}
		variations = append(variations, variation)
	}

	if _, err := s.store.UpdateProduct(ctx, product.ID, map[string]interface{}{"variations": variations}); err != nil {
		return fmt.Errorf("save variations of %s: %w", product.SKU, err)
	}
	log.Info("[syncer] saved %d variations", len(variations))
	return nil
}

// SyncImages imports every link and replaces the product pictures with the
// ones that made it. Individual image failures only shorten the list.
func (s *Syncer) SyncImages(ctx context.Context, productID string, imageLinks []string) ([]models.Picture, error) {
	log := s.logger.WithFields(map[string]interface{}{"product_id": productID})
	log.Info("[syncer] saving %d images", len(imageLinks))

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	pictures := make([]models.Picture, 0, len(imageLinks))
	for _, link := range imageLinks {
		if picture := s.importer.Import(ctx, s.store.StoreID(), s.store.Auth(), link, product.Name); picture != nil {
			pictures = append(pictures, *picture)
		}
	}

	if _, err := s.store.UpdateProduct(ctx, productID, map[string]interface{}{"pictures": pictures}); err != nil {
		return pictures, fmt.Errorf("save pictures of %s: %w", productID, err)
	}
	log.Info("[syncer] saved %d of %d images", len(pictures), len(imageLinks))
	return pictures, nil
}
