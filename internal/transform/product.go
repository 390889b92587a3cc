// Package transform builds canonical products and variations out of feed
// records.
package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/services/ecom"
	"feedsync/internal/specs"
	"feedsync/internal/textutil"
)

const (
	fallbackQuantity       = 9999
	fallbackBackorderDays  = 10
	maxMetaDescriptionLen  = 1000
	maxKeywordLen          = 49
	defaultDimensionValue  = 1
	dimensionUnit          = "cm"
	availabilityInStockKey = "in stock"
	maxQuantity            = math.MaxInt32
)

var ErrMissingSKU = errors.New("feed record has no sku or id")

// Taxonomy resolves the brand and category nodes of a record.
type Taxonomy interface {
	Brand(ctx context.Context, record feed.Record) (*models.TaxonomyNode, error)
	Category(ctx context.Context, record feed.Record) (*models.TaxonomyNode, error)
}

// Options are the per-store import settings.
type Options struct {
	StoreID         int64
	DefaultQuantity int
	// BackorderOnZeroStock imports zero or negative numeric availability as
	// a backorder with BackorderDays of production time.
	BackorderOnZeroStock bool
	BackorderDays        int
}

type Transformer struct {
	specs    *specs.Mapper
	taxonomy Taxonomy
	logger   *logger.Logger
}

func NewTransformer(mapper *specs.Mapper, taxonomy Taxonomy, logger *logger.Logger) *Transformer {
	return &Transformer{
		specs:    mapper,
		taxonomy: taxonomy,
		logger:   logger,
	}
}

// SKU computes the identity of a record.
func SKU(record feed.Record) string {
	sku := feed.Get("sku", record)
	if sku == "" {
		sku = feed.Get("id", record)
	}
	return NormalizeSKU(sku)
}

// Product merges the record into a copy of previous. Every field computed
// here overwrites the previous value; fields it does not compute are kept.
// The returned product never carries an _id so the caller decides between
// create and update.
func (t *Transformer) Product(ctx context.Context, record feed.Record, previous *models.Product, opts Options) (*models.Product, error) {
	log := t.logger.WithFields(map[string]interface{}{"store_id": opts.StoreID})

	sku := SKU(record)
	if sku == "" {
		log.Error("[transform] record without sku: %v", ErrMissingSKU)
		return nil, ErrMissingSKU
	}
	log = log.WithFields(map[string]interface{}{"sku": sku})

	category, err := t.taxonomy.Category(ctx, record)
	if err != nil {
		log.WithFields(ecom.ErrorFields(err)).Error("[transform] category failed: %v", err)
		return nil, fmt.Errorf("resolve category for %s: %w", sku, err)
	}
	brand, err := t.taxonomy.Brand(ctx, record)
	if err != nil {
		log.WithFields(ecom.ErrorFields(err)).Error("[transform] brand failed: %v", err)
		return nil, fmt.Errorf("resolve brand for %s: %w", sku, err)
	}

	product := previous.Clone()
	title := feed.Get("title", record)

	product.SKU = sku
	product.Name = title
	product.Subtitle = feed.Get("subtitle", record)
	product.MetaTitle = title
	product.MetaDescription = Truncate(feed.Get("meta_description", record), maxMetaDescriptionLen)
	product.Keywords = keywords(feed.Get("google_product_category", record))
	product.BodyHTML = feed.Get("description", record)
	product.Pictures = []models.Picture{}
	product.Variations = []models.Variation{}
	product.Specifications = t.specs.Map(record)
	product.Dimensions = dimensions(record)
	product.Quantity = 0

	if category != nil {
		product.Categories = []models.TaxonomyNode{*category}
	} else {
		product.Categories = []models.TaxonomyNode{}
	}
	if brand != nil {
		product.Brands = []models.TaxonomyNode{*brand}
	}

	if weight := weight(feed.Get("shipping_weight", record)); weight != nil {
		product.Weight = weight
	}

	applyPrices(product, record)
	if !positive(product.Price) {
		product.Price = product.BasePrice
	}
	if !positive(product.Price) {
		product.Price = nil
		log.Warn("[transform] no price could be derived")
	}

	if dates, ok := effectiveDate(feed.Get("sale_price_effective_date", record)); ok {
		product.PriceEffectiveDate = dates
	}

	if slug := textutil.Slugify(title); slug != "" {
		product.Slug = slug
	}
	if gtin := feed.Get("gtin", record); gtin != "" {
		product.GTIN = []string{gtin}
	}
	if mpn := feed.Get("mpn", record); mpn != "" {
		product.MPN = []string{mpn}
	}
	if condition, ok := models.ParseCondition(feed.Get("condition", record)); ok {
		product.Condition = condition
	}

	applyAvailability(product, feed.Get("availability", record), opts)

	product.ID = ""
	log.Info("[transform] parsed product price=%v quantity=%d", priceValue(product.Price), product.Quantity)
	return product, nil
}

func keywords(category string) []string {
	text := textutil.PlainText(category)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, segment := range strings.Split(text, ">") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		out = append(out, Truncate(segment, maxKeywordLen))
	}
	return out
}

func weight(s string) *models.Weight {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil
	}
	value, ok := ParseDecimal(parts[0])
	if !ok {
		return nil
	}
	w := &models.Weight{Value: value}
	if len(parts) > 1 {
		w.Unit = parts[1]
	}
	return w
}

func dimensions(record feed.Record) models.Dimensions {
	out := models.Dimensions{}
	for _, side := range []string{"length", "width", "height"} {
		value := float64(defaultDimensionValue)
		if parts := strings.Fields(feed.Get("shipping_"+side, record)); len(parts) > 0 {
			if v, ok := ParseDecimal(parts[0]); ok && v != 0 {
				value = v
			}
		}
		out[side] = models.Dimension{Value: value, Unit: dimensionUnit}
	}
	return out
}

// applyPrices makes sale_price the selling price and price the base price
// when both exist.
func applyPrices(product *models.Product, record feed.Record) {
	salePrice, hasSale := ParseMoney(feed.Get("sale_price", record))
	basePrice, hasBase := ParseMoney(feed.Get("price", record))

	switch {
	case hasSale && hasBase:
		product.Price = &salePrice
		product.BasePrice = &basePrice
	case hasBase:
		product.Price = &basePrice
	}
}

func effectiveDate(s string) (*models.PriceEffectiveDate, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, false
	}
	start, ok := ParseDate(parts[0])
	if !ok {
		return nil, false
	}
	end, ok := ParseDate(parts[1])
	if !ok {
		return nil, false
	}
	return &models.PriceEffectiveDate{Start: ISOInstant(start), End: ISOInstant(end)}, true
}

func applyAvailability(product *models.Product, availability string, opts Options) {
	if availability == "" {
		return
	}
	if strings.ToLower(strings.TrimSpace(availability)) == availabilityInStockKey {
		product.Quantity = opts.DefaultQuantity
		if product.Quantity <= 0 {
			product.Quantity = fallbackQuantity
		}
		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(availability), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	if amount > 0 {
		product.Quantity = int(math.Min(amount, maxQuantity))
		return
	}
	if opts.BackorderOnZeroStock {
		days := opts.BackorderDays
		if days <= 0 {
			days = fallbackBackorderDays
		}
		product.Quantity = fallbackQuantity
		product.ProductionTime = &models.ProductionTime{Days: days}
	}
}

func positive(p *float64) bool {
	return p != nil && *p > 0
}

func priceValue(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
