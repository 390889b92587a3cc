package transform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/specs"
	"feedsync/internal/taxonomy"
)

type stubTaxonomy struct {
	brand    *models.TaxonomyNode
	category *models.TaxonomyNode
	err      error
}

func (s stubTaxonomy) Brand(context.Context, feed.Record) (*models.TaxonomyNode, error) {
	return s.brand, s.err
}

func (s stubTaxonomy) Category(_ context.Context, record feed.Record) (*models.TaxonomyNode, error) {
	if s.err != nil || s.category != nil {
		return s.category, s.err
	}
	name := taxonomy.LastSegment(feed.Get("google_product_category", record))
	if name == "" {
		return nil, nil
	}
	return &models.TaxonomyNode{ID: "c1", Name: name}, nil
}

func newTransformer(tax Taxonomy) *Transformer {
	l := logger.New("error")
	l.SetOutput(io.Discard)
	return NewTransformer(specs.NewMapper(specs.DefaultRules()), tax, l)
}

func price(v float64) *float64 { return &v }

func TestProductBasicFields(t *testing.T) {
	tr := newTransformer(stubTaxonomy{brand: &models.TaxonomyNode{ID: "b1", Name: "Nike", Slug: "nike"}})
	record := feed.NewRecord(map[string]string{
		"g:id":                      "SKU 12  3",
		"title":                     "Running Shoe Ação",
		"g:description":             "<p>Great</p>",
		"g:google_product_category": "Shoes > Running",
		"g:gtin":                    "7891234567895",
		"g:mpn":                     "MPN-1",
		"g:condition":               "Refurbished",
		"g:price":                   "$20",
		"g:availability":            "in stock",
	})

	p, err := tr.Product(context.Background(), record, nil, Options{StoreID: 1})
	require.NoError(t, err)

	assert.Equal(t, "SKU_12_3", p.SKU)
	assert.Equal(t, "Running Shoe Ação", p.Name)
	assert.Equal(t, "Running Shoe Ação", p.MetaTitle)
	assert.Equal(t, "running-shoe-acao", p.Slug)
	assert.Equal(t, "<p>Great</p>", p.BodyHTML)
	assert.Equal(t, []string{"7891234567895"}, p.GTIN)
	assert.Equal(t, []string{"MPN-1"}, p.MPN)
	assert.Equal(t, models.ConditionRefurbished, p.Condition)
	assert.Equal(t, []models.TaxonomyNode{{ID: "b1", Name: "Nike", Slug: "nike"}}, p.Brands)
	assert.Equal(t, []models.TaxonomyNode{{ID: "c1", Name: "Running"}}, p.Categories)
	assert.Equal(t, []string{"Shoes", "Running"}, p.Keywords)
	assert.Equal(t, 9999, p.Quantity)
	assert.Empty(t, p.ID)
	assert.NotNil(t, p.Pictures)
	assert.NotNil(t, p.Variations)
}

func TestProductSKUPrefersExplicitSKU(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"sku": "S-1", "ID": "99"}), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "S-1", p.SKU)

	p, err = tr.Product(context.Background(), feed.NewRecord(map[string]string{"ID": "99"}), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "99", p.SKU)
}

func TestProductWithoutSKU(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	_, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"title": "x"}), nil, Options{})
	assert.ErrorIs(t, err, ErrMissingSKU)
}

func TestProductPrices(t *testing.T) {
	tests := []struct {
		name      string
		attrs     map[string]string
		wantPrice *float64
		wantBase  *float64
	}{
		{"sale and base", map[string]string{"sale_price": "$10", "price": "$20"}, price(10), price(20)},
		{"base only", map[string]string{"price": "$20"}, price(20), nil},
		{"currency code suffix", map[string]string{"price": "15.90 USD"}, price(15.9), nil},
		{"decimal comma", map[string]string{"sale_price": "R$ 10,00", "price": "R$ 1.200,50"}, price(10), price(1200.5)},
		{"sale only is ignored", map[string]string{"sale_price": "$10"}, nil, nil},
		{"zero sale falls back to base", map[string]string{"sale_price": "0.00 USD", "price": "20.00 USD"}, price(20), price(20)},
		{"zero price is unset", map[string]string{"price": "0"}, nil, nil},
		{"thousands comma", map[string]string{"price": "1,234 USD"}, price(1234), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransformer(stubTaxonomy{})
			attrs := map[string]string{"id": "A1"}
			for k, v := range tt.attrs {
				attrs[k] = v
			}
			p, err := tr.Product(context.Background(), feed.NewRecord(attrs), nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, p.Price)
			assert.Equal(t, tt.wantBase, p.BasePrice)
		})
	}
}

func TestProductPriceFallsBackToBasePrice(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	previous := &models.Product{SKU: "A1", BasePrice: price(30)}

	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1"}), previous, Options{})
	require.NoError(t, err)
	assert.Equal(t, price(30), p.Price)
}

func TestProductEffectiveDate(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})

	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":                        "A1",
		"sale_price_effective_date": "2024-02-24T11:07+0100/2024-02-29T23:07+0100",
	}), nil, Options{})
	require.NoError(t, err)
	require.NotNil(t, p.PriceEffectiveDate)
	assert.Equal(t, "2024-02-24T10:07:00.000Z", p.PriceEffectiveDate.Start)
	assert.Equal(t, "2024-02-29T22:07:00.000Z", p.PriceEffectiveDate.End)

	p, err = tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":                        "A1",
		"sale_price_effective_date": "2024-02-24",
	}), nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, p.PriceEffectiveDate)

	p, err = tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":                        "A1",
		"sale_price_effective_date": "2024-02-24/2024-03-01",
	}), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, &models.PriceEffectiveDate{Start: "2024-02-24T00:00:00.000Z", End: "2024-03-01T00:00:00.000Z"}, p.PriceEffectiveDate)
}

func TestProductWeightAndDimensions(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":              "A1",
		"shipping_weight": "1,5 kg",
		"shipping_length": "30",
		"shipping_width":  "12.5 cm",
		"shipping_height": "abc",
	}), nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, &models.Weight{Value: 1.5, Unit: "kg"}, p.Weight)
	assert.Equal(t, models.Dimensions{
		"length": {Value: 30, Unit: "cm"},
		"width":  {Value: 12.5, Unit: "cm"},
		"height": {Value: 1, Unit: "cm"},
	}, p.Dimensions)
}

func TestProductNonFiniteMeasuresStillMarshal(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":              "A1",
		"price":           "$10",
		"shipping_weight": "NaN kg",
		"shipping_length": "inf",
		"shipping_width":  "-Infinity",
	}), nil, Options{})
	require.NoError(t, err)

	assert.Nil(t, p.Weight)
	assert.Equal(t, models.Dimension{Value: 1, Unit: "cm"}, p.Dimensions["length"])
	assert.Equal(t, models.Dimension{Value: 1, Unit: "cm"}, p.Dimensions["width"])

	_, err = json.Marshal(p)
	assert.NoError(t, err)
}

func TestProductKeywordsTruncated(t *testing.T) {
	long := "BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	require.Len(t, long, 60)

	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{
		"id":                      "A1",
		"google_product_category": "A > " + long + " > C",
	}), nil, Options{})
	require.NoError(t, err)

	require.Len(t, p.Keywords, 3)
	assert.Equal(t, "A", p.Keywords[0])
	assert.Equal(t, long[:49], p.Keywords[1])
	assert.Equal(t, "C", p.Keywords[2])
}

func TestProductMetaDescriptionCapped(t *testing.T) {
	desc := make([]rune, 1200)
	for i := range desc {
		desc[i] = 'é'
	}
	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1", "meta_description": string(desc)}), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1000, len([]rune(p.MetaDescription)))
}

func TestProductConditionRejected(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1", "condition": "like new"}), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, p.Condition)
}

func TestProductAvailability(t *testing.T) {
	tests := []struct {
		name         string
		availability string
		opts         Options
		wantQuantity int
		wantDays     int
	}{
		{"in stock default", "in stock", Options{}, 9999, 0},
		{"in stock configured", "In Stock", Options{DefaultQuantity: 40}, 40, 0},
		{"numeric", "5", Options{}, 5, 0},
		{"zero without backorder", "0", Options{}, 0, 0},
		{"zero with backorder", "0", Options{BackorderOnZeroStock: true}, 9999, 10},
		{"negative with backorder", "-3", Options{BackorderOnZeroStock: true, BackorderDays: 15}, 9999, 15},
		{"out of stock text", "out of stock", Options{BackorderOnZeroStock: true}, 0, 0},
		{"missing", "", Options{}, 0, 0},
		{"infinity ignored", "Infinity", Options{}, 0, 0},
		{"nan ignored", "NaN", Options{BackorderOnZeroStock: true}, 0, 0},
		{"huge clamped", "1e30", Options{}, math.MaxInt32, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransformer(stubTaxonomy{})
			p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1", "availability": tt.availability}), nil, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuantity, p.Quantity)
			if tt.wantDays == 0 {
				assert.Nil(t, p.ProductionTime)
			} else {
				require.NotNil(t, p.ProductionTime)
				assert.Equal(t, tt.wantDays, p.ProductionTime.Days)
			}
		})
	}
}

func TestProductPreservesRemoteFieldsAndClearsID(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	previous := &models.Product{
		ID:       "remote-id",
		SKU:      "A1",
		Name:     "Old",
		Brands:   []models.TaxonomyNode{{ID: "b0", Name: "Old Brand"}},
		Pictures: []models.Picture{{ID: "pic"}},
		Extra:    map[string]json.RawMessage{"visible": json.RawMessage(`true`)},
	}

	p, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1", "title": "New"}), previous, Options{})
	require.NoError(t, err)

	assert.Empty(t, p.ID)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, []models.TaxonomyNode{{ID: "b0", Name: "Old Brand"}}, p.Brands)
	assert.Empty(t, p.Pictures)
	assert.Contains(t, p.Extra, "visible")
	assert.Equal(t, "remote-id", previous.ID)
	assert.Equal(t, "Old", previous.Name)
}

func TestProductTaxonomyFailurePropagates(t *testing.T) {
	boom := errors.New("remote down")
	tr := newTransformer(stubTaxonomy{err: boom})
	_, err := tr.Product(context.Background(), feed.NewRecord(map[string]string{"id": "A1"}), nil, Options{})
	assert.ErrorIs(t, err, boom)
}

func TestVariationProjectionAndIdentity(t *testing.T) {
	tr := newTransformer(stubTaxonomy{})
	record := feed.NewRecord(map[string]string{
		"id":              "A1-RED",
		"item_group_id":   "A1",
		"title":           "Shoe Red",
		"color":           "Red",
		"price":           "$50",
		"availability":    "3",
		"shipping_weight": "2 kg",
		"gtin":            "123",
	})

	fresh, err := tr.Variation(context.Background(), record, nil, Options{})
	require.NoError(t, err)
	assert.Len(t, fresh.ID, 24)
	assert.Equal(t, "A1-RED", fresh.SKU)
	assert.Equal(t, "Shoe Red", fresh.Name)
	assert.Equal(t, 3, fresh.Quantity)
	assert.Equal(t, price(50), fresh.Price)
	assert.Equal(t, &models.Weight{Value: 2, Unit: "kg"}, fresh.Weight)
	assert.Equal(t, models.Specifications{"colors": {{Text: "Red", Value: "red"}}}, fresh.Specifications)

	previous := &models.Variation{ID: "existing-variation", SKU: "A1-RED", BasePrice: price(70)}
	again, err := tr.Variation(context.Background(), record, previous, Options{})
	require.NoError(t, err)
	assert.Equal(t, "existing-variation", again.ID)
	assert.Equal(t, price(70), again.BasePrice)
}
