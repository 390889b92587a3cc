package transform

import (
	"context"

	"feedsync/internal/feed"
	"feedsync/internal/models"
)

// Variation runs the product transform for a variation record and keeps the
// variation fields. previous is the stored variation with the same SKU, if
// any; its _id is preserved, otherwise a new one is minted.
func (t *Transformer) Variation(ctx context.Context, record feed.Record, previous *models.Variation, opts Options) (models.Variation, error) {
	var base *models.Product
	if previous != nil {
		base = previous.AsProduct()
	}

	product, err := t.Product(ctx, record, base, opts)
	if err != nil {
		return models.Variation{}, err
	}

	variation := models.ProjectVariation(product)
	if previous != nil && previous.ID != "" {
		variation.ID = previous.ID
	} else {
		variation.ID = models.NewObjectID()
	}
	return variation, nil
}
