package models

// Variation is the reduced product projection stored under a product's
// variations list. ID stays stable across re-imports of the same SKU.
type Variation struct {
	ID             string         `json:"_id"`
	SKU            string         `json:"sku"`
	Name           string         `json:"name,omitempty"`
	Quantity       int            `json:"quantity"`
	Price          *float64       `json:"price,omitempty"`
	BasePrice      *float64       `json:"base_price,omitempty"`
	Weight         *Weight        `json:"weight,omitempty"`
	Specifications Specifications `json:"specifications,omitempty"`
}

// AsProduct lifts a stored variation into a product record so it can be fed
// through the product transform.
func (v Variation) AsProduct() *Product {
	return &Product{
		ID:             v.ID,
		SKU:            v.SKU,
		Name:           v.Name,
		Quantity:       v.Quantity,
		Price:          v.Price,
		BasePrice:      v.BasePrice,
		Weight:         v.Weight,
		Specifications: v.Specifications,
	}
}

// ProjectVariation keeps only the fields a variation carries.
func ProjectVariation(p *Product) Variation {
	return Variation{
		SKU:            p.SKU,
		Name:           p.Name,
		Quantity:       p.Quantity,
		Price:          p.Price,
		BasePrice:      p.BasePrice,
		Weight:         p.Weight,
		Specifications: p.Specifications,
	}
}
