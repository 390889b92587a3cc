package models

// TaxonomyNode is a brand or category reference as stored on a product.
type TaxonomyNode struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
