package models

// AppData holds the per-store import options. Zero values fall back to the
// service configuration.
type AppData struct {
	DefaultQuantity      int  `json:"default_quantity,omitempty"`
	UpdateProduct        bool `json:"update_product,omitempty"`
	BackorderOnZeroStock bool `json:"backorder_on_zero_stock,omitempty"`
	BackorderDays        int  `json:"backorder_days,omitempty"`
}
