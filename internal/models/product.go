package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Product is the canonical e-commerce product record. Fields the feed import
// does not compute are carried in Extra so a transform never drops remote
// data it does not know about.
type Product struct {
	ID                 string              `json:"_id,omitempty"`
	SKU                string              `json:"sku"`
	Slug               string              `json:"slug,omitempty"`
	Name               string              `json:"name"`
	Subtitle           string              `json:"subtitle,omitempty"`
	MetaTitle          string              `json:"meta_title,omitempty"`
	MetaDescription    string              `json:"meta_description,omitempty"`
	Keywords           []string            `json:"keywords,omitempty"`
	BodyHTML           string              `json:"body_html,omitempty"`
	Price              *float64            `json:"price,omitempty"`
	BasePrice          *float64            `json:"base_price,omitempty"`
	PriceEffectiveDate *PriceEffectiveDate `json:"price_effective_date,omitempty"`
	Weight             *Weight             `json:"weight,omitempty"`
	Dimensions         Dimensions          `json:"dimensions,omitempty"`
	Quantity           int                 `json:"quantity"`
	ProductionTime     *ProductionTime     `json:"production_time,omitempty"`
	Categories         []TaxonomyNode      `json:"categories,omitempty"`
	Brands             []TaxonomyNode      `json:"brands,omitempty"`
	Specifications     Specifications      `json:"specifications,omitempty"`
	Condition          Condition           `json:"condition,omitempty"`
	GTIN               []string            `json:"gtin,omitempty"`
	MPN                []string            `json:"mpn,omitempty"`
	Pictures           []Picture           `json:"pictures"`
	Variations         []Variation         `json:"variations"`

	Extra map[string]json.RawMessage `json:"-"`
}

type PriceEffectiveDate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Dimensions is keyed by length, width and height.
type Dimensions map[string]Dimension

type Dimension struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type ProductionTime struct {
	Days int `json:"days"`
}

type Condition string

const (
	ConditionNew          Condition = "new"
	ConditionRefurbished  Condition = "refurbished"
	ConditionUsed         Condition = "used"
	ConditionNotSpecified Condition = "not_specified"
)

// ParseCondition accepts only the platform's condition values, case
// insensitively.
func ParseCondition(s string) (Condition, bool) {
	switch c := Condition(strings.ToLower(s)); c {
	case ConditionNew, ConditionRefurbished, ConditionUsed, ConditionNotSpecified:
		return c, true
	}
	return "", false
}

// SpecificationEntry is one value of a product specification (grid).
type SpecificationEntry struct {
	Text  string `json:"text"`
	Value string `json:"value,omitempty"`
}

// Specifications maps a canonical attribute to its entries. Assigning an
// attribute replaces whatever was there.
type Specifications map[string][]SpecificationEntry

// Clone returns a deep copy safe to mutate.
func (p *Product) Clone() *Product {
	if p == nil {
		return &Product{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		c := *p
		return &c
	}
	var c Product
	if err := json.Unmarshal(data, &c); err != nil {
		c = *p
	}
	return &c
}

// FindVariation returns the stored variation with the given SKU.
func (p *Product) FindVariation(sku string) (Variation, bool) {
	if p == nil {
		return Variation{}, false
	}
	for _, v := range p.Variations {
		if v.SKU == sku {
			return v, true
		}
	}
	return Variation{}, false
}

type productAlias Product

var productKeys = jsonKeys(reflect.TypeOf(productAlias{}))

func (p Product) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(productAlias(p))
	if err != nil || len(p.Extra) == 0 {
		return data, err
	}
	merged := make(map[string]json.RawMessage, len(p.Extra)+len(productKeys))
	for k, v := range p.Extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var alias productAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range productKeys {
		delete(all, k)
	}
	*p = Product(alias)
	if len(all) > 0 {
		p.Extra = all
	}
	return nil
}

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}
