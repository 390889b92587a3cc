package validation

import (
	"fmt"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/transform"
)

// recommended are attributes a record syncs without, at the cost of an
// incomplete product.
var recommended = []string{"title", "price", "availability"}

type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger,
	}
}

// ValidateRecord fails records that cannot be synced and returns warnings
// for the gaps that only degrade the result.
func (v *Validator) ValidateRecord(record feed.Record) ([]string, error) {
	sku := transform.SKU(record)
	if sku == "" {
		return nil, transform.ErrMissingSKU
	}

	var warnings []string
	for _, attribute := range recommended {
		if feed.Get(attribute, record) == "" {
			warnings = append(warnings, fmt.Sprintf("missing %s", attribute))
		}
	}
	if _, ok := transform.ParseMoney(feed.Get("price", record)); !ok && feed.Get("price", record) != "" {
		warnings = append(warnings, "unparsable price")
	}

	if len(warnings) > 0 {
		v.logger.WithFields(map[string]interface{}{"sku": sku}).Debug("Record has gaps: %v", warnings)
	}
	return warnings, nil
}

// ValidateVariations checks each variation record of a group.
func (v *Validator) ValidateVariations(records []feed.Record) ([]string, error) {
	var warnings []string
	for i, record := range records {
		gaps, err := v.ValidateRecord(record)
		if err != nil {
			return nil, fmt.Errorf("variation %d: %w", i, err)
		}
		for _, gap := range gaps {
			warnings = append(warnings, fmt.Sprintf("%s: %s", transform.SKU(record), gap))
		}
	}
	return warnings, nil
}
